package models

import "time"

// Puzzle represents a single station of the hunt
type Puzzle struct {
	ID        int64
	Name      string
	Answer    string
	Active    bool
	Location  string
	Notes     string
	CreatedAt time.Time
}

// MapPuzzleName is the puzzle whose answer holds the marker positions of the hunt map
const MapPuzzleName = "map"

// MapLocation is a marker position on the hunt map in pixels
type MapLocation struct {
	Top  float64 `json:"top"`
	Left float64 `json:"left"`
}

// PuzzleUpdate holds the fields an admin may change on a puzzle.
// Nil fields are left untouched.
type PuzzleUpdate struct {
	Name     *string
	Answer   *string
	Active   *bool
	Location *string
	Notes    *string
}

// Response is one answer submitted by a visitor for a puzzle
type Response struct {
	ID         int64
	VisitorID  int64
	PuzzleID   int64
	Answer     string
	IsCorrect  bool
	CreatedAt  time.Time
	PuzzleName string
	VisitorUID string
}

// PuzzleState is the stored game document for one (puzzle, visitor) pair
type PuzzleState struct {
	ID        int64
	PuzzleID  int64
	VisitorID int64
	State     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
