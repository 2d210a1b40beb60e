package models

import "time"

// NoSessionUID identifies the anonymous visitor used when sessions are disabled
const NoSessionUID = ""

// Visitor represents a registered participant
type Visitor struct {
	ID         int64
	UID        string
	UserAgent  string
	CheckedIn  time.Time
	CheckedOut *time.Time
}

// IsCheckedOut reports whether the visitor has finished the hunt
func (v *Visitor) IsCheckedOut() bool {
	return v.CheckedOut != nil
}

// VisitorPoolEntry is a pre-generated uid not yet handed to a visitor
type VisitorPoolEntry struct {
	ID        int64
	UID       string
	CreatedAt time.Time
}

// VisitorStatus summarises a visitor's progress
type VisitorStatus struct {
	UID              string
	CorrectAnswers   int
	ActivePuzzles    int
	CheckedOut       bool
	SuccessThreshold float64
}

// Ratio returns the share of active puzzles answered correctly
func (s VisitorStatus) Ratio() float64 {
	if s.ActivePuzzles == 0 {
		return 0
	}
	return float64(s.CorrectAnswers) / float64(s.ActivePuzzles)
}

// Succeeded reports whether the visitor reached the success threshold
func (s VisitorStatus) Succeeded() bool {
	return s.ActivePuzzles > 0 && s.Ratio() >= s.SuccessThreshold
}

// Completed reports whether every active puzzle was answered correctly
func (s VisitorStatus) Completed() bool {
	return s.ActivePuzzles > 0 && s.CorrectAnswers >= s.ActivePuzzles
}
