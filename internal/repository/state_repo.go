package repository

import (
	"database/sql"
	"fmt"
	"scavenger/internal/database"
	"scavenger/internal/models"
	"time"
)

// StateRepository handles database operations for per-visitor puzzle state
type StateRepository struct {
	db *database.DB
}

// NewStateRepository creates a new state repository
func NewStateRepository(db *database.DB) *StateRepository {
	return &StateRepository{db: db}
}

// Get retrieves the stored state for a puzzle and visitor
func (r *StateRepository) Get(puzzleID, visitorID int64) (*models.PuzzleState, error) {
	query := `
		SELECT id, puzzle_id, visitor_id, state, created_at, updated_at
		FROM puzzle_states
		WHERE puzzle_id = ? AND visitor_id = ?
	`
	s := &models.PuzzleState{}
	err := r.db.QueryRow(query, puzzleID, visitorID).Scan(
		&s.ID,
		&s.PuzzleID,
		&s.VisitorID,
		&s.State,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get puzzle state: %w", err)
	}
	return s, nil
}

// Create inserts the first state document for a puzzle and visitor
func (r *StateRepository) Create(puzzleID, visitorID int64, state string) (*models.PuzzleState, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO puzzle_states (puzzle_id, visitor_id, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, puzzleID, visitorID, state, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create puzzle state: %w", err)
	}

	return &models.PuzzleState{
		ID:        id,
		PuzzleID:  puzzleID,
		VisitorID: visitorID,
		State:     state,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Update overwrites an existing state document
func (r *StateRepository) Update(id int64, state string) error {
	query := "UPDATE puzzle_states SET state = ?, updated_at = ? WHERE id = ?"
	if _, err := r.db.Exec(query, state, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to update puzzle state: %w", err)
	}
	return nil
}

// Delete removes the state document for a puzzle and visitor
func (r *StateRepository) Delete(puzzleID, visitorID int64) error {
	if _, err := r.db.Exec("DELETE FROM puzzle_states WHERE puzzle_id = ? AND visitor_id = ?", puzzleID, visitorID); err != nil {
		return fmt.Errorf("failed to delete puzzle state: %w", err)
	}
	return nil
}
