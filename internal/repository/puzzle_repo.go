package repository

import (
	"database/sql"
	"fmt"
	"scavenger/internal/database"
	"scavenger/internal/models"
	"strings"
	"time"
)

// PuzzleRepository handles database operations for puzzles
type PuzzleRepository struct {
	db *database.DB
}

// NewPuzzleRepository creates a new puzzle repository
func NewPuzzleRepository(db *database.DB) *PuzzleRepository {
	return &PuzzleRepository{db: db}
}

const puzzleColumns = "id, name, answer, active, location, notes, created_at"

func scanPuzzle(row interface{ Scan(...interface{}) error }, p *models.Puzzle) error {
	var createdAt sql.NullTime
	if err := row.Scan(&p.ID, &p.Name, &p.Answer, &p.Active, &p.Location, &p.Notes, &createdAt); err != nil {
		return err
	}
	p.CreatedAt = createdAt.Time
	return nil
}

// GetAll retrieves puzzles ordered by name, optionally only the active ones
func (r *PuzzleRepository) GetAll(onlyActive bool) ([]models.Puzzle, error) {
	query := "SELECT " + puzzleColumns + " FROM puzzles"
	var args []interface{}
	if onlyActive {
		query += " WHERE active = ?"
		args = append(args, true)
	}
	query += " ORDER BY name"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query puzzles: %w", err)
	}
	defer rows.Close()

	var puzzles []models.Puzzle
	for rows.Next() {
		var p models.Puzzle
		if err := scanPuzzle(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan puzzle: %w", err)
		}
		puzzles = append(puzzles, p)
	}

	return puzzles, rows.Err()
}

// Count returns the number of puzzles, optionally only the active ones
func (r *PuzzleRepository) Count(onlyActive bool) (int, error) {
	query := "SELECT COUNT(*) FROM puzzles"
	var args []interface{}
	if onlyActive {
		query += " WHERE active = ?"
		args = append(args, true)
	}

	var count int
	if err := r.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count puzzles: %w", err)
	}
	return count, nil
}

// GetByName retrieves a puzzle by its unique name
func (r *PuzzleRepository) GetByName(name string) (*models.Puzzle, error) {
	p := &models.Puzzle{}
	err := scanPuzzle(r.db.QueryRow("SELECT "+puzzleColumns+" FROM puzzles WHERE name = ?", name), p)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get puzzle: %w", err)
	}
	return p, nil
}

// GetByID retrieves a puzzle by ID
func (r *PuzzleRepository) GetByID(id int64) (*models.Puzzle, error) {
	p := &models.Puzzle{}
	err := scanPuzzle(r.db.QueryRow("SELECT "+puzzleColumns+" FROM puzzles WHERE id = ?", id), p)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get puzzle: %w", err)
	}
	return p, nil
}

// Create inserts a new puzzle
func (r *PuzzleRepository) Create(name, answer string, active bool, location, notes string) (*models.Puzzle, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO puzzles (name, answer, active, location, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, name, answer, active, location, notes, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create puzzle: %w", err)
	}

	return &models.Puzzle{
		ID:        id,
		Name:      name,
		Answer:    answer,
		Active:    active,
		Location:  location,
		Notes:     notes,
		CreatedAt: now,
	}, nil
}

// Update applies the non-nil fields of upd to the puzzle
func (r *PuzzleRepository) Update(id int64, upd models.PuzzleUpdate) error {
	var sets []string
	var args []interface{}
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Answer != nil {
		sets = append(sets, "answer = ?")
		args = append(args, *upd.Answer)
	}
	if upd.Active != nil {
		sets = append(sets, "active = ?")
		args = append(args, *upd.Active)
	}
	if upd.Location != nil {
		sets = append(sets, "location = ?")
		args = append(args, *upd.Location)
	}
	if upd.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *upd.Notes)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := "UPDATE puzzles SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := r.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to update puzzle: %w", err)
	}
	return nil
}
