package repository

import (
	"fmt"
	"scavenger/internal/database"
	"scavenger/internal/models"
	"time"
)

// ResponseRepository handles database operations for submitted answers
type ResponseRepository struct {
	db *database.DB
}

// NewResponseRepository creates a new response repository
func NewResponseRepository(db *database.DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// Create records an answer
func (r *ResponseRepository) Create(visitorID, puzzleID int64, answer string, isCorrect bool) (*models.Response, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO responses (visitor_id, puzzle_id, answer, is_correct, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, visitorID, puzzleID, answer, isCorrect, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create response: %w", err)
	}

	return &models.Response{
		ID:        id,
		VisitorID: visitorID,
		PuzzleID:  puzzleID,
		Answer:    answer,
		IsCorrect: isCorrect,
		CreatedAt: now,
	}, nil
}

// HasCorrect reports whether the visitor already solved the puzzle
func (r *ResponseRepository) HasCorrect(visitorID, puzzleID int64) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM responses WHERE visitor_id = ? AND puzzle_id = ? AND is_correct = ?"
	if err := r.db.QueryRow(query, visitorID, puzzleID, true).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check responses: %w", err)
	}
	return count > 0, nil
}

// CountCorrectActive counts the distinct active puzzles the visitor solved
func (r *ResponseRepository) CountCorrectActive(visitorID int64) (int, error) {
	query := `
		SELECT COUNT(DISTINCT r.puzzle_id)
		FROM responses r
		JOIN puzzles p ON p.id = r.puzzle_id
		WHERE r.visitor_id = ? AND r.is_correct = ? AND p.active = ?
	`
	var count int
	if err := r.db.QueryRow(query, visitorID, true, true).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count correct responses: %w", err)
	}
	return count, nil
}

// GetCorrectByVisitor lists the visitor's correct responses, newest first
func (r *ResponseRepository) GetCorrectByVisitor(visitorID int64) ([]models.Response, error) {
	return r.list(" AND r.visitor_id = ? AND r.is_correct = ?", visitorID, true)
}

// GetAll lists responses filtered by case-insensitive puzzle name and visitor uid prefixes
func (r *ResponseRepository) GetAll(puzzlePrefix, visitorPrefix string) ([]models.Response, error) {
	like := r.db.Dialect.CaseInsensitiveLike()
	var filter string
	var args []interface{}
	if puzzlePrefix != "" {
		filter += fmt.Sprintf(" AND p.name %s ?", like)
		args = append(args, puzzlePrefix+"%")
	}
	if visitorPrefix != "" {
		filter += fmt.Sprintf(" AND v.uid %s ?", like)
		args = append(args, visitorPrefix+"%")
	}
	return r.list(filter, args...)
}

func (r *ResponseRepository) list(filter string, args ...interface{}) ([]models.Response, error) {
	query := `
		SELECT r.id, r.visitor_id, r.puzzle_id, r.answer, r.is_correct, r.created_at, p.name, v.uid
		FROM responses r
		JOIN puzzles p ON p.id = r.puzzle_id
		JOIN visitors v ON v.id = r.visitor_id
		WHERE 1 = 1` + filter + `
		ORDER BY r.created_at DESC, r.id DESC
	`
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query responses: %w", err)
	}
	defer rows.Close()

	var responses []models.Response
	for rows.Next() {
		var resp models.Response
		if err := rows.Scan(
			&resp.ID,
			&resp.VisitorID,
			&resp.PuzzleID,
			&resp.Answer,
			&resp.IsCorrect,
			&resp.CreatedAt,
			&resp.PuzzleName,
			&resp.VisitorUID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		responses = append(responses, resp)
	}

	return responses, rows.Err()
}
