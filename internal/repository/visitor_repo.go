package repository

import (
	"database/sql"
	"fmt"
	"scavenger/internal/database"
	"scavenger/internal/models"
	"time"
)

// VisitorRepository handles database operations for visitors and the visitor pool
type VisitorRepository struct {
	db *database.DB
}

// NewVisitorRepository creates a new visitor repository
func NewVisitorRepository(db *database.DB) *VisitorRepository {
	return &VisitorRepository{db: db}
}

const visitorColumns = "id, uid, user_agent, checked_in, checked_out"

func scanVisitor(row interface{ Scan(...interface{}) error }, v *models.Visitor) error {
	var checkedOut sql.NullTime
	if err := row.Scan(&v.ID, &v.UID, &v.UserAgent, &v.CheckedIn, &checkedOut); err != nil {
		return err
	}
	if checkedOut.Valid {
		t := checkedOut.Time
		v.CheckedOut = &t
	}
	return nil
}

// AddToPool inserts pre-generated uids into the visitor pool
func (r *VisitorRepository) AddToPool(uids []string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, uid := range uids {
		if _, err := tx.Exec("INSERT INTO visitor_pool (uid, created_at) VALUES (?, ?)", uid, now); err != nil {
			return fmt.Errorf("failed to add %s to pool: %w", uid, err)
		}
	}

	return tx.Commit()
}

// GetPool lists up to limit unused pool entries, oldest first. A limit of 0 lists all.
func (r *VisitorRepository) GetPool(limit int) ([]models.VisitorPoolEntry, error) {
	query := "SELECT id, uid, created_at FROM visitor_pool ORDER BY id"
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query visitor pool: %w", err)
	}
	defer rows.Close()

	var entries []models.VisitorPoolEntry
	for rows.Next() {
		var e models.VisitorPoolEntry
		var createdAt sql.NullTime
		if err := rows.Scan(&e.ID, &e.UID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan pool entry: %w", err)
		}
		e.CreatedAt = createdAt.Time
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// InPool reports whether uid is still available in the pool
func (r *VisitorRepository) InPool(uid string) (bool, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM visitor_pool WHERE uid = ?", uid).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check visitor pool: %w", err)
	}
	return count > 0, nil
}

// Create registers a visitor and removes its uid from the pool in one transaction.
// Returns nil, nil if the uid was not in the pool.
func (r *VisitorRepository) Create(uid, userAgent string) (*models.Visitor, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec("DELETE FROM visitor_pool WHERE uid = ?", uid)
	if err != nil {
		return nil, fmt.Errorf("failed to consume pool entry: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("failed to consume pool entry: %w", err)
	} else if n == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	id, err := tx.ExecReturningID("INSERT INTO visitors (uid, user_agent, checked_in) VALUES (?, ?, ?)", uid, userAgent, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create visitor: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit visitor: %w", err)
	}

	return &models.Visitor{ID: id, UID: uid, UserAgent: userAgent, CheckedIn: now}, nil
}

// GetByUID retrieves a visitor by uid
func (r *VisitorRepository) GetByUID(uid string) (*models.Visitor, error) {
	v := &models.Visitor{}
	err := scanVisitor(r.db.QueryRow("SELECT "+visitorColumns+" FROM visitors WHERE uid = ?", uid), v)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get visitor: %w", err)
	}
	return v, nil
}

// CheckOut marks the visitor as finished
func (r *VisitorRepository) CheckOut(id int64, at time.Time) error {
	if _, err := r.db.Exec("UPDATE visitors SET checked_out = ? WHERE id = ?", at.UTC(), id); err != nil {
		return fmt.Errorf("failed to check out visitor: %w", err)
	}
	return nil
}

// GetAll lists visitors whose uid starts with uidPrefix (case-insensitive).
// With stillPlaying only visitors not yet checked out are returned.
func (r *VisitorRepository) GetAll(uidPrefix string, stillPlaying bool) ([]models.Visitor, error) {
	query := "SELECT " + visitorColumns + " FROM visitors WHERE 1 = 1"
	var args []interface{}
	if uidPrefix != "" {
		query += fmt.Sprintf(" AND uid %s ?", r.db.Dialect.CaseInsensitiveLike())
		args = append(args, uidPrefix+"%")
	}
	if stillPlaying {
		query += " AND checked_out IS NULL"
	}
	query += " ORDER BY checked_in DESC, id DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query visitors: %w", err)
	}
	defer rows.Close()

	var visitors []models.Visitor
	for rows.Next() {
		var v models.Visitor
		if err := scanVisitor(rows, &v); err != nil {
			return nil, fmt.Errorf("failed to scan visitor: %w", err)
		}
		visitors = append(visitors, v)
	}

	return visitors, rows.Err()
}
