package service

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"scavenger/internal/database"
	"time"

	"github.com/natefinch/atomic"
)

// BackupVersion is written into every export
const BackupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string              `json:"version"`
	ExportedAt   time.Time           `json:"exported_at"`
	DatabaseType string              `json:"database_type"`
	Puzzles      []PuzzleBackup      `json:"puzzles"`
	VisitorPool  []PoolEntryBackup   `json:"visitor_pool"`
	Visitors     []VisitorBackup     `json:"visitors"`
	Responses    []ResponseBackup    `json:"responses"`
	PuzzleStates []PuzzleStateBackup `json:"puzzle_states"`
}

// PuzzleBackup represents a puzzle record for backup
type PuzzleBackup struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Answer    string    `json:"answer"`
	Active    bool      `json:"active"`
	Location  string    `json:"location"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// PoolEntryBackup represents an unused visitor uid
type PoolEntryBackup struct {
	ID        int64     `json:"id"`
	UID       string    `json:"uid"`
	CreatedAt time.Time `json:"created_at"`
}

// VisitorBackup represents a visitor record for backup
type VisitorBackup struct {
	ID         int64      `json:"id"`
	UID        string     `json:"uid"`
	UserAgent  string     `json:"user_agent"`
	CheckedIn  time.Time  `json:"checked_in"`
	CheckedOut *time.Time `json:"checked_out"`
}

// ResponseBackup represents a submitted answer for backup
type ResponseBackup struct {
	ID        int64     `json:"id"`
	VisitorID int64     `json:"visitor_id"`
	PuzzleID  int64     `json:"puzzle_id"`
	Answer    string    `json:"answer"`
	IsCorrect bool      `json:"is_correct"`
	CreatedAt time.Time `json:"created_at"`
}

// PuzzleStateBackup represents an in-progress game for backup
type PuzzleStateBackup struct {
	ID        int64           `json:"id"`
	PuzzleID  int64           `json:"puzzle_id"`
	VisitorID int64           `json:"visitor_id"`
	State     json.RawMessage `json:"state"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Collect reads every table into a BackupData
func (s *BackupService) Collect() (*BackupData, error) {
	backup := &BackupData{
		Version:      BackupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.DriverName(),
	}

	steps := []struct {
		name string
		fn   func(*BackupData) error
	}{
		{"puzzles", s.exportPuzzles},
		{"visitor pool", s.exportPool},
		{"visitors", s.exportVisitors},
		{"responses", s.exportResponses},
		{"puzzle states", s.exportStates},
	}
	for _, step := range steps {
		if err := step.fn(backup); err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", step.name, err)
		}
	}

	return backup, nil
}

// ExportToWriter writes the backup as indented JSON
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup, err := s.Collect()
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported: %d puzzles, %d pool entries, %d visitors, %d responses, %d puzzle states",
		len(backup.Puzzles), len(backup.VisitorPool), len(backup.Visitors),
		len(backup.Responses), len(backup.PuzzleStates))
	return nil
}

// Export writes the backup to outputPath, replacing any existing file atomically
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting database export...")

	var buf bytes.Buffer
	if err := s.ExportToWriter(&buf); err != nil {
		return err
	}
	if err := atomic.WriteFile(outputPath, &buf); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}

	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a backup into an empty database in one transaction
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != BackupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	err := s.db.WithTx(func(tx *database.Tx) error {
		// Import in order of dependencies
		if err := importPuzzles(tx, backup.Puzzles); err != nil {
			return fmt.Errorf("failed to import puzzles: %w", err)
		}
		if err := importPool(tx, backup.VisitorPool); err != nil {
			return fmt.Errorf("failed to import visitor pool: %w", err)
		}
		if err := importVisitors(tx, backup.Visitors); err != nil {
			return fmt.Errorf("failed to import visitors: %w", err)
		}
		if err := importResponses(tx, backup.Responses); err != nil {
			return fmt.Errorf("failed to import responses: %w", err)
		}
		if err := importStates(tx, backup.PuzzleStates); err != nil {
			return fmt.Errorf("failed to import puzzle states: %w", err)
		}
		return resetSequences(tx)
	})
	if err != nil {
		return err
	}

	log.Println("Database import completed successfully")
	return nil
}

// Clear deletes every row in reverse order of dependencies
func (s *BackupService) Clear() error {
	return s.db.WithTx(func(tx *database.Tx) error {
		for _, table := range []string{"puzzle_states", "responses", "visitors", "visitor_pool", "puzzles"} {
			if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
				return fmt.Errorf("failed to clear table %s: %w", table, err)
			}
			log.Printf("Cleared table: %s", table)
		}
		return nil
	})
}

func (s *BackupService) exportPuzzles(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, name, answer, active, location, notes, created_at FROM puzzles ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p PuzzleBackup
		var createdAt sql.NullTime
		if err := rows.Scan(&p.ID, &p.Name, &p.Answer, &p.Active, &p.Location, &p.Notes, &createdAt); err != nil {
			return err
		}
		p.CreatedAt = createdAt.Time
		backup.Puzzles = append(backup.Puzzles, p)
	}
	return rows.Err()
}

func (s *BackupService) exportPool(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, uid, created_at FROM visitor_pool ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var e PoolEntryBackup
		var createdAt sql.NullTime
		if err := rows.Scan(&e.ID, &e.UID, &createdAt); err != nil {
			return err
		}
		e.CreatedAt = createdAt.Time
		backup.VisitorPool = append(backup.VisitorPool, e)
	}
	return rows.Err()
}

func (s *BackupService) exportVisitors(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, uid, user_agent, checked_in, checked_out FROM visitors ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var v VisitorBackup
		var checkedOut sql.NullTime
		if err := rows.Scan(&v.ID, &v.UID, &v.UserAgent, &v.CheckedIn, &checkedOut); err != nil {
			return err
		}
		if checkedOut.Valid {
			t := checkedOut.Time
			v.CheckedOut = &t
		}
		backup.Visitors = append(backup.Visitors, v)
	}
	return rows.Err()
}

func (s *BackupService) exportResponses(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, visitor_id, puzzle_id, answer, is_correct, created_at FROM responses ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var r ResponseBackup
		if err := rows.Scan(&r.ID, &r.VisitorID, &r.PuzzleID, &r.Answer, &r.IsCorrect, &r.CreatedAt); err != nil {
			return err
		}
		backup.Responses = append(backup.Responses, r)
	}
	return rows.Err()
}

func (s *BackupService) exportStates(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, puzzle_id, visitor_id, state, created_at, updated_at FROM puzzle_states ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var st PuzzleStateBackup
		var state string
		if err := rows.Scan(&st.ID, &st.PuzzleID, &st.VisitorID, &state, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return err
		}
		if !json.Valid([]byte(state)) {
			log.Printf("Warning: skipping puzzle state %d with invalid JSON", st.ID)
			continue
		}
		st.State = json.RawMessage(state)
		backup.PuzzleStates = append(backup.PuzzleStates, st)
	}
	return rows.Err()
}

func importPuzzles(tx *database.Tx, puzzles []PuzzleBackup) error {
	log.Printf("Importing %d puzzles...", len(puzzles))
	for _, p := range puzzles {
		query := "INSERT INTO puzzles (id, name, answer, active, location, notes, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
		if _, err := tx.Exec(query, p.ID, p.Name, p.Answer, p.Active, p.Location, p.Notes, p.CreatedAt); err != nil {
			return fmt.Errorf("failed to import puzzle %d: %w", p.ID, err)
		}
	}
	return nil
}

func importPool(tx *database.Tx, entries []PoolEntryBackup) error {
	log.Printf("Importing %d pool entries...", len(entries))
	for _, e := range entries {
		if _, err := tx.Exec("INSERT INTO visitor_pool (id, uid, created_at) VALUES (?, ?, ?)", e.ID, e.UID, e.CreatedAt); err != nil {
			return fmt.Errorf("failed to import pool entry %d: %w", e.ID, err)
		}
	}
	return nil
}

func importVisitors(tx *database.Tx, visitors []VisitorBackup) error {
	log.Printf("Importing %d visitors...", len(visitors))
	for _, v := range visitors {
		var checkedOut interface{}
		if v.CheckedOut != nil {
			checkedOut = *v.CheckedOut
		}
		query := "INSERT INTO visitors (id, uid, user_agent, checked_in, checked_out) VALUES (?, ?, ?, ?, ?)"
		if _, err := tx.Exec(query, v.ID, v.UID, v.UserAgent, v.CheckedIn, checkedOut); err != nil {
			return fmt.Errorf("failed to import visitor %d: %w", v.ID, err)
		}
	}
	return nil
}

func importResponses(tx *database.Tx, responses []ResponseBackup) error {
	log.Printf("Importing %d responses...", len(responses))
	for _, r := range responses {
		query := "INSERT INTO responses (id, visitor_id, puzzle_id, answer, is_correct, created_at) VALUES (?, ?, ?, ?, ?, ?)"
		if _, err := tx.Exec(query, r.ID, r.VisitorID, r.PuzzleID, r.Answer, r.IsCorrect, r.CreatedAt); err != nil {
			return fmt.Errorf("failed to import response %d: %w", r.ID, err)
		}
	}
	return nil
}

func importStates(tx *database.Tx, states []PuzzleStateBackup) error {
	log.Printf("Importing %d puzzle states...", len(states))
	for _, st := range states {
		query := "INSERT INTO puzzle_states (id, puzzle_id, visitor_id, state, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)"
		if _, err := tx.Exec(query, st.ID, st.PuzzleID, st.VisitorID, string(st.State), st.CreatedAt, st.UpdatedAt); err != nil {
			return fmt.Errorf("failed to import puzzle state %d: %w", st.ID, err)
		}
	}
	return nil
}

// resetSequences moves PostgreSQL serial counters past the imported ids
func resetSequences(tx *database.Tx) error {
	if tx.GetDialect().DriverName() != "postgres" {
		return nil
	}
	for _, table := range []string{"puzzles", "visitor_pool", "visitors", "responses", "puzzle_states"} {
		query := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE(MAX(id), 0) + 1, false) FROM %s", table, table)
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to reset %s sequence: %w", table, err)
		}
	}
	return nil
}
