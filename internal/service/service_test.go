package service

import (
	"path/filepath"
	"scavenger/internal/database"
	"scavenger/internal/metrics"
	"scavenger/internal/models"
	"scavenger/internal/repository"
	"scavenger/migrations"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSolution = "fruit:apple,banana,cherry,grape;colour:red,blue,green,yellow;animal:cat,dog,horse,mouse;planet:mars,venus,earth,saturn"

type testEnv struct {
	db         *database.DB
	metrics    *metrics.Metrics
	shared     *SharedState
	puzzles    *PuzzleService
	visitors   *VisitorService
	states     *StateService
	fourByFour *FourByFourService
	anagrams   *AnagramService
	backups    *BackupService
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations(migrations.FS))
	return db
}

func newTestEnv(t *testing.T, sessionsEnabled bool) *testEnv {
	t.Helper()
	db := newTestDB(t)

	puzzleRepo := repository.NewPuzzleRepository(db)
	visitorRepo := repository.NewVisitorRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	stateRepo := repository.NewStateRepository(db)

	m := metrics.New()
	shared := NewSharedState()
	puzzles := NewPuzzleService(puzzleRepo, visitorRepo, responseRepo, m, sessionsEnabled)
	states := NewStateService(puzzleRepo, visitorRepo, stateRepo, shared)

	return &testEnv{
		db:         db,
		metrics:    m,
		shared:     shared,
		puzzles:    puzzles,
		visitors:   NewVisitorService(visitorRepo, puzzleRepo, responseRepo, m, 0.5),
		states:     states,
		fourByFour: NewFourByFourService(puzzles, states, m),
		anagrams:   NewAnagramService(states),
		backups:    NewBackupService(db),
	}
}

func (e *testEnv) puzzle(t *testing.T, name, answer string) *models.Puzzle {
	t.Helper()
	p, err := e.puzzles.Create(name, answer, true, "", "")
	require.NoError(t, err)
	return p
}

func (e *testEnv) visitor(t *testing.T) string {
	t.Helper()
	uids, err := e.visitors.CreatePool(1)
	require.NoError(t, err)
	v, err := e.visitors.Create(uids[0], "test-agent")
	require.NoError(t, err)
	return v.UID
}
