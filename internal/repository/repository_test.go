package repository

import (
	"path/filepath"
	"scavenger/internal/database"
	"scavenger/internal/models"
	"scavenger/migrations"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations(migrations.FS))
	return db
}

func newTestVisitor(t *testing.T, repo *VisitorRepository, uid string) *models.Visitor {
	t.Helper()
	require.NoError(t, repo.AddToPool([]string{uid}))
	v, err := repo.Create(uid, "test-agent")
	require.NoError(t, err)
	require.NotNil(t, v)
	return v
}

func TestPuzzleRepository(t *testing.T) {
	repo := NewPuzzleRepository(newTestDB(t))

	p, err := repo.Create("fourbyfour", "a:a1,a2,a3,a4", true, "Hall A", "")
	require.NoError(t, err)
	_, err = repo.Create("anagram", "crumpets", false, "", "")
	require.NoError(t, err)

	got, err := repo.GetByName("fourbyfour")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "Hall A", got.Location)
	assert.True(t, got.Active)

	missing, err := repo.GetByName("nope")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	all, err := repo.GetAll(false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "anagram", all[0].Name, "ordered by name")

	active, err := repo.GetAll(true)
	require.NoError(t, err)
	require.Len(t, active, 1)

	n, err := repo.Count(true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	enabled := true
	notes := "moved"
	require.NoError(t, repo.Update(all[0].ID, models.PuzzleUpdate{Active: &enabled, Notes: &notes}))
	updated, err := repo.GetByID(all[0].ID)
	require.NoError(t, err)
	assert.True(t, updated.Active)
	assert.Equal(t, "moved", updated.Notes)
	assert.Equal(t, "crumpets", updated.Answer, "unset fields are kept")

	_, err = repo.Create("fourbyfour", "dup", true, "", "")
	assert.Error(t, err, "names are unique")
}

func TestVisitorRepository(t *testing.T) {
	repo := NewVisitorRepository(newTestDB(t))

	require.NoError(t, repo.AddToPool([]string{"alpha1", "alpha2", "beta1"}))

	pool, err := repo.GetPool(2)
	require.NoError(t, err)
	assert.Len(t, pool, 2)

	ok, err := repo.InPool("beta1")
	require.NoError(t, err)
	assert.True(t, ok)

	v, err := repo.Create("beta1", "phone")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.False(t, v.IsCheckedOut())

	ok, err = repo.InPool("beta1")
	require.NoError(t, err)
	assert.False(t, ok, "registration consumes the pool entry")

	again, err := repo.Create("beta1", "phone")
	require.NoError(t, err)
	assert.Nil(t, again, "uid no longer in pool")

	newTestVisitor(t, repo, "ALPHA9")

	got, err := repo.GetByUID("beta1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "phone", got.UserAgent)

	require.NoError(t, repo.CheckOut(got.ID, time.Now()))
	got, err = repo.GetByUID("beta1")
	require.NoError(t, err)
	assert.True(t, got.IsCheckedOut())

	all, err := repo.GetAll("", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	playing, err := repo.GetAll("", true)
	require.NoError(t, err)
	require.Len(t, playing, 1)
	assert.Equal(t, "ALPHA9", playing[0].UID)

	prefixed, err := repo.GetAll("alp", false)
	require.NoError(t, err)
	require.Len(t, prefixed, 1, "prefix match ignores case")
}

func TestResponseRepository(t *testing.T) {
	db := newTestDB(t)
	puzzles := NewPuzzleRepository(db)
	visitors := NewVisitorRepository(db)
	repo := NewResponseRepository(db)

	p1, err := puzzles.Create("Demo", "42", true, "", "")
	require.NoError(t, err)
	p2, err := puzzles.Create("hidden", "x", false, "", "")
	require.NoError(t, err)
	v := newTestVisitor(t, visitors, "visitor1")
	other := newTestVisitor(t, visitors, "other1")

	solved, err := repo.HasCorrect(v.ID, p1.ID)
	require.NoError(t, err)
	assert.False(t, solved)

	_, err = repo.Create(v.ID, p1.ID, "41", false)
	require.NoError(t, err)
	_, err = repo.Create(v.ID, p1.ID, "42", true)
	require.NoError(t, err)
	_, err = repo.Create(v.ID, p2.ID, "x", true)
	require.NoError(t, err)
	_, err = repo.Create(other.ID, p1.ID, "42", true)
	require.NoError(t, err)

	solved, err = repo.HasCorrect(v.ID, p1.ID)
	require.NoError(t, err)
	assert.True(t, solved)

	n, err := repo.CountCorrectActive(v.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "inactive puzzles are not counted")

	correct, err := repo.GetCorrectByVisitor(v.ID)
	require.NoError(t, err)
	assert.Len(t, correct, 2)

	all, err := repo.GetAll("", "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	byPuzzle, err := repo.GetAll("de", "")
	require.NoError(t, err)
	assert.Len(t, byPuzzle, 3)
	for _, r := range byPuzzle {
		assert.Equal(t, "Demo", r.PuzzleName)
	}

	both, err := repo.GetAll("demo", "VIS")
	require.NoError(t, err)
	assert.Len(t, both, 2)
	for _, r := range both {
		assert.Equal(t, "visitor1", r.VisitorUID)
	}
}

func TestStateRepository(t *testing.T) {
	db := newTestDB(t)
	p, err := NewPuzzleRepository(db).Create("fourbyfour", "x", true, "", "")
	require.NoError(t, err)
	v := newTestVisitor(t, NewVisitorRepository(db), "v1")
	repo := NewStateRepository(db)

	s, err := repo.Get(p.ID, v.ID)
	require.NoError(t, err)
	assert.Nil(t, s)

	created, err := repo.Create(p.ID, v.ID, `{"a":1}`)
	require.NoError(t, err)

	_, err = repo.Create(p.ID, v.ID, `{"a":2}`)
	assert.Error(t, err, "one document per puzzle and visitor")

	require.NoError(t, repo.Update(created.ID, `{"a":3}`))
	s, err = repo.Get(p.ID, v.ID)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, `{"a":3}`, s.State)
	assert.False(t, s.UpdatedAt.Before(s.CreatedAt))

	require.NoError(t, repo.Delete(p.ID, v.ID))
	s, err = repo.Get(p.ID, v.ID)
	require.NoError(t, err)
	assert.Nil(t, s)
}
