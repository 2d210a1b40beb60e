package service

import (
	"encoding/json"
	"testing"

	"scavenger/internal/fourbyfour"
	"scavenger/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fruit    = []string{"apple", "banana", "cherry", "grape"}
	colour   = []string{"red", "blue", "green", "yellow"}
	animal   = []string{"cat", "dog", "horse", "mouse"}
	planet   = []string{"mars", "venus", "earth", "saturn"}
	mismatch = []string{"apple", "red", "cat", "mars"}
)

func toggleAll(t *testing.T, env *testEnv, uid string, words []string) {
	t.Helper()
	for _, w := range words {
		_, err := env.fourByFour.ToggleWord("fourbyfour", uid, w)
		require.NoError(t, err, "toggling %s", w)
	}
}

func TestFourByFourStatusIsPersisted(t *testing.T) {
	env := newTestEnv(t, true)
	env.puzzle(t, "fourbyfour", testSolution)
	uid := env.visitor(t)

	first, err := env.fourByFour.Status("fourbyfour", uid)
	require.NoError(t, err)
	assert.Len(t, first.Words, 16)

	second, err := env.fourByFour.Status("fourbyfour", uid)
	require.NoError(t, err)
	for i := range first.Words {
		assert.Equal(t, first.Words[i].ID, second.Words[i].ID, "board order survives reload")
	}

	doc, err := env.states.GetState("fourbyfour", uid)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(doc, &raw))
	assert.EqualValues(t, fourbyfour.SchemaVersion, raw["version"])
}

func TestFourByFourSelection(t *testing.T) {
	env := newTestEnv(t, true)
	env.puzzle(t, "fourbyfour", testSolution)
	uid := env.visitor(t)

	toggleAll(t, env, uid, []string{"apple", "red", "cat", "mars"})

	status, err := env.fourByFour.ToggleWord("fourbyfour", uid, "dog")
	assert.ErrorIs(t, err, fourbyfour.ErrSelectionLimit)
	assert.True(t, IsRuleError(err))
	require.NotNil(t, status, "rule violations still return the game")
	assert.Equal(t, 4, status.NumSelected())

	status, err = env.fourByFour.ToggleWord("fourbyfour", uid, "kiwi")
	assert.ErrorIs(t, err, fourbyfour.ErrWordNotFound)
	require.NotNil(t, status)

	status, err = env.fourByFour.DeselectAll("fourbyfour", uid)
	require.NoError(t, err)
	assert.Equal(t, 0, status.NumSelected())

	status, err = env.fourByFour.Shuffle("fourbyfour", uid)
	require.NoError(t, err)
	assert.Len(t, status.Words, 16)
}

func TestFourByFourSubmitNotEnough(t *testing.T) {
	env := newTestEnv(t, true)
	env.puzzle(t, "fourbyfour", testSolution)
	uid := env.visitor(t)

	toggleAll(t, env, uid, []string{"apple"})
	sub, err := env.fourByFour.Submit("fourbyfour", uid)
	assert.ErrorIs(t, err, fourbyfour.ErrNotEnoughSelected)
	require.NotNil(t, sub)
	assert.Equal(t, 4, sub.Status.MistakesAvailable)
}

func TestFourByFourMistakeIsKeptAcrossRequests(t *testing.T) {
	env := newTestEnv(t, true)
	env.puzzle(t, "fourbyfour", testSolution)
	uid := env.visitor(t)

	toggleAll(t, env, uid, mismatch)
	sub, err := env.fourByFour.Submit("fourbyfour", uid)
	require.NoError(t, err)
	assert.Equal(t, fourbyfour.OutcomeIncorrect, sub.Result.Outcome)
	assert.ErrorIs(t, sub.Result.Err(), fourbyfour.ErrSelectionIncorrect)

	status, err := env.fourByFour.Status("fourbyfour", uid)
	require.NoError(t, err)
	assert.Equal(t, 3, status.MistakesAvailable, "the mistake is stored even though the submission failed")
}

func TestFourByFourSolved(t *testing.T) {
	env := newTestEnv(t, true)
	env.puzzle(t, "fourbyfour", testSolution)
	uid := env.visitor(t)

	for _, group := range [][]string{fruit, colour, animal} {
		toggleAll(t, env, uid, group)
		sub, err := env.fourByFour.Submit("fourbyfour", uid)
		require.NoError(t, err)
		require.Equal(t, fourbyfour.OutcomeCategorySolved, sub.Result.Outcome)
	}

	toggleAll(t, env, uid, planet)
	sub, err := env.fourByFour.Submit("fourbyfour", uid)
	require.NoError(t, err)
	assert.Equal(t, fourbyfour.OutcomePuzzleSolved, sub.Result.Outcome)
	assert.Equal(t, fourbyfour.StateSolved, sub.Status.State())

	doc, err := env.states.GetState("fourbyfour", uid)
	require.NoError(t, err)
	assert.Nil(t, doc, "finished games are not stored")

	correct, err := env.visitors.CorrectResponses(uid)
	require.NoError(t, err)
	require.Len(t, correct, 1)
	assert.Equal(t, sub.Status.ExportSolution(), correct[0].Answer)

	fresh, err := env.fourByFour.Status("fourbyfour", uid)
	require.NoError(t, err)
	assert.Len(t, fresh.Words, 16, "a new game starts after solving")
}

func TestFourByFourGameOver(t *testing.T) {
	env := newTestEnv(t, true)
	env.puzzle(t, "fourbyfour", testSolution)
	uid := env.visitor(t)

	toggleAll(t, env, uid, mismatch)
	var sub *Submission
	for i := 0; i < fourbyfour.MaxMistakes; i++ {
		var err error
		sub, err = env.fourByFour.Submit("fourbyfour", uid)
		require.NoError(t, err)
	}
	assert.Equal(t, fourbyfour.OutcomeGameOver, sub.Result.Outcome)
	assert.Equal(t, 0, sub.Status.MistakesAvailable)

	doc, err := env.states.GetState("fourbyfour", uid)
	require.NoError(t, err)
	assert.Nil(t, doc)

	responses, err := env.puzzles.GetAllResponses("fourbyfour", uid)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.False(t, responses[0].IsCorrect)
}

func solvedCategories(status *fourbyfour.PuzzleStatus) int {
	n := 0
	for _, c := range status.Categories {
		if c.IsSolved {
			n++
		}
	}
	return n
}

func TestFourByFourKeepsGameWhenRecordingFails(t *testing.T) {
	env := newTestEnv(t, true)
	env.puzzle(t, "fourbyfour", testSolution)
	uid := env.visitor(t)

	for _, group := range [][]string{fruit, colour, animal} {
		toggleAll(t, env, uid, group)
		_, err := env.fourByFour.Submit("fourbyfour", uid)
		require.NoError(t, err)
	}
	toggleAll(t, env, uid, planet)

	_, err := env.db.Exec("DROP TABLE responses")
	require.NoError(t, err)

	sub, err := env.fourByFour.Submit("fourbyfour", uid)
	require.Error(t, err)
	assert.Nil(t, sub)

	doc, err := env.states.GetState("fourbyfour", uid)
	require.NoError(t, err)
	require.NotNil(t, doc, "the game survives a failed recording")

	sol, err := fourbyfour.ParseSolution(testSolution)
	require.NoError(t, err)
	stored, err := fourbyfour.Decode(doc, sol)
	require.NoError(t, err)
	assert.Equal(t, 3, solvedCategories(stored))
	assert.Equal(t, 4, stored.NumSelected(), "the winning selection is still made")
	assert.True(t, stored.CanSubmit())
}

func TestFourByFourReplayIsRecordedOnce(t *testing.T) {
	env := newTestEnv(t, true)
	env.puzzle(t, "fourbyfour", testSolution)
	uid := env.visitor(t)

	for round := 0; round < 2; round++ {
		var sub *Submission
		for _, group := range [][]string{fruit, colour, animal, planet} {
			toggleAll(t, env, uid, group)
			var err error
			sub, err = env.fourByFour.Submit("fourbyfour", uid)
			require.NoError(t, err)
		}
		require.Equal(t, fourbyfour.OutcomePuzzleSolved, sub.Result.Outcome, "round %d", round)
	}

	responses, err := env.puzzles.GetAllResponses("fourbyfour", uid)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.True(t, responses[0].IsCorrect)
}

func TestFourByFourReset(t *testing.T) {
	env := newTestEnv(t, true)
	env.puzzle(t, "fourbyfour", testSolution)
	uid := env.visitor(t)

	toggleAll(t, env, uid, mismatch)
	_, err := env.fourByFour.Submit("fourbyfour", uid)
	require.NoError(t, err)

	fresh, err := env.fourByFour.Reset("fourbyfour", uid)
	require.NoError(t, err)
	assert.Equal(t, fourbyfour.MaxMistakes, fresh.MistakesAvailable)

	status, err := env.fourByFour.Status("fourbyfour", uid)
	require.NoError(t, err)
	assert.Equal(t, fourbyfour.MaxMistakes, status.MistakesAvailable)
	assert.Equal(t, 0, status.NumSelected())
}

func TestFourByFourDiscardsIncompatibleState(t *testing.T) {
	env := newTestEnv(t, true)
	env.puzzle(t, "fourbyfour", testSolution)
	uid := env.visitor(t)

	require.NoError(t, env.states.SetState("fourbyfour", uid, json.RawMessage(`{"version":0}`)))

	status, err := env.fourByFour.Status("fourbyfour", uid)
	require.NoError(t, err)
	assert.Len(t, status.Words, 16)
}

func TestFourByFourInvalidSolution(t *testing.T) {
	env := newTestEnv(t, true)
	env.puzzle(t, "fourbyfour", "not a solution")
	uid := env.visitor(t)

	_, err := env.fourByFour.Status("fourbyfour", uid)
	assert.ErrorIs(t, err, fourbyfour.ErrInvalidSolution)

	_, err = env.fourByFour.Status("missing", uid)
	assert.ErrorIs(t, err, ErrPuzzleNotFound)
}

func TestFourByFourAnonymousPlayIsShared(t *testing.T) {
	env := newTestEnv(t, false)
	env.puzzle(t, "fourbyfour", testSolution)

	toggleAll(t, env, models.NoSessionUID, fruit)
	sub, err := env.fourByFour.Submit("fourbyfour", models.NoSessionUID)
	require.NoError(t, err)
	assert.Equal(t, fourbyfour.OutcomeCategorySolved, sub.Result.Outcome)

	// Any other anonymous player sees the same game
	status, err := env.fourByFour.Status("fourbyfour", models.NoSessionUID)
	require.NoError(t, err)
	assert.Len(t, status.Words, 12)
}
