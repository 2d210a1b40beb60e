package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireVisitorWithoutSession(t *testing.T) {
	app := newTestApp(t, true)
	app.puzzle(t, "fourbyfour", testSolution, true)

	rec := app.do(t, "GET", "/puzzles/fourbyfour/", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(t, "POST", "/submission", submissionRequest{Puzzle: "fourbyfour", Answer: "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireVisitorRejectsTamperedCookie(t *testing.T) {
	app := newTestApp(t, true)
	app.puzzle(t, "fourbyfour", testSolution, true)
	app.register(t)

	require.Len(t, app.cookies, 1)
	app.cookies[0].Value += "x"

	rec := app.do(t, "GET", "/puzzles/fourbyfour/", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, app.cookies, "invalid cookie should be cleared")
}

func TestCheckedOutVisitorIsForbidden(t *testing.T) {
	app := newTestApp(t, true)
	app.puzzle(t, "fourbyfour", testSolution, true)
	uid := app.register(t)

	rec := app.admin(t, "POST", "/admin/visitors/"+uid+"/checkout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, "GET", "/puzzles/fourbyfour/", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// A checked out visitor can not register again
	rec = app.do(t, "GET", "/register/"+uid, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSessionsDisabledPlaysAnonymously(t *testing.T) {
	app := newTestApp(t, false)
	app.puzzle(t, "fourbyfour", testSolution, true)

	rec := app.do(t, "GET", "/puzzles/fourbyfour/", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, app.cookies)

	view := decodeBody[FourByFourView](t, rec)
	assert.Len(t, view.Words, 16)
}

func TestRequirePuzzleGuards(t *testing.T) {
	app := newTestApp(t, false)
	app.puzzle(t, "fourbyfour", testSolution, false)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"unknown puzzle", "/puzzles/nope/", http.StatusNotFound},
		{"inactive puzzle", "/puzzles/fourbyfour/", http.StatusForbidden},
		{"inactive puzzle shuffle", "/puzzles/fourbyfour/shuffled", http.StatusForbidden},
		{"configured but not created", "/puzzles/shuffleanagram-crumpets/", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, "GET", tt.path, nil)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	app := newTestApp(t, true)

	rec := app.do(t, "GET", "/admin/puzzles", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")

	req := httptest.NewRequest("GET", "/admin/puzzles", nil)
	req.SetBasicAuth("admin", "wrong")
	rec = httptest.NewRecorder()
	app.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest("GET", "/admin/puzzles", nil)
	req.SetBasicAuth("someone", testAdminPassword)
	rec = httptest.NewRecorder()
	app.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.admin(t, "GET", "/admin/puzzles", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegistrationIsRateLimited(t *testing.T) {
	app := newTestApp(t, true)

	for i := 0; i < testRegistrations; i++ {
		rec := app.do(t, "GET", "/register/unknown-code", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	rec := app.do(t, "GET", "/register/unknown-code", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
