package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"scavenger/internal/config"
	"scavenger/internal/database"
	"scavenger/internal/metrics"
	"scavenger/internal/repository"
	"scavenger/internal/security"
	"scavenger/internal/service"
	"scavenger/migrations"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	testSolution      = "fruit:apple,banana,cherry,grape;colour:red,blue,green,yellow;animal:cat,dog,horse,mouse;planet:mars,venus,earth,saturn"
	testAdminPassword = "open-sesame"
	testRegistrations = 3
)

type testApp struct {
	handler  http.Handler
	cfg      *config.Config
	puzzles  *service.PuzzleService
	visitors *service.VisitorService
	startup  *StartupStatus
	cookies  []*http.Cookie
}

func newTestApp(t *testing.T, sessionsEnabled bool) *testApp {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations(migrations.FS))

	hash, err := security.HashPassword(testAdminPassword)
	require.NoError(t, err)

	cfg := &config.Config{
		CookieKey:         "SYNOD_SESSION",
		CookieMaxAge:      time.Hour,
		SessionsEnabled:   sessionsEnabled,
		SessionSecret:     "test-secret",
		AdminUser:         "admin",
		AdminPasswordHash: hash,
		FourByFourPuzzles: []string{"fourbyfour"},
		AnagramPuzzles:    []string{"shuffleanagram-crumpets"},
		SuccessThreshold:  0.5,
	}

	puzzleRepo := repository.NewPuzzleRepository(db)
	visitorRepo := repository.NewVisitorRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	stateRepo := repository.NewStateRepository(db)

	m := metrics.New()
	puzzles := service.NewPuzzleService(puzzleRepo, visitorRepo, responseRepo, m, cfg.SessionsEnabled)
	visitors := service.NewVisitorService(visitorRepo, puzzleRepo, responseRepo, m, cfg.SuccessThreshold)
	states := service.NewStateService(puzzleRepo, visitorRepo, stateRepo, service.NewSharedState())

	fourByFour := NewFourByFourHandler(service.NewFourByFourService(puzzles, states, m))
	anagram := NewAnagramHandler(service.NewAnagramService(states))
	startup := NewStartupStatus()
	startup.MarkReady()

	srv := &Server{
		Middleware: NewMiddleware(cfg, visitors, puzzles, security.NewRateLimiter(testRegistrations, time.Minute)),
		Game:       NewGameHandler(cfg, visitors, puzzles),
		Puzzles:    NewPuzzleRouter(fourByFour, cfg.FourByFourPuzzles, anagram, cfg.AnagramPuzzles),
		FourByFour: fourByFour,
		Admin:      NewAdminHandler(puzzles, visitors, service.NewBackupService(db)),
		Metrics:    m.Handler(),
		Startup:    startup,
	}

	return &testApp{
		handler:  startup.RequireReady(Logging(srv.Routes())),
		cfg:      cfg,
		puzzles:  puzzles,
		visitors: visitors,
		startup:  startup,
	}
}

func newRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	return httptest.NewRequest(method, path, &buf)
}

// do sends a visitor request carrying and collecting session cookies
func (a *testApp) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req := newRequest(t, method, path, body)
	for _, c := range a.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		a.setCookie(c)
	}
	return rec
}

func (a *testApp) setCookie(c *http.Cookie) {
	kept := a.cookies[:0]
	for _, existing := range a.cookies {
		if existing.Name != c.Name {
			kept = append(kept, existing)
		}
	}
	if c.MaxAge >= 0 {
		kept = append(kept, c)
	}
	a.cookies = kept
}

// admin sends a request with the admin's basic auth credentials
func (a *testApp) admin(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req := newRequest(t, method, path, body)
	req.SetBasicAuth("admin", testAdminPassword)

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

// register takes a uid from the pool and registers it as the current visitor
func (a *testApp) register(t *testing.T) string {
	t.Helper()
	uids, err := a.visitors.CreatePool(1)
	require.NoError(t, err)

	rec := a.do(t, "GET", "/register/"+uids[0], nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return uids[0]
}

func (a *testApp) puzzle(t *testing.T, name, answer string, active bool) {
	t.Helper()
	_, err := a.puzzles.Create(name, answer, active, "", "")
	require.NoError(t, err)
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
