package handlers

import "net/http"

// PuzzleRouter sends /puzzles/{name}/ requests to the game the puzzle is configured for
type PuzzleRouter struct {
	fourByFour      *FourByFourHandler
	anagram         *AnagramHandler
	fourByFourNames map[string]bool
	anagramNames    map[string]bool
}

// NewPuzzleRouter creates a router for the configured FourByFour and anagram puzzles
func NewPuzzleRouter(fourByFour *FourByFourHandler, fourByFourNames []string, anagram *AnagramHandler, anagramNames []string) *PuzzleRouter {
	pr := &PuzzleRouter{
		fourByFour:      fourByFour,
		anagram:         anagram,
		fourByFourNames: make(map[string]bool),
		anagramNames:    make(map[string]bool),
	}
	for _, name := range fourByFourNames {
		pr.fourByFourNames[name] = true
	}
	for _, name := range anagramNames {
		pr.anagramNames[name] = true
	}
	return pr
}

// Index shows the visitor's current game
func (pr *PuzzleRouter) Index(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	switch {
	case pr.fourByFourNames[name]:
		pr.fourByFour.Index(w, r)
	case pr.anagramNames[name]:
		pr.anagram.Index(w, r)
	default:
		respondWithError(w, http.StatusNotFound, ErrPuzzleNotFoundMsg, "", nil)
	}
}

// Shuffled reshuffles the visitor's current game
func (pr *PuzzleRouter) Shuffled(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	switch {
	case pr.fourByFourNames[name]:
		pr.fourByFour.Shuffled(w, r)
	case pr.anagramNames[name]:
		pr.anagram.Shuffled(w, r)
	default:
		respondWithError(w, http.StatusNotFound, ErrPuzzleNotFoundMsg, "", nil)
	}
}

// FourByFour restricts a route to FourByFour puzzles
func (pr *PuzzleRouter) FourByFour(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !pr.fourByFourNames[r.PathValue("name")] {
			respondWithError(w, http.StatusNotFound, ErrPuzzleNotFoundMsg, "", nil)
			return
		}
		next(w, r)
	}
}

// Server bundles the handlers served by the application
type Server struct {
	Middleware *Middleware
	Game       *GameHandler
	Puzzles    *PuzzleRouter
	FourByFour *FourByFourHandler
	Admin      *AdminHandler
	Metrics    http.Handler
	Startup    *StartupStatus
}

// Routes registers every route on a new mux
func (s *Server) Routes() *http.ServeMux {
	m := s.Middleware
	mux := http.NewServeMux()

	// Health and metrics
	mux.Handle("GET /healthz", s.Startup)
	mux.Handle("GET /metrics", s.Metrics)

	// Visitor routes
	mux.HandleFunc("GET /{$}", m.IdentifyVisitor(s.Game.Home))
	mux.HandleFunc("GET /register/{uid}", m.RateLimit(s.Game.Register))
	mux.HandleFunc("GET /map", s.Game.Map)
	mux.HandleFunc("POST /submission", m.RequireVisitor(s.Game.SubmitAnswer))

	// Puzzle routes
	puzzle := func(next http.HandlerFunc) http.HandlerFunc {
		return m.RequireVisitor(m.RequirePuzzle(next))
	}
	fourByFour := func(next http.HandlerFunc) http.HandlerFunc {
		return puzzle(s.Puzzles.FourByFour(next))
	}
	mux.HandleFunc("GET /puzzles/{name}/{$}", puzzle(s.Puzzles.Index))
	mux.HandleFunc("GET /puzzles/{name}/shuffled", puzzle(s.Puzzles.Shuffled))
	mux.HandleFunc("DELETE /puzzles/{name}/{$}", fourByFour(s.FourByFour.Reset))
	mux.HandleFunc("DELETE /puzzles/{name}/selection", fourByFour(s.FourByFour.DeselectAll))
	mux.HandleFunc("PUT /puzzles/{name}/{word}/selection", fourByFour(s.FourByFour.ToggleWord))
	mux.HandleFunc("POST /puzzles/{name}/selection-submission", fourByFour(s.FourByFour.Submit))

	// Admin routes
	mux.HandleFunc("GET /admin/puzzles", m.RequireAdmin(s.Admin.ListPuzzles))
	mux.HandleFunc("POST /admin/puzzles", m.RequireAdmin(s.Admin.CreatePuzzle))
	mux.HandleFunc("PATCH /admin/puzzles/{name}", m.RequireAdmin(s.Admin.UpdatePuzzle))
	mux.HandleFunc("GET /admin/visitors", m.RequireAdmin(s.Admin.ListVisitors))
	mux.HandleFunc("POST /admin/visitors", m.RequireAdmin(s.Admin.CreateVisitor))
	mux.HandleFunc("POST /admin/visitors/{uid}/checkout", m.RequireAdmin(s.Admin.CheckOutVisitor))
	mux.HandleFunc("GET /admin/visitors/{uid}/status", m.RequireAdmin(s.Admin.VisitorStatus))
	mux.HandleFunc("GET /admin/visitor-pool", m.RequireAdmin(s.Admin.ListPool))
	mux.HandleFunc("POST /admin/visitor-pool", m.RequireAdmin(s.Admin.CreatePool))
	mux.HandleFunc("GET /admin/responses", m.RequireAdmin(s.Admin.ListResponses))
	mux.HandleFunc("GET /admin/backup", m.RequireAdmin(s.Admin.ExportDatabase))
	mux.HandleFunc("POST /admin/backup", m.RequireAdmin(s.Admin.ImportDatabase))

	return mux
}
