package handlers

import (
	"errors"
	"net/http"
	"scavenger/internal/config"
	"scavenger/internal/models"
	"scavenger/internal/security"
	"scavenger/internal/service"
	"scavenger/internal/validation"
	"time"
)

// GameHandler handles registration, progress and plain answer submissions
type GameHandler struct {
	visitors        *service.VisitorService
	puzzles         *service.PuzzleService
	secret          []byte
	cookieKey       string
	cookieMaxAge    time.Duration
	sessionsEnabled bool
}

// NewGameHandler creates a new game handler
func NewGameHandler(cfg *config.Config, visitors *service.VisitorService, puzzles *service.PuzzleService) *GameHandler {
	return &GameHandler{
		visitors:        visitors,
		puzzles:         puzzles,
		secret:          []byte(cfg.SessionSecret),
		cookieKey:       cfg.CookieKey,
		cookieMaxAge:    cfg.CookieMaxAge,
		sessionsEnabled: cfg.SessionsEnabled,
	}
}

// Home reports the visitor's progress and the active puzzles
func (h *GameHandler) Home(w http.ResponseWriter, r *http.Request) {
	auth := GetVisitorFromContext(r.Context())

	puzzles, err := h.puzzles.GetAll(true)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading puzzles", err)
		return
	}

	data := HomeViewData{
		Registered: auth.Authenticated,
		Puzzles:    make([]PuzzleView, 0, len(puzzles)),
	}
	for _, p := range puzzles {
		data.Puzzles = append(data.Puzzles, newPuzzleView(p))
	}

	if auth.UID != models.NoSessionUID {
		status, err := h.visitors.Status(auth.UID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading visitor status", err)
			return
		}
		data.Visitor = newVisitorStatusView(status)
	}

	respondWithJSON(w, http.StatusOK, data)
}

// Register creates the visitor for a pool uid, or re-attaches a returning
// visitor, and sets the signed session cookie
func (h *GameHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.sessionsEnabled {
		respondWithError(w, http.StatusNotFound, "Registration is disabled", "", nil)
		return
	}

	uid := r.PathValue("uid")
	if err := validation.ValidateUID(uid); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid visitor code", "", nil)
		return
	}

	visitor, err := h.visitors.Get(uid)
	if errors.Is(err, service.ErrInvalidVisitor) {
		visitor, err = h.visitors.Create(uid, r.UserAgent())
		if errors.Is(err, service.ErrVisitorExists) {
			visitor, err = h.visitors.Get(uid)
		}
	}
	switch {
	case errors.Is(err, service.ErrVisitorUIDInvalid):
		respondWithError(w, http.StatusNotFound, "Unknown visitor code", "", nil)
		return
	case err != nil:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error registering visitor", err)
		return
	case visitor.IsCheckedOut():
		respondWithError(w, http.StatusForbidden, ErrVisitorCheckedOut, "", nil)
		return
	}

	token, err := security.SignVisitorToken(h.secret, visitor.UID, h.cookieMaxAge)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error signing visitor token", err)
		return
	}
	http.SetCookie(w, security.CreateVisitorCookie(r, h.cookieKey, token, h.cookieMaxAge))

	status, err := h.visitors.Status(visitor.UID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading visitor status", err)
		return
	}
	respondWithJSON(w, http.StatusOK, newVisitorStatusView(status))
}

type submissionRequest struct {
	Puzzle string `json:"puzzle"`
	Answer string `json:"answer"`
}

// SubmitAnswer compares an answer against an active puzzle
func (h *GameHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	auth := GetVisitorFromContext(r.Context())

	var req submissionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}
	if err := validation.ValidateAnswer(req.Answer); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	puzzle, err := h.puzzles.GetByName(req.Puzzle)
	if errors.Is(err, service.ErrPuzzleNotFound) {
		respondWithError(w, http.StatusNotFound, ErrPuzzleNotFoundMsg, "", nil)
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading puzzle", err)
		return
	}
	if !puzzle.Active {
		respondWithError(w, http.StatusForbidden, ErrPuzzleDisabledMsg, "", nil)
		return
	}

	result, err := h.puzzles.CompareAnswer(puzzle.Name, auth.UID, req.Answer)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error comparing answer", err)
		return
	}

	respondWithJSON(w, http.StatusOK, AnswerView{
		Puzzle:        puzzle.Name,
		Correct:       result.Correct,
		AlreadySolved: result.AlreadySolved,
	})
}

// Map lists the marker positions of the hunt map
func (h *GameHandler) Map(w http.ResponseWriter, r *http.Request) {
	locations, err := h.puzzles.MapLocations()
	if errors.Is(err, service.ErrPuzzleNotFound) {
		respondWithError(w, http.StatusNotFound, "Map is not available", "", nil)
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading map", err)
		return
	}

	view := MapView{Locations: make([]MapLocationView, 0, len(locations))}
	for _, l := range locations {
		view.Locations = append(view.Locations, MapLocationView{Top: l.Top, Left: l.Left})
	}
	respondWithJSON(w, http.StatusOK, view)
}
