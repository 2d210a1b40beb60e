package handlers

import (
	"errors"
	"net/http"
	"scavenger/internal/fourbyfour"
	"scavenger/internal/service"
)

// FourByFourHandler serves the FourByFour puzzles
type FourByFourHandler struct {
	games *service.FourByFourService
}

// NewFourByFourHandler creates a new FourByFour handler
func NewFourByFourHandler(games *service.FourByFourService) *FourByFourHandler {
	return &FourByFourHandler{games: games}
}

// Index shows the visitor's board, starting a game if needed
func (h *FourByFourHandler) Index(w http.ResponseWriter, r *http.Request) {
	name, uid := puzzleAndVisitor(r)
	status, err := h.games.Status(name, uid)
	h.respond(w, name, status, err)
}

// Shuffled reorders the unsolved words
func (h *FourByFourHandler) Shuffled(w http.ResponseWriter, r *http.Request) {
	name, uid := puzzleAndVisitor(r)
	status, err := h.games.Shuffle(name, uid)
	h.respond(w, name, status, err)
}

// DeselectAll clears the selection
func (h *FourByFourHandler) DeselectAll(w http.ResponseWriter, r *http.Request) {
	name, uid := puzzleAndVisitor(r)
	status, err := h.games.DeselectAll(name, uid)
	h.respond(w, name, status, err)
}

// ToggleWord selects or deselects the word in the path
func (h *FourByFourHandler) ToggleWord(w http.ResponseWriter, r *http.Request) {
	name, uid := puzzleAndVisitor(r)
	status, err := h.games.ToggleWord(name, uid, r.PathValue("word"))
	h.respond(w, name, status, err)
}

// Submit judges the current selection
func (h *FourByFourHandler) Submit(w http.ResponseWriter, r *http.Request) {
	name, uid := puzzleAndVisitor(r)
	sub, err := h.games.Submit(name, uid)
	if err != nil {
		var status *fourbyfour.PuzzleStatus
		if sub != nil {
			status = sub.Status
		}
		h.respond(w, name, status, err)
		return
	}

	view := newFourByFourView(name, sub.Status)
	view.Outcome = sub.Result.Outcome.String()
	view.OneAway = sub.Result.OneAway
	if err := sub.Result.Err(); err != nil {
		view.Message = err.Error()
	}
	respondWithJSON(w, http.StatusOK, view)
}

// Reset starts the visitor over with a fresh game
func (h *FourByFourHandler) Reset(w http.ResponseWriter, r *http.Request) {
	name, uid := puzzleAndVisitor(r)
	status, err := h.games.Reset(name, uid)
	h.respond(w, name, status, err)
}

func (h *FourByFourHandler) respond(w http.ResponseWriter, name string, status *fourbyfour.PuzzleStatus, err error) {
	if err == nil {
		respondWithJSON(w, http.StatusOK, newFourByFourView(name, status))
		return
	}

	if service.IsRuleError(err) && status != nil {
		code := http.StatusConflict
		if errors.Is(err, fourbyfour.ErrWordNotFound) {
			code = http.StatusNotFound
		}
		view := newFourByFourView(name, status)
		view.Message = err.Error()
		respondWithJSON(w, code, view)
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidVisitor):
		respondWithError(w, http.StatusUnauthorized, ErrVisitorNotAuthenticated, "", nil)
	case errors.Is(err, service.ErrPuzzleNotFound):
		respondWithError(w, http.StatusNotFound, ErrPuzzleNotFoundMsg, "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error playing "+name, err)
	}
}

func puzzleAndVisitor(r *http.Request) (string, string) {
	return r.PathValue("name"), GetVisitorFromContext(r.Context()).UID
}
