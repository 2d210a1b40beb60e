package handlers

import (
	"errors"
	"net/http"
	"scavenger/internal/service"
)

// AnagramHandler serves the letter shuffling puzzles
type AnagramHandler struct {
	anagrams *service.AnagramService
}

// NewAnagramHandler creates a new anagram handler
func NewAnagramHandler(anagrams *service.AnagramService) *AnagramHandler {
	return &AnagramHandler{anagrams: anagrams}
}

// Index shows the visitor's last shuffle
func (h *AnagramHandler) Index(w http.ResponseWriter, r *http.Request) {
	name, uid := puzzleAndVisitor(r)
	word, err := h.anagrams.Current(name, uid)
	h.respond(w, name, word, err)
}

// Shuffled scrambles the letters again
func (h *AnagramHandler) Shuffled(w http.ResponseWriter, r *http.Request) {
	name, uid := puzzleAndVisitor(r)
	word, err := h.anagrams.Shuffle(name, uid)
	h.respond(w, name, word, err)
}

func (h *AnagramHandler) respond(w http.ResponseWriter, name, word string, err error) {
	switch {
	case err == nil:
		respondWithJSON(w, http.StatusOK, AnagramView{Puzzle: name, Word: word})
	case errors.Is(err, service.ErrInvalidVisitor):
		respondWithError(w, http.StatusUnauthorized, ErrVisitorNotAuthenticated, "", nil)
	case errors.Is(err, service.ErrPuzzleNotFound):
		respondWithError(w, http.StatusNotFound, ErrPuzzleNotFoundMsg, "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error shuffling "+name, err)
	}
}
