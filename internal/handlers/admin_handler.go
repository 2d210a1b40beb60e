package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"scavenger/internal/models"
	"scavenger/internal/service"
	"scavenger/internal/validation"
	"strconv"
	"time"
)

const maxPoolBatch = 1000

// AdminHandler handles admin-specific routes
type AdminHandler struct {
	puzzles       *service.PuzzleService
	visitors      *service.VisitorService
	backupService *service.BackupService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(puzzles *service.PuzzleService, visitors *service.VisitorService, backupService *service.BackupService) *AdminHandler {
	return &AdminHandler{
		puzzles:       puzzles,
		visitors:      visitors,
		backupService: backupService,
	}
}

// ListPuzzles lists every puzzle, active or not
func (h *AdminHandler) ListPuzzles(w http.ResponseWriter, r *http.Request) {
	puzzles, err := h.puzzles.GetAll(false)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error listing puzzles", err)
		return
	}

	views := make([]AdminPuzzleView, 0, len(puzzles))
	for i := range puzzles {
		views = append(views, newAdminPuzzleView(&puzzles[i]))
	}
	respondWithJSON(w, http.StatusOK, views)
}

type createPuzzleRequest struct {
	Name     string `json:"name"`
	Answer   string `json:"answer"`
	Active   *bool  `json:"active"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

// CreatePuzzle adds a puzzle. Puzzles are active unless stated otherwise.
func (h *AdminHandler) CreatePuzzle(w http.ResponseWriter, r *http.Request) {
	var req createPuzzleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	puzzle, err := h.puzzles.Create(req.Name, req.Answer, active, req.Location, req.Notes)
	if err != nil {
		h.puzzleError(w, err)
		return
	}

	log.Printf("Puzzle %s created (active=%v)", puzzle.Name, puzzle.Active)
	respondWithJSON(w, http.StatusCreated, newAdminPuzzleView(puzzle))
}

type updatePuzzleRequest struct {
	Name     *string `json:"name"`
	Answer   *string `json:"answer"`
	Active   *bool   `json:"active"`
	Location *string `json:"location"`
	Notes    *string `json:"notes"`
}

// UpdatePuzzle changes the fields present in the request body
func (h *AdminHandler) UpdatePuzzle(w http.ResponseWriter, r *http.Request) {
	var req updatePuzzleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	puzzle, err := h.puzzles.Update(r.PathValue("name"), models.PuzzleUpdate{
		Name:     req.Name,
		Answer:   req.Answer,
		Active:   req.Active,
		Location: req.Location,
		Notes:    req.Notes,
	})
	if err != nil {
		h.puzzleError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, newAdminPuzzleView(puzzle))
}

func (h *AdminHandler) puzzleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrPuzzleNotFound):
		respondWithError(w, http.StatusNotFound, ErrPuzzleNotFoundMsg, "", nil)
	case errors.Is(err, service.ErrPuzzleExists):
		respondWithError(w, http.StatusConflict, "Puzzle already exists", "", nil)
	case errors.Is(err, validation.ErrPuzzleNameInvalid),
		errors.Is(err, validation.ErrAnswerEmpty),
		errors.Is(err, validation.ErrAnswerTooLong),
		errors.Is(err, service.ErrMapInvalid):
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error saving puzzle", err)
	}
}

// ListVisitors lists visitors, filtered by ?uid= prefix and ?still_playing=true
func (h *AdminHandler) ListVisitors(w http.ResponseWriter, r *http.Request) {
	stillPlaying, _ := strconv.ParseBool(r.URL.Query().Get("still_playing"))

	visitors, err := h.visitors.GetAll(r.URL.Query().Get("uid"), stillPlaying)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error listing visitors", err)
		return
	}

	views := make([]VisitorView, 0, len(visitors))
	for i := range visitors {
		views = append(views, newVisitorView(&visitors[i]))
	}
	respondWithJSON(w, http.StatusOK, views)
}

type createVisitorRequest struct {
	UID string `json:"uid"`
}

// CreateVisitor registers a visitor on someone's behalf
func (h *AdminHandler) CreateVisitor(w http.ResponseWriter, r *http.Request) {
	var req createVisitorRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}
	if err := validation.ValidateUID(req.UID); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	visitor, err := h.visitors.Create(req.UID, r.UserAgent())
	switch {
	case errors.Is(err, service.ErrVisitorExists):
		respondWithError(w, http.StatusConflict, "Visitor already exists", "", nil)
		return
	case errors.Is(err, service.ErrVisitorUIDInvalid):
		respondWithError(w, http.StatusBadRequest, "Visitor code is not in the pool", "", nil)
		return
	case err != nil:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error creating visitor", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, newVisitorView(visitor))
}

// CheckOutVisitor ends the hunt for a visitor
func (h *AdminHandler) CheckOutVisitor(w http.ResponseWriter, r *http.Request) {
	visitor, err := h.visitors.CheckOut(r.PathValue("uid"))
	if errors.Is(err, service.ErrInvalidVisitor) {
		respondWithError(w, http.StatusNotFound, "Visitor not found", "", nil)
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error checking out visitor", err)
		return
	}

	log.Printf("Visitor %s checked out", visitor.UID)
	respondWithJSON(w, http.StatusOK, newVisitorView(visitor))
}

type visitorStatusResponse struct {
	*VisitorStatusView
	Responses []ResponseView `json:"responses"`
}

// VisitorStatus reports a visitor's progress and correct answers
func (h *AdminHandler) VisitorStatus(w http.ResponseWriter, r *http.Request) {
	uid := r.PathValue("uid")

	status, err := h.visitors.Status(uid)
	if errors.Is(err, service.ErrInvalidVisitor) {
		respondWithError(w, http.StatusNotFound, "Visitor not found", "", nil)
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading visitor status", err)
		return
	}

	responses, err := h.visitors.CorrectResponses(uid)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading visitor responses", err)
		return
	}

	resp := visitorStatusResponse{
		VisitorStatusView: newVisitorStatusView(status),
		Responses:         make([]ResponseView, 0, len(responses)),
	}
	for _, res := range responses {
		resp.Responses = append(resp.Responses, newResponseView(res))
	}
	respondWithJSON(w, http.StatusOK, resp)
}

type createPoolRequest struct {
	Count int `json:"count"`
}

// CreatePool generates fresh visitor uids
func (h *AdminHandler) CreatePool(w http.ResponseWriter, r *http.Request) {
	var req createPoolRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}
	if req.Count < 1 || req.Count > maxPoolBatch {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("count must be between 1 and %d", maxPoolBatch), "", nil)
		return
	}

	uids, err := h.visitors.CreatePool(req.Count)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error creating visitor pool", err)
		return
	}

	log.Printf("Added %d visitor codes to the pool", len(uids))
	respondWithJSON(w, http.StatusCreated, uids)
}

// ListPool lists unused visitor uids, up to ?limit= entries
func (h *AdminHandler) ListPool(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit", "", nil)
			return
		}
		limit = n
	}

	entries, err := h.visitors.GetPool(limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error listing visitor pool", err)
		return
	}

	views := make([]PoolEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, PoolEntryView{UID: e.UID, CreatedAt: e.CreatedAt})
	}
	respondWithJSON(w, http.StatusOK, views)
}

// ListResponses lists responses filtered by ?puzzle= and ?visitor= prefixes
func (h *AdminHandler) ListResponses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	responses, err := h.puzzles.GetAllResponses(q.Get("puzzle"), q.Get("visitor"))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error listing responses", err)
		return
	}

	views := make([]ResponseView, 0, len(responses))
	for _, res := range responses {
		views = append(views, newResponseView(res))
	}
	respondWithJSON(w, http.StatusOK, views)
}

// ExportDatabase exports the database to JSON for download
func (h *AdminHandler) ExportDatabase(w http.ResponseWriter, r *http.Request) {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("scavenger_backup_%s.json", timestamp)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	if err := h.backupService.ExportToWriter(w); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to export database", "Error exporting database", err)
		return
	}

	log.Printf("Database exported by admin")
}

// ImportDatabase restores a backup posted as the request body
func (h *AdminHandler) ImportDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.backupService.ImportFromReader(r.Body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to import database: "+err.Error(), "Error importing database", err)
		return
	}

	log.Printf("Database imported by admin")
	w.WriteHeader(http.StatusNoContent)
}
