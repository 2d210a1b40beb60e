package service

import (
	"fmt"
	"scavenger/internal/metrics"
	"scavenger/internal/models"
	"scavenger/internal/repository"
	"scavenger/internal/security"
	"time"
)

// VisitorService handles visitor registration and progress
type VisitorService struct {
	visitorRepo      *repository.VisitorRepository
	puzzleRepo       *repository.PuzzleRepository
	responseRepo     *repository.ResponseRepository
	metrics          *metrics.Metrics
	successThreshold float64
}

// NewVisitorService creates a new visitor service
func NewVisitorService(visitorRepo *repository.VisitorRepository, puzzleRepo *repository.PuzzleRepository, responseRepo *repository.ResponseRepository, m *metrics.Metrics, successThreshold float64) *VisitorService {
	return &VisitorService{
		visitorRepo:      visitorRepo,
		puzzleRepo:       puzzleRepo,
		responseRepo:     responseRepo,
		metrics:          m,
		successThreshold: successThreshold,
	}
}

// CreatePool adds n freshly generated uids to the visitor pool
func (s *VisitorService) CreatePool(n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	uids := make([]string, n)
	for i := range uids {
		uids[i] = security.GenerateVisitorUID()
	}
	if err := s.visitorRepo.AddToPool(uids); err != nil {
		return nil, fmt.Errorf("failed to create visitor pool: %w", err)
	}
	return uids, nil
}

// GetPool lists up to limit unused uids
func (s *VisitorService) GetPool(limit int) ([]models.VisitorPoolEntry, error) {
	return s.visitorRepo.GetPool(limit)
}

// Create registers the visitor owning uid. The uid must come from the pool.
func (s *VisitorService) Create(uid, userAgent string) (*models.Visitor, error) {
	existing, err := s.visitorRepo.GetByUID(uid)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing visitor: %w", err)
	}
	if existing != nil {
		return nil, ErrVisitorExists
	}

	available, err := s.visitorRepo.InPool(uid)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrVisitorUIDInvalid
	}

	// The pool entry may still be taken by a concurrent registration
	visitor, err := s.visitorRepo.Create(uid, userAgent)
	if err != nil {
		return nil, err
	}
	if visitor == nil {
		return nil, ErrVisitorUIDInvalid
	}

	s.metrics.ObserveRegistration()
	return visitor, nil
}

// Get retrieves a visitor or ErrInvalidVisitor
func (s *VisitorService) Get(uid string) (*models.Visitor, error) {
	visitor, err := s.visitorRepo.GetByUID(uid)
	if err != nil {
		return nil, fmt.Errorf("failed to get visitor: %w", err)
	}
	if visitor == nil {
		return nil, ErrInvalidVisitor
	}
	return visitor, nil
}

// CheckOut ends the hunt for a visitor. Checking out twice keeps the first time.
func (s *VisitorService) CheckOut(uid string) (*models.Visitor, error) {
	visitor, err := s.Get(uid)
	if err != nil {
		return nil, err
	}
	if visitor.IsCheckedOut() {
		return visitor, nil
	}

	now := time.Now().UTC()
	if err := s.visitorRepo.CheckOut(visitor.ID, now); err != nil {
		return nil, err
	}
	visitor.CheckedOut = &now
	return visitor, nil
}

// GetAll lists visitors by uid prefix, optionally only those still playing
func (s *VisitorService) GetAll(uidPrefix string, stillPlaying bool) ([]models.Visitor, error) {
	return s.visitorRepo.GetAll(uidPrefix, stillPlaying)
}

// CorrectResponses lists the visitor's correct answers
func (s *VisitorService) CorrectResponses(uid string) ([]models.Response, error) {
	visitor, err := s.Get(uid)
	if err != nil {
		return nil, err
	}
	return s.responseRepo.GetCorrectByVisitor(visitor.ID)
}

// Status reports the visitor's progress against the active puzzles
func (s *VisitorService) Status(uid string) (models.VisitorStatus, error) {
	visitor, err := s.Get(uid)
	if err != nil {
		return models.VisitorStatus{}, err
	}

	active, err := s.puzzleRepo.Count(true)
	if err != nil {
		return models.VisitorStatus{}, err
	}
	correct, err := s.responseRepo.CountCorrectActive(visitor.ID)
	if err != nil {
		return models.VisitorStatus{}, err
	}

	return models.VisitorStatus{
		UID:              visitor.UID,
		CorrectAnswers:   correct,
		ActivePuzzles:    active,
		CheckedOut:       visitor.IsCheckedOut(),
		SuccessThreshold: s.successThreshold,
	}, nil
}

// HasCompletedAllPuzzles reports whether every active puzzle was solved
func (s *VisitorService) HasCompletedAllPuzzles(uid string) (bool, error) {
	status, err := s.Status(uid)
	if err != nil {
		return false, err
	}
	return status.Completed(), nil
}
