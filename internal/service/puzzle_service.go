package service

import (
	"encoding/json"
	"fmt"
	"log"
	"scavenger/internal/metrics"
	"scavenger/internal/models"
	"scavenger/internal/repository"
	"scavenger/internal/validation"
)

// AnswerResult is the outcome of comparing a submitted answer
type AnswerResult struct {
	Correct       bool
	AlreadySolved bool
}

// PuzzleService handles puzzles and the responses recorded against them
type PuzzleService struct {
	puzzleRepo      *repository.PuzzleRepository
	visitorRepo     *repository.VisitorRepository
	responseRepo    *repository.ResponseRepository
	metrics         *metrics.Metrics
	sessionsEnabled bool
}

// NewPuzzleService creates a new puzzle service
func NewPuzzleService(puzzleRepo *repository.PuzzleRepository, visitorRepo *repository.VisitorRepository, responseRepo *repository.ResponseRepository, m *metrics.Metrics, sessionsEnabled bool) *PuzzleService {
	return &PuzzleService{
		puzzleRepo:      puzzleRepo,
		visitorRepo:     visitorRepo,
		responseRepo:    responseRepo,
		metrics:         m,
		sessionsEnabled: sessionsEnabled,
	}
}

// GetAll lists puzzles, optionally only the active ones
func (s *PuzzleService) GetAll(onlyActive bool) ([]models.Puzzle, error) {
	puzzles, err := s.puzzleRepo.GetAll(onlyActive)
	if err != nil {
		return nil, fmt.Errorf("failed to get puzzles: %w", err)
	}
	return puzzles, nil
}

// Count counts puzzles, optionally only the active ones
func (s *PuzzleService) Count(onlyActive bool) (int, error) {
	return s.puzzleRepo.Count(onlyActive)
}

// GetByName retrieves a puzzle or ErrPuzzleNotFound
func (s *PuzzleService) GetByName(name string) (*models.Puzzle, error) {
	puzzle, err := s.puzzleRepo.GetByName(name)
	if err != nil {
		return nil, fmt.Errorf("failed to get puzzle: %w", err)
	}
	if puzzle == nil {
		return nil, ErrPuzzleNotFound
	}
	return puzzle, nil
}

// Create adds a new puzzle
func (s *PuzzleService) Create(name, answer string, active bool, location, notes string) (*models.Puzzle, error) {
	if err := validation.ValidatePuzzleName(name); err != nil {
		return nil, err
	}
	if err := validation.ValidateAnswer(answer); err != nil {
		return nil, err
	}
	if name == models.MapPuzzleName {
		if _, err := parseMapLocations(answer); err != nil {
			return nil, err
		}
	}

	existing, err := s.puzzleRepo.GetByName(name)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing puzzle: %w", err)
	}
	if existing != nil {
		return nil, ErrPuzzleExists
	}

	puzzle, err := s.puzzleRepo.Create(name, answer, active, location, notes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPuzzleCreate, err)
	}
	return puzzle, nil
}

// Update changes the given fields of the named puzzle
func (s *PuzzleService) Update(name string, upd models.PuzzleUpdate) (*models.Puzzle, error) {
	puzzle, err := s.GetByName(name)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil && *upd.Name != puzzle.Name {
		if err := validation.ValidatePuzzleName(*upd.Name); err != nil {
			return nil, err
		}
		other, err := s.puzzleRepo.GetByName(*upd.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing puzzle: %w", err)
		}
		if other != nil {
			return nil, ErrPuzzleExists
		}
	}
	if upd.Answer != nil {
		if err := validation.ValidateAnswer(*upd.Answer); err != nil {
			return nil, err
		}
	}
	name, answer := valueOr(upd.Name, puzzle.Name), valueOr(upd.Answer, puzzle.Answer)
	if name == models.MapPuzzleName {
		if _, err := parseMapLocations(answer); err != nil {
			return nil, err
		}
	}

	if err := s.puzzleRepo.Update(puzzle.ID, upd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPuzzleUpdate, err)
	}

	return s.puzzleRepo.GetByID(puzzle.ID)
}

// CompareAnswer checks an answer against the stored one. The comparison is
// case sensitive. With sessions enabled the attempt is recorded, unless the
// visitor has already solved the puzzle.
func (s *PuzzleService) CompareAnswer(puzzleName, visitorUID, answer string) (AnswerResult, error) {
	puzzle, err := s.GetByName(puzzleName)
	if err != nil {
		return AnswerResult{}, err
	}

	result := AnswerResult{Correct: answer == puzzle.Answer}

	if !s.sessionsEnabled || visitorUID == models.NoSessionUID {
		return result, nil
	}

	visitor, err := s.visitor(visitorUID)
	if err != nil {
		return AnswerResult{}, err
	}

	solved, err := s.responseRepo.HasCorrect(visitor.ID, puzzle.ID)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("failed to check previous responses: %w", err)
	}
	if solved {
		result.AlreadySolved = true
		return result, nil
	}

	if _, err := s.responseRepo.Create(visitor.ID, puzzle.ID, answer, result.Correct); err != nil {
		return AnswerResult{}, fmt.Errorf("failed to record response: %w", err)
	}
	s.metrics.ObserveResponse(puzzle.Name, result.Correct)

	return result, nil
}

// RecordResponse stores the result of a game that decides correctness itself.
// Anonymous play and disabled sessions record nothing, and neither does a
// replay of a puzzle the visitor has already solved.
func (s *PuzzleService) RecordResponse(puzzleName, visitorUID, answer string, correct bool) error {
	if !s.sessionsEnabled || visitorUID == models.NoSessionUID {
		return nil
	}

	puzzle, err := s.GetByName(puzzleName)
	if err != nil {
		return err
	}
	visitor, err := s.visitor(visitorUID)
	if err != nil {
		return err
	}

	solved, err := s.responseRepo.HasCorrect(visitor.ID, puzzle.ID)
	if err != nil {
		return fmt.Errorf("failed to check previous responses: %w", err)
	}
	if solved {
		return nil
	}

	if _, err := s.responseRepo.Create(visitor.ID, puzzle.ID, answer, correct); err != nil {
		return fmt.Errorf("failed to record response: %w", err)
	}
	s.metrics.ObserveResponse(puzzle.Name, correct)
	log.Printf("Recorded %s response for visitor %s (correct=%v)", puzzle.Name, visitor.UID, correct)
	return nil
}

// GetAllResponses lists responses filtered by puzzle name and visitor uid prefixes
func (s *PuzzleService) GetAllResponses(puzzlePrefix, visitorPrefix string) ([]models.Response, error) {
	responses, err := s.responseRepo.GetAll(puzzlePrefix, visitorPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to get responses: %w", err)
	}
	return responses, nil
}

func (s *PuzzleService) visitor(uid string) (*models.Visitor, error) {
	visitor, err := s.visitorRepo.GetByUID(uid)
	if err != nil {
		return nil, fmt.Errorf("failed to look up visitor: %w", err)
	}
	if visitor == nil {
		return nil, ErrInvalidVisitor
	}
	return visitor, nil
}

// MapLocations decodes the marker positions stored as the answer of the map puzzle
func (s *PuzzleService) MapLocations() ([]models.MapLocation, error) {
	puzzle, err := s.GetByName(models.MapPuzzleName)
	if err != nil {
		return nil, err
	}
	return parseMapLocations(puzzle.Answer)
}

func parseMapLocations(answer string) ([]models.MapLocation, error) {
	locations := []models.MapLocation{}
	if err := json.Unmarshal([]byte(answer), &locations); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMapInvalid, err)
	}
	return locations, nil
}

func valueOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}
