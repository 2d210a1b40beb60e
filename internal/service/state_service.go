package service

import (
	"encoding/json"
	"fmt"
	"scavenger/internal/models"
	"scavenger/internal/repository"
	"sync"
)

// StateService stores one opaque JSON document per puzzle and visitor.
// Visitors identified by models.NoSessionUID share the SharedState cell
// of the puzzle instead of a database row.
type StateService struct {
	puzzleRepo  *repository.PuzzleRepository
	visitorRepo *repository.VisitorRepository
	stateRepo   *repository.StateRepository
	shared      *SharedState
	locks       keyedMutex
}

// NewStateService creates a new state service
func NewStateService(puzzleRepo *repository.PuzzleRepository, visitorRepo *repository.VisitorRepository, stateRepo *repository.StateRepository, shared *SharedState) *StateService {
	return &StateService{
		puzzleRepo:  puzzleRepo,
		visitorRepo: visitorRepo,
		stateRepo:   stateRepo,
		shared:      shared,
		locks:       keyedMutex{locks: make(map[string]*keyLock)},
	}
}

// GetState returns the stored document, or nil when there is none yet
func (s *StateService) GetState(puzzleName, visitorUID string) (json.RawMessage, error) {
	if visitorUID == models.NoSessionUID {
		return s.shared.Get(puzzleName), nil
	}

	puzzle, visitor, err := s.resolve(puzzleName, visitorUID)
	if err != nil {
		return nil, err
	}

	state, err := s.stateRepo.Get(puzzle.ID, visitor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load puzzle state: %w", err)
	}
	if state == nil {
		return nil, nil
	}
	return json.RawMessage(state.State), nil
}

// SetState creates or overwrites the stored document
func (s *StateService) SetState(puzzleName, visitorUID string, doc json.RawMessage) error {
	if visitorUID == models.NoSessionUID {
		s.shared.Set(puzzleName, doc)
		return nil
	}

	puzzle, visitor, err := s.resolve(puzzleName, visitorUID)
	if err != nil {
		return err
	}

	existing, err := s.stateRepo.Get(puzzle.ID, visitor.ID)
	if err != nil {
		return fmt.Errorf("failed to load puzzle state: %w", err)
	}

	if existing == nil {
		if _, err := s.stateRepo.Create(puzzle.ID, visitor.ID, string(doc)); err != nil {
			return fmt.Errorf("%w: %v", ErrStateCreate, err)
		}
		return nil
	}

	if err := s.stateRepo.Update(existing.ID, string(doc)); err != nil {
		return fmt.Errorf("%w: %v", ErrStateUpdate, err)
	}
	return nil
}

// DeleteState drops the stored document if there is one
func (s *StateService) DeleteState(puzzleName, visitorUID string) error {
	if visitorUID == models.NoSessionUID {
		s.shared.Delete(puzzleName)
		return nil
	}

	puzzle, visitor, err := s.resolve(puzzleName, visitorUID)
	if err != nil {
		return err
	}

	if err := s.stateRepo.Delete(puzzle.ID, visitor.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrStateDelete, err)
	}
	return nil
}

// UpdateState runs a read-modify-write cycle for one key while holding
// a lock for that key. fn receives the current document (nil if none)
// and returns the replacement; a nil replacement deletes the document.
// If fn fails nothing is written.
func (s *StateService) UpdateState(puzzleName, visitorUID string, fn func(doc json.RawMessage) (json.RawMessage, error)) error {
	unlock := s.locks.Lock(puzzleName + "\x00" + visitorUID)
	defer unlock()

	current, err := s.GetState(puzzleName, visitorUID)
	if err != nil {
		return err
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	if next == nil {
		return s.DeleteState(puzzleName, visitorUID)
	}
	return s.SetState(puzzleName, visitorUID, next)
}

func (s *StateService) resolve(puzzleName, visitorUID string) (*models.Puzzle, *models.Visitor, error) {
	visitor, err := s.visitorRepo.GetByUID(visitorUID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up visitor: %w", err)
	}
	if visitor == nil {
		return nil, nil, ErrInvalidVisitor
	}

	puzzle, err := s.puzzleRepo.GetByName(puzzleName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up puzzle: %w", err)
	}
	if puzzle == nil {
		return nil, nil, ErrPuzzleNotFound
	}

	return puzzle, visitor, nil
}

// keyedMutex serialises callers per key and forgets keys nobody holds
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sync.Mutex
	refs int
}

// Lock blocks until key is free and returns the matching unlock
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
