package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"scavenger/internal/fourbyfour"
	"scavenger/internal/metrics"
	"sync"
)

// FourByFourService plays FourByFour games stored through the StateService.
// The solution of a puzzle is its stored answer.
type FourByFourService struct {
	puzzles *PuzzleService
	states  *StateService
	metrics *metrics.Metrics

	mu        sync.Mutex
	solutions map[string]*fourbyfour.Solution
}

// NewFourByFourService creates a new FourByFour service
func NewFourByFourService(puzzles *PuzzleService, states *StateService, m *metrics.Metrics) *FourByFourService {
	return &FourByFourService{
		puzzles:   puzzles,
		states:    states,
		metrics:   m,
		solutions: make(map[string]*fourbyfour.Solution),
	}
}

// Status returns the visitor's game, starting one if needed
func (s *FourByFourService) Status(puzzleName, visitorUID string) (*fourbyfour.PuzzleStatus, error) {
	return s.apply(puzzleName, visitorUID, func(*fourbyfour.PuzzleStatus) error {
		return nil
	})
}

// Shuffle reorders the unplaced words
func (s *FourByFourService) Shuffle(puzzleName, visitorUID string) (*fourbyfour.PuzzleStatus, error) {
	return s.apply(puzzleName, visitorUID, func(p *fourbyfour.PuzzleStatus) error {
		p.ShuffleWords()
		return nil
	})
}

// DeselectAll clears the selection
func (s *FourByFourService) DeselectAll(puzzleName, visitorUID string) (*fourbyfour.PuzzleStatus, error) {
	return s.apply(puzzleName, visitorUID, func(p *fourbyfour.PuzzleStatus) error {
		p.DeselectAllWords()
		return nil
	})
}

// ToggleWord flips the selection of one word. On a rule violation such as
// fourbyfour.ErrSelectionLimit the unchanged game is returned with the error.
func (s *FourByFourService) ToggleWord(puzzleName, visitorUID, wordID string) (*fourbyfour.PuzzleStatus, error) {
	return s.apply(puzzleName, visitorUID, func(p *fourbyfour.PuzzleStatus) error {
		return p.ToggleWordSelection(wordID)
	})
}

// Submission is a judged selection together with the game it was played on
type Submission struct {
	Status *fourbyfour.PuzzleStatus
	Result fourbyfour.SubmitResult
}

// Submit judges the current selection. A finished game is recorded as a
// response and its stored state is dropped; if recording fails the stored
// game is left as it was before the submission. On a rule violation such as
// fourbyfour.ErrNotEnoughSelected the unchanged game is returned with the error.
func (s *FourByFourService) Submit(puzzleName, visitorUID string) (*Submission, error) {
	sol, err := s.solution(puzzleName)
	if err != nil {
		return nil, err
	}

	var status *fourbyfour.PuzzleStatus
	var result fourbyfour.SubmitResult
	var ruleErr error
	err = s.states.UpdateState(puzzleName, visitorUID, func(doc json.RawMessage) (json.RawMessage, error) {
		status = load(doc, sol, puzzleName)

		result, ruleErr = status.SubmitSelection()
		if ruleErr != nil || !result.Outcome.IsTerminal() {
			return json.Marshal(status)
		}

		solved := result.Outcome == fourbyfour.OutcomePuzzleSolved
		if err := s.puzzles.RecordResponse(puzzleName, visitorUID, status.ExportSolution(), solved); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	if ruleErr != nil {
		return &Submission{Status: status}, ruleErr
	}

	s.metrics.ObserveSubmission(puzzleName, result.Outcome.String())
	return &Submission{Status: status, Result: result}, nil
}

// Reset replaces the visitor's game with a fresh one
func (s *FourByFourService) Reset(puzzleName, visitorUID string) (*fourbyfour.PuzzleStatus, error) {
	sol, err := s.solution(puzzleName)
	if err != nil {
		return nil, err
	}

	fresh := fourbyfour.New(sol)
	err = s.states.UpdateState(puzzleName, visitorUID, func(json.RawMessage) (json.RawMessage, error) {
		return json.Marshal(fresh)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveReset(puzzleName)
	return fresh, nil
}

// apply loads the game, runs fn and stores the result under the state lock.
// An error from fn is a rule violation: the game is still written and
// returned alongside it. Any other error comes with a nil game.
func (s *FourByFourService) apply(puzzleName, visitorUID string, fn func(*fourbyfour.PuzzleStatus) error) (*fourbyfour.PuzzleStatus, error) {
	sol, err := s.solution(puzzleName)
	if err != nil {
		return nil, err
	}

	var status *fourbyfour.PuzzleStatus
	var ruleErr error
	err = s.states.UpdateState(puzzleName, visitorUID, func(doc json.RawMessage) (json.RawMessage, error) {
		status = load(doc, sol, puzzleName)

		ruleErr = fn(status)
		return json.Marshal(status)
	})
	if err != nil {
		return nil, err
	}

	return status, ruleErr
}

// load decodes a stored game, or starts a new one when there is none
// or the stored one no longer fits the solution
func load(doc json.RawMessage, sol *fourbyfour.Solution, puzzleName string) *fourbyfour.PuzzleStatus {
	if len(doc) == 0 {
		return fourbyfour.New(sol)
	}

	status, err := fourbyfour.Decode(doc, sol)
	if err != nil {
		log.Printf("Discarding stored %s game: %v", puzzleName, err)
		return fourbyfour.New(sol)
	}
	return status
}

// solution parses the puzzle's answer, caching by answer text
func (s *FourByFourService) solution(puzzleName string) (*fourbyfour.Solution, error) {
	puzzle, err := s.puzzles.GetByName(puzzleName)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sol, ok := s.solutions[puzzle.Answer]; ok {
		return sol, nil
	}

	sol, err := fourbyfour.ParseSolution(puzzle.Answer)
	if err != nil {
		return nil, fmt.Errorf("puzzle %s: %w", puzzleName, err)
	}
	s.solutions[puzzle.Answer] = sol
	return sol, nil
}

// IsRuleError reports whether err is a recoverable game rule violation
func IsRuleError(err error) bool {
	return errors.Is(err, fourbyfour.ErrWordNotFound) ||
		errors.Is(err, fourbyfour.ErrSelectionLimit) ||
		errors.Is(err, fourbyfour.ErrNotEnoughSelected) ||
		errors.Is(err, fourbyfour.ErrGameFinished)
}
