// Package fourbyfour implements the word categorisation puzzle: sixteen words
// have to be sorted into four categories of four by submitting one group at a
// time, with a limited number of mistakes allowed.
package fourbyfour

import (
	"errors"
	"math/rand"
	"sort"
	"strings"
)

const (
	// SelectableAtOnce is the number of words that make up one submission
	SelectableAtOnce = 4

	// MaxMistakes is the number of incorrect submissions before the game is over
	MaxMistakes = 4
)

var (
	ErrWordNotFound       = errors.New("word not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrSelectionLimit     = errors.New("cannot select more words")
	ErrNotEnoughSelected  = errors.New("not enough words selected")
	ErrSelectionIncorrect = errors.New("selection is incorrect")
	ErrGameFinished       = errors.New("game has already finished")
)

// Word is a single tile of the puzzle
type Word struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	IsSelected bool   `json:"is_selected"`
}

// Category collects the words of one solved group
type Category struct {
	ID       string  `json:"id"`
	Words    []*Word `json:"words"`
	IsSolved bool    `json:"is_solved"`
}

// Name returns the display name of the category
func (c *Category) Name() string {
	parts := strings.Split(c.ID, "_")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}

// State is the lifecycle position of a puzzle
type State int

const (
	StateInProgress State = iota
	StateSolved
	StateGameOver
)

func (s State) String() string {
	switch s {
	case StateSolved:
		return "solved"
	case StateGameOver:
		return "game_over"
	default:
		return "in_progress"
	}
}

// Outcome is the result of a submission that passed its preconditions
type Outcome int

const (
	// OutcomeCategorySolved means the selection matched a category and more remain
	OutcomeCategorySolved Outcome = iota + 1
	// OutcomePuzzleSolved means the selection matched the last open category
	OutcomePuzzleSolved
	// OutcomeIncorrect means the selection matched nothing and a mistake was recorded
	OutcomeIncorrect
	// OutcomeGameOver means the selection matched nothing and no mistakes are left
	OutcomeGameOver
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCategorySolved:
		return "category_solved"
	case OutcomePuzzleSolved:
		return "puzzle_solved"
	case OutcomeIncorrect:
		return "incorrect"
	case OutcomeGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the outcome ends the game
func (o Outcome) IsTerminal() bool {
	return o == OutcomePuzzleSolved || o == OutcomeGameOver
}

// SubmitResult describes what a submission did
type SubmitResult struct {
	Outcome Outcome
	// Category is the category solved by the submission, if any
	Category *Category
	// OneAway is set on incorrect submissions where three of the four
	// selected words share a category
	OneAway bool
}

// Err returns ErrSelectionIncorrect for incorrect submissions and nil otherwise.
// The mistake has already been counted when this is returned.
func (r SubmitResult) Err() error {
	if r.Outcome == OutcomeIncorrect {
		return ErrSelectionIncorrect
	}
	return nil
}

// PuzzleStatus is one visitor's game
type PuzzleStatus struct {
	Categories        []*Category
	Words             []*Word
	MistakesAvailable int
	SelectableAtOnce  int

	solution *Solution
}

// New creates a fresh puzzle for the solution with the words in random order
func New(sol *Solution) *PuzzleStatus {
	categoryIDs := sol.Categories()
	categories := make([]*Category, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		categories = append(categories, &Category{ID: id, Words: []*Word{}})
	}

	vocabulary := sol.Vocabulary()
	words := make([]*Word, 0, len(vocabulary))
	for _, id := range vocabulary {
		words = append(words, &Word{ID: id, Text: wordText(id)})
	}

	p := &PuzzleStatus{
		Categories:        categories,
		Words:             words,
		MistakesAvailable: MaxMistakes,
		SelectableAtOnce:  SelectableAtOnce,
		solution:          sol,
	}
	p.ShuffleWords()
	return p
}

// Solution returns the solution the puzzle is played against
func (p *PuzzleStatus) Solution() *Solution {
	return p.solution
}

// GetWord looks up an unplaced word
func (p *PuzzleStatus) GetWord(id string) (*Word, error) {
	for _, word := range p.Words {
		if word.ID == id {
			return word, nil
		}
	}
	return nil, ErrWordNotFound
}

// GetCategory looks up a category, solved or not
func (p *PuzzleStatus) GetCategory(id string) (*Category, error) {
	for _, category := range p.Categories {
		if category.ID == id {
			return category, nil
		}
	}
	return nil, ErrCategoryNotFound
}

// SelectedWords returns the currently selected words in board order
func (p *PuzzleStatus) SelectedWords() []*Word {
	var selected []*Word
	for _, word := range p.Words {
		if word.IsSelected {
			selected = append(selected, word)
		}
	}
	return selected
}

// NumSelected returns how many words are selected
func (p *PuzzleStatus) NumSelected() int {
	return len(p.SelectedWords())
}

// CanSubmit reports whether exactly enough words are selected
func (p *PuzzleStatus) CanSubmit() bool {
	return p.NumSelected() == p.SelectableAtOnce
}

// ToggleWordSelection flips the selection of a word. Deselecting is always
// allowed, selecting only while the selection limit has not been reached.
func (p *PuzzleStatus) ToggleWordSelection(id string) error {
	word, err := p.GetWord(id)
	if err != nil {
		return err
	}

	if word.IsSelected {
		word.IsSelected = false
		return nil
	}

	if p.NumSelected() >= p.SelectableAtOnce {
		return ErrSelectionLimit
	}
	word.IsSelected = true
	return nil
}

// DeselectAllWords clears the selection
func (p *PuzzleStatus) DeselectAllWords() {
	for _, word := range p.Words {
		word.IsSelected = false
	}
}

// ShuffleWords reorders the unplaced words, keeping their selection
func (p *PuzzleStatus) ShuffleWords() {
	rand.Shuffle(len(p.Words), func(i, j int) {
		p.Words[i], p.Words[j] = p.Words[j], p.Words[i]
	})
}

// State returns where the puzzle is in its lifecycle
func (p *PuzzleStatus) State() State {
	solved := 0
	for _, category := range p.Categories {
		if category.IsSolved {
			solved++
		}
	}
	if solved == len(p.Categories) {
		return StateSolved
	}
	if p.MistakesAvailable <= 0 {
		return StateGameOver
	}
	return StateInProgress
}

// SubmitSelection checks the selected words against the solution.
//
// A selection equal to a category's word set solves that category and moves
// the words into it. Any other selection costs one mistake, and the mistake
// stays counted even though the submission is reported as incorrect.
func (p *PuzzleStatus) SubmitSelection() (SubmitResult, error) {
	if p.State() != StateInProgress {
		return SubmitResult{}, ErrGameFinished
	}
	if !p.CanSubmit() {
		return SubmitResult{}, ErrNotEnoughSelected
	}

	selected := p.SelectedWords()
	ids := make([]string, len(selected))
	for i, word := range selected {
		ids[i] = word.ID
	}

	// Match against the solution rather than the live categories
	if categoryID, ok := p.solution.Match(ids); ok {
		category, err := p.GetCategory(categoryID)
		if err != nil {
			return SubmitResult{}, err
		}
		p.placeWords(category, selected)

		if p.State() == StateSolved {
			return SubmitResult{Outcome: OutcomePuzzleSolved, Category: category}, nil
		}
		return SubmitResult{Outcome: OutcomeCategorySolved, Category: category}, nil
	}

	p.MistakesAvailable--
	oneAway := p.isOneAway(ids)
	if p.MistakesAvailable == 0 {
		return SubmitResult{Outcome: OutcomeGameOver, OneAway: oneAway}, nil
	}
	return SubmitResult{Outcome: OutcomeIncorrect, OneAway: oneAway}, nil
}

// ExportSolution serialises the solved categories in the solution grammar
// with word ids sorted inside each category
func (p *PuzzleStatus) ExportSolution() string {
	parts := make([]string, 0, len(p.Categories))
	for _, category := range p.Categories {
		ids := make([]string, 0, len(category.Words))
		for _, word := range category.Words {
			ids = append(ids, word.ID)
		}
		sort.Strings(ids)
		parts = append(parts, category.ID+":"+strings.Join(ids, ","))
	}
	return strings.Join(parts, ";")
}

func (p *PuzzleStatus) placeWords(category *Category, selected []*Word) {
	placed := make(map[*Word]struct{}, len(selected))
	for _, word := range selected {
		word.IsSelected = false
		category.Words = append(category.Words, word)
		placed[word] = struct{}{}
	}
	category.IsSolved = true

	remaining := p.Words[:0]
	for _, word := range p.Words {
		if _, ok := placed[word]; !ok {
			remaining = append(remaining, word)
		}
	}
	p.Words = remaining
}

func (p *PuzzleStatus) isOneAway(ids []string) bool {
	counts := make(map[string]int)
	for _, id := range ids {
		if categoryID, ok := p.solution.CategoryOf(id); ok {
			counts[categoryID]++
		}
	}
	for _, n := range counts {
		if n == p.SelectableAtOnce-1 {
			return true
		}
	}
	return false
}

func wordText(id string) string {
	return strings.ToUpper(strings.ReplaceAll(id, "_", " "))
}
