package fourbyfour

import (
	"encoding/json"
	"errors"
	"fmt"
)

// SchemaVersion is written into every persisted puzzle document. Bump it when
// the document layout changes so that old documents are rejected instead of
// being read with missing fields.
const SchemaVersion = 1

var ErrIncompatibleState = errors.New("incompatible puzzle state")

type document struct {
	Version           int         `json:"version"`
	Categories        []*Category `json:"categories"`
	Words             []*Word     `json:"words"`
	MistakesAvailable *int        `json:"mistakes_available"`
	SelectableAtOnce  *int        `json:"selectable_at_once"`
}

// MarshalJSON encodes the puzzle as a versioned document
func (p *PuzzleStatus) MarshalJSON() ([]byte, error) {
	mistakes := p.MistakesAvailable
	selectable := p.SelectableAtOnce
	return json.Marshal(document{
		Version:           SchemaVersion,
		Categories:        p.Categories,
		Words:             p.Words,
		MistakesAvailable: &mistakes,
		SelectableAtOnce:  &selectable,
	})
}

// Decode restores a puzzle from a document produced by MarshalJSON and checks
// it against the solution it is going to be played with.
func Decode(data []byte, sol *Solution) (*PuzzleStatus, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatibleState, err)
	}
	if doc.Version != SchemaVersion {
		return nil, fmt.Errorf("%w: schema version %d, want %d", ErrIncompatibleState, doc.Version, SchemaVersion)
	}
	if doc.MistakesAvailable == nil || doc.SelectableAtOnce == nil {
		return nil, fmt.Errorf("%w: missing counters", ErrIncompatibleState)
	}

	p := &PuzzleStatus{
		Categories:        doc.Categories,
		Words:             doc.Words,
		MistakesAvailable: *doc.MistakesAvailable,
		SelectableAtOnce:  *doc.SelectableAtOnce,
		solution:          sol,
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatibleState, err)
	}
	return p, nil
}

// validate checks the structural invariants of a decoded puzzle
func (p *PuzzleStatus) validate() error {
	if p.SelectableAtOnce != SelectableAtOnce {
		return fmt.Errorf("selectable_at_once is %d", p.SelectableAtOnce)
	}
	if p.MistakesAvailable < 0 || p.MistakesAvailable > MaxMistakes {
		return fmt.Errorf("mistakes_available is %d", p.MistakesAvailable)
	}

	expected := p.solution.Categories()
	if len(p.Categories) != len(expected) {
		return fmt.Errorf("%d categories, want %d", len(p.Categories), len(expected))
	}

	seen := make(map[string]struct{})
	for i, category := range p.Categories {
		if category == nil || category.ID != expected[i] {
			return fmt.Errorf("category %d does not match the solution", i)
		}
		if category.Words == nil {
			category.Words = []*Word{}
		}
		if category.IsSolved {
			ids := make([]string, 0, len(category.Words))
			for _, word := range category.Words {
				ids = append(ids, word.ID)
			}
			if matched, ok := p.solution.Match(ids); !ok || matched != category.ID {
				return fmt.Errorf("category %q is solved with the wrong words", category.ID)
			}
		} else if len(category.Words) != 0 {
			return fmt.Errorf("unsolved category %q holds words", category.ID)
		}
		for _, word := range category.Words {
			if err := markSeen(seen, word); err != nil {
				return err
			}
		}
	}

	selected := 0
	for _, word := range p.Words {
		if err := markSeen(seen, word); err != nil {
			return err
		}
		if word.IsSelected {
			selected++
		}
	}
	if selected > p.SelectableAtOnce {
		return fmt.Errorf("%d words selected", selected)
	}

	for _, id := range p.solution.Vocabulary() {
		if _, ok := seen[id]; !ok {
			return fmt.Errorf("word %q is missing", id)
		}
	}
	if len(seen) != len(p.solution.Vocabulary()) {
		return fmt.Errorf("%d words, want %d", len(seen), len(p.solution.Vocabulary()))
	}
	return nil
}

func markSeen(seen map[string]struct{}, word *Word) error {
	if word == nil {
		return errors.New("null word")
	}
	if _, dup := seen[word.ID]; dup {
		return fmt.Errorf("word %q appears twice", word.ID)
	}
	seen[word.ID] = struct{}{}
	return nil
}
