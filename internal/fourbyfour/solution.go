package fourbyfour

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const (
	// CategoryCount is the number of categories in every puzzle
	CategoryCount = 4

	// WordsPerCategory is the number of words that belong to one category
	WordsPerCategory = 4
)

var (
	ErrInvalidSolution = errors.New("invalid solution")

	tokenRegexp = regexp.MustCompile(`^[a-z0-9_]+$`)
)

// Solution maps each category to the set of word ids that belong to it.
// It is immutable once parsed.
type Solution struct {
	order []string
	sets  map[string]map[string]struct{}
}

// ParseSolution parses a solution string of the form
// "category:word,word,word,word;category:word,...".
func ParseSolution(s string) (*Solution, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty solution", ErrInvalidSolution)
	}

	sol := &Solution{sets: make(map[string]map[string]struct{})}
	owner := make(map[string]string)

	for _, part := range strings.Split(s, ";") {
		categoryID, wordList, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("%w: category %q has no word list", ErrInvalidSolution, part)
		}
		categoryID = strings.TrimSpace(categoryID)
		if !tokenRegexp.MatchString(categoryID) {
			return nil, fmt.Errorf("%w: bad category id %q", ErrInvalidSolution, categoryID)
		}
		if _, exists := sol.sets[categoryID]; exists {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidSolution, categoryID)
		}

		words := make(map[string]struct{})
		for _, wordID := range strings.Split(wordList, ",") {
			wordID = strings.TrimSpace(wordID)
			if !tokenRegexp.MatchString(wordID) {
				return nil, fmt.Errorf("%w: bad word id %q in category %q", ErrInvalidSolution, wordID, categoryID)
			}
			if other, taken := owner[wordID]; taken {
				return nil, fmt.Errorf("%w: word %q appears in %q and %q", ErrInvalidSolution, wordID, other, categoryID)
			}
			owner[wordID] = categoryID
			words[wordID] = struct{}{}
		}
		if len(words) != WordsPerCategory {
			return nil, fmt.Errorf("%w: category %q has %d words, want %d", ErrInvalidSolution, categoryID, len(words), WordsPerCategory)
		}

		sol.order = append(sol.order, categoryID)
		sol.sets[categoryID] = words
	}

	if len(sol.order) != CategoryCount {
		return nil, fmt.Errorf("%w: %d categories, want %d", ErrInvalidSolution, len(sol.order), CategoryCount)
	}

	return sol, nil
}

// Categories returns the category ids in the order they were declared
func (s *Solution) Categories() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Words returns the sorted word ids of a category
func (s *Solution) Words(categoryID string) []string {
	set, ok := s.sets[categoryID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Vocabulary returns every word id of the puzzle, grouped by category
func (s *Solution) Vocabulary() []string {
	var out []string
	for _, categoryID := range s.order {
		out = append(out, s.Words(categoryID)...)
	}
	return out
}

// CategoryOf returns the category a word belongs to
func (s *Solution) CategoryOf(wordID string) (string, bool) {
	for _, categoryID := range s.order {
		if _, ok := s.sets[categoryID][wordID]; ok {
			return categoryID, true
		}
	}
	return "", false
}

// Match reports which category, if any, has exactly the given word ids
func (s *Solution) Match(wordIDs []string) (string, bool) {
	selected := make(map[string]struct{}, len(wordIDs))
	for _, id := range wordIDs {
		selected[id] = struct{}{}
	}

	for _, categoryID := range s.order {
		if setsEqual(s.sets[categoryID], selected) {
			return categoryID, true
		}
	}
	return "", false
}

// Equal reports whether two solutions assign the same words to the same categories
func (s *Solution) Equal(other *Solution) bool {
	if s == nil || other == nil {
		return s == other
	}
	if len(s.sets) != len(other.sets) {
		return false
	}
	for categoryID, set := range s.sets {
		if !setsEqual(set, other.sets[categoryID]) {
			return false
		}
	}
	return true
}

// String returns the canonical form of the solution with sorted word ids
func (s *Solution) String() string {
	parts := make([]string, 0, len(s.order))
	for _, categoryID := range s.order {
		parts = append(parts, categoryID+":"+strings.Join(s.Words(categoryID), ","))
	}
	return strings.Join(parts, ";")
}

func setsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
