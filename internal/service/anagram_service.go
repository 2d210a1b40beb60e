package service

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
)

// anagramWords maps the last dash-separated part of a puzzle name to its word
var anagramWords = map[string]string{
	"probations": "PROBATIONS",
	"toerags":    "TOERAGS",
	"reboots":    "REBOOTS",
	"crumpets":   "CRUMPETS",
}

const defaultAnagramWord = "PROBATIONS"

type anagramDocument struct {
	Version int    `json:"version"`
	Word    string `json:"word"`
}

// AnagramService plays the letter shuffling puzzles
type AnagramService struct {
	states *StateService
}

// NewAnagramService creates a new anagram service
func NewAnagramService(states *StateService) *AnagramService {
	return &AnagramService{states: states}
}

// InitialWord returns the unshuffled word of a puzzle,
// e.g. shuffleanagram-crumpets -> CRUMPETS
func InitialWord(puzzleName string) string {
	parts := strings.Split(puzzleName, "-")
	if word, ok := anagramWords[parts[len(parts)-1]]; ok {
		return word
	}
	return defaultAnagramWord
}

// Current returns the visitor's last shuffle, or the initial word
func (s *AnagramService) Current(puzzleName, visitorUID string) (string, error) {
	doc, err := s.states.GetState(puzzleName, visitorUID)
	if err != nil {
		return "", err
	}
	return decodeAnagram(doc, puzzleName), nil
}

// Shuffle scrambles the letters of the word and stores the result
func (s *AnagramService) Shuffle(puzzleName, visitorUID string) (string, error) {
	var word string
	err := s.states.UpdateState(puzzleName, visitorUID, func(doc json.RawMessage) (json.RawMessage, error) {
		word = shuffleLetters(decodeAnagram(doc, puzzleName))
		return json.Marshal(anagramDocument{Version: 1, Word: word})
	})
	if err != nil {
		return "", fmt.Errorf("failed to shuffle anagram: %w", err)
	}
	return word, nil
}

func decodeAnagram(doc json.RawMessage, puzzleName string) string {
	initial := InitialWord(puzzleName)
	if len(doc) == 0 {
		return initial
	}

	var d anagramDocument
	if err := json.Unmarshal(doc, &d); err != nil || d.Version != 1 || !sameLetters(d.Word, initial) {
		return initial
	}
	return d.Word
}

func shuffleLetters(word string) string {
	letters := []rune(word)
	rand.Shuffle(len(letters), func(i, j int) {
		letters[i], letters[j] = letters[j], letters[i]
	})
	return string(letters)
}

func sameLetters(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[rune]int)
	for _, r := range a {
		counts[r]++
	}
	for _, r := range b {
		counts[r]--
		if counts[r] < 0 {
			return false
		}
	}
	return true
}
