package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	ErrPuzzleNameInvalid = errors.New("puzzle name must be 1-64 characters of lowercase letters, digits, '-' or '_'")
	ErrUIDInvalid        = errors.New("visitor id must be 1-64 characters of letters, digits or '-'")
	ErrAnswerEmpty       = errors.New("answer is required")
	ErrAnswerTooLong     = errors.New("answer is too long")
)

const maxAnswerLength = 1024

var (
	puzzleNameRegexp = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)
	uidRegexp        = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{0,63}$`)
)

// ValidatePuzzleName checks a puzzle name is usable in a URL path
func ValidatePuzzleName(name string) error {
	if !puzzleNameRegexp.MatchString(name) {
		return ErrPuzzleNameInvalid
	}
	return nil
}

// ValidateUID checks the shape of a visitor uid
func ValidateUID(uid string) error {
	if !uidRegexp.MatchString(uid) {
		return ErrUIDInvalid
	}
	return nil
}

// ValidateAnswer checks a submitted answer is non-blank and bounded
func ValidateAnswer(answer string) error {
	if strings.TrimSpace(answer) == "" {
		return ErrAnswerEmpty
	}
	if utf8.RuneCountInString(answer) > maxAnswerLength {
		return ErrAnswerTooLong
	}
	return nil
}
