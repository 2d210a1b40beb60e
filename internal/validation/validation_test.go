package validation

import (
	"strings"
	"testing"
)

func TestValidatePuzzleName(t *testing.T) {
	tests := []struct {
		name       string
		puzzleName string
		wantErr    bool
	}{
		{
			name:       "simple name",
			puzzleName: "fourbyfour",
			wantErr:    false,
		},
		{
			name:       "name with dash and digits",
			puzzleName: "shuffleanagram-crumpets2",
			wantErr:    false,
		},
		{
			name:       "underscore",
			puzzleName: "word_finder",
			wantErr:    false,
		},
		{
			name:       "uppercase",
			puzzleName: "FourByFour",
			wantErr:    true,
		},
		{
			name:       "leading dash",
			puzzleName: "-demo",
			wantErr:    true,
		},
		{
			name:       "slash",
			puzzleName: "demo/other",
			wantErr:    true,
		},
		{
			name:       "too long",
			puzzleName: strings.Repeat("a", 65),
			wantErr:    true,
		},
		{
			name:       "empty string",
			puzzleName: "",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePuzzleName(tt.puzzleName)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePuzzleName(%q) error = %v, wantErr %v", tt.puzzleName, err, tt.wantErr)
			}
		})
	}
}

func TestValidateUID(t *testing.T) {
	tests := []struct {
		name    string
		uid     string
		wantErr bool
	}{
		{
			name:    "uuid",
			uid:     "0b8f3c1e-6a4e-4d1f-9a55-2f5c0e7a9b21",
			wantErr: false,
		},
		{
			name:    "short code",
			uid:     "AB12",
			wantErr: false,
		},
		{
			name:    "spaces",
			uid:     "ab 12",
			wantErr: true,
		},
		{
			name:    "path traversal",
			uid:     "../etc",
			wantErr: true,
		},
		{
			name:    "empty string",
			uid:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUID(tt.uid)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUID(%q) error = %v, wantErr %v", tt.uid, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAnswer(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		wantErr error
	}{
		{
			name:    "valid answer",
			answer:  "crumpets",
			wantErr: nil,
		},
		{
			name:    "blank",
			answer:  "   ",
			wantErr: ErrAnswerEmpty,
		},
		{
			name:    "too long",
			answer:  strings.Repeat("x", maxAnswerLength+1),
			wantErr: ErrAnswerTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAnswer(tt.answer)
			if err != tt.wantErr {
				t.Errorf("ValidateAnswer() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
