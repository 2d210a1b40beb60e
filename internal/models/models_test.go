package models

import (
	"testing"
	"time"
)

func TestVisitorIsCheckedOut(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		visitor Visitor
		want    bool
	}{
		{
			name:    "still playing",
			visitor: Visitor{ID: 1, UID: "abc", CheckedIn: now},
			want:    false,
		},
		{
			name:    "checked out",
			visitor: Visitor{ID: 1, UID: "abc", CheckedIn: now.Add(-time.Hour), CheckedOut: &now},
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.visitor.IsCheckedOut(); got != tt.want {
				t.Errorf("Visitor.IsCheckedOut() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVisitorStatus(t *testing.T) {
	tests := []struct {
		name          string
		status        VisitorStatus
		wantRatio     float64
		wantSucceeded bool
		wantCompleted bool
	}{
		{
			name:          "no active puzzles",
			status:        VisitorStatus{CorrectAnswers: 0, ActivePuzzles: 0, SuccessThreshold: 0.5},
			wantRatio:     0,
			wantSucceeded: false,
			wantCompleted: false,
		},
		{
			name:          "below threshold",
			status:        VisitorStatus{CorrectAnswers: 1, ActivePuzzles: 4, SuccessThreshold: 0.5},
			wantRatio:     0.25,
			wantSucceeded: false,
			wantCompleted: false,
		},
		{
			name:          "exactly at threshold",
			status:        VisitorStatus{CorrectAnswers: 2, ActivePuzzles: 4, SuccessThreshold: 0.5},
			wantRatio:     0.5,
			wantSucceeded: true,
			wantCompleted: false,
		},
		{
			name:          "all solved",
			status:        VisitorStatus{CorrectAnswers: 4, ActivePuzzles: 4, SuccessThreshold: 0.5},
			wantRatio:     1,
			wantSucceeded: true,
			wantCompleted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Ratio(); got != tt.wantRatio {
				t.Errorf("Ratio() = %v, want %v", got, tt.wantRatio)
			}
			if got := tt.status.Succeeded(); got != tt.wantSucceeded {
				t.Errorf("Succeeded() = %v, want %v", got, tt.wantSucceeded)
			}
			if got := tt.status.Completed(); got != tt.wantCompleted {
				t.Errorf("Completed() = %v, want %v", got, tt.wantCompleted)
			}
		})
	}
}
