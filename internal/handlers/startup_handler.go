package handlers

import (
	"net/http"
	"sync"
)

const (
	StepDatabase   = "Database connection"
	StepMigrations = "Running migrations"
	StepServices   = "Initializing services"
	StepServer     = "Server ready"
)

// StartupStatus tracks the initialization progress
type StartupStatus struct {
	mu       sync.RWMutex
	Ready    bool          `json:"ready"`
	Current  string        `json:"current"`
	Progress int           `json:"progress"`
	Steps    []StartupStep `json:"steps"`
}

type StartupStep struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// NewStartupStatus creates a tracker for the server's startup steps
func NewStartupStatus() *StartupStatus {
	return &StartupStatus{
		Current: "Initializing...",
		Steps: []StartupStep{
			{Name: StepDatabase},
			{Name: StepMigrations},
			{Name: StepServices},
			{Name: StepServer},
		},
	}
}

// SetCurrentStep updates the current initialization step
func (s *StartupStatus) SetCurrentStep(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Current = step
}

// CompleteStep marks a step as completed and updates progress
func (s *StartupStatus) CompleteStep(stepName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.Steps {
		if s.Steps[i].Name == stepName {
			s.Steps[i].Completed = true
			break
		}
	}

	completed := 0
	for _, step := range s.Steps {
		if step.Completed {
			completed++
		}
	}
	s.Progress = (completed * 100) / len(s.Steps)
}

// MarkReady marks the server as fully initialized
func (s *StartupStatus) MarkReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Steps {
		s.Steps[i].Completed = true
	}
	s.Ready = true
	s.Current = StepServer
	s.Progress = 100
}

// IsReady returns whether the server is fully initialized
func (s *StartupStatus) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Ready
}

// ServeHTTP reports startup progress, with 503 until the server is ready
func (s *StartupStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := http.StatusOK
	if !s.Ready {
		status = http.StatusServiceUnavailable
	}
	respondWithJSON(w, status, s)
}

// RequireReady answers 503 for every request until startup has finished
func (s *StartupStatus) RequireReady(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.IsReady() && r.URL.Path != "/healthz" {
			respondWithError(w, http.StatusServiceUnavailable, "Server is starting", "", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
