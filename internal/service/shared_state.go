package service

import (
	"encoding/json"
	"sync"
)

// SharedState holds the puzzle documents of anonymous play.
// One cell per puzzle is shared by every visitor without a session,
// so concurrent anonymous players see and overwrite the same game.
type SharedState struct {
	mu   sync.Mutex
	docs map[string]json.RawMessage
}

// NewSharedState creates an empty shared cell set
func NewSharedState() *SharedState {
	return &SharedState{docs: make(map[string]json.RawMessage)}
}

// Get returns a copy of the document stored for puzzleName, or nil
func (s *SharedState) Get(puzzleName string) json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneDoc(s.docs[puzzleName])
}

// Set replaces the document stored for puzzleName
func (s *SharedState) Set(puzzleName string, doc json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[puzzleName] = cloneDoc(doc)
}

// Delete drops the document stored for puzzleName
func (s *SharedState) Delete(puzzleName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, puzzleName)
}

func cloneDoc(doc json.RawMessage) json.RawMessage {
	if doc == nil {
		return nil
	}
	out := make(json.RawMessage, len(doc))
	copy(out, doc)
	return out
}
