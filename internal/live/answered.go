// internal/live/answered.go
package live

import "sync"

// AnsweredSet tracks which player names already answered the current
// question. It is cleared exactly when a new question is activated,
// never on section-header-only transitions. The check-then-insert is
// per name; a race admitting one duplicate answer is an accepted
// looseness of the design.
type AnsweredSet struct {
	mu    sync.Mutex
	names map[string]struct{}
}

func NewAnsweredSet() *AnsweredSet {
	return &AnsweredSet{names: make(map[string]struct{})}
}

// Add marks the name as answered. Returns false if it was already
// present.
func (s *AnsweredSet) Add(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.names[name]; ok {
		return false
	}
	s.names[name] = struct{}{}
	return true
}

// Has reports whether the name already answered.
func (s *AnsweredSet) Has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.names[name]
	return ok
}

// Clear empties the set for the next question.
func (s *AnsweredSet) Clear() {
	s.mu.Lock()
	s.names = make(map[string]struct{})
	s.mu.Unlock()
}

// Len reports how many players answered.
func (s *AnsweredSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.names)
}
