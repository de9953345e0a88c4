// package seen tracks which claim identities have already been presented
// for verification within this process lifetime.
package seen

import "sync"

// Set is the process-lifetime record of presented identity keys. It grows
// monotonically and never evicts; callers needing isolation (per tenant,
// per test) construct distinct Sets.
type Set struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{keys: make(map[string]struct{})}
}

// CheckAndRecord reports whether key was already presented, recording it if
// not. The check and the insert are one atomic step: of N racing first
// presentations of the same key, exactly one observes false.
func (s *Set) CheckAndRecord(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key]; ok {
		return true
	}
	s.keys[key] = struct{}{}
	return false
}

// Len reports how many distinct identities have been presented.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}
