package credential

import "sync/atomic"

// Store holds the current API key for the key-gated provider. Readers see
// either the old or the new key, never a partial write.
type Store struct {
	key atomic.Pointer[string]
}

func NewStore(bootstrap string) *Store {
	s := &Store{}
	s.Set(bootstrap)
	return s
}

func (s *Store) Read() string {
	if k := s.key.Load(); k != nil {
		return *k
	}
	return ""
}

func (s *Store) Set(key string) {
	s.key.Store(&key)
}
