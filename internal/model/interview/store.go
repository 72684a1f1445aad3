package interview

import "github.com/luoxingyu/mockview/internal/model/chat"

// Store exposes interviewer profile retrieval for the practice endpoint.
type Store interface {
	List() []Profile
	FindByType(t chat.SessionType) (Profile, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Profile
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied profiles.
func NewMemoryStore(items []Profile) *MemoryStore {
	return &MemoryStore{items: append([]Profile(nil), items...)}
}

// List returns the profile list.
func (s *MemoryStore) List() []Profile {
	return append([]Profile(nil), s.items...)
}

// FindByType looks up a profile by session type.
func (s *MemoryStore) FindByType(t chat.SessionType) (Profile, bool) {
	for _, item := range s.items {
		if item.Type == t {
			return item, true
		}
	}
	return Profile{}, false
}
