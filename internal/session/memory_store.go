package session

import (
	"errors"
	"sync"

	"github.com/terraconstructs/postboard/pkg/sdk"
)

// MemoryStore is a process-local Store. Sessions kept here end with the
// process; the gateway uses it in ephemeral mode.
type MemoryStore struct {
	mu      sync.Mutex
	session sdk.Session
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns a store preloaded with session.
func NewMemoryStore(session sdk.Session) *MemoryStore {
	return &MemoryStore{session: copySession(session)}
}

func (m *MemoryStore) Save(s sdk.Session) error {
	if !s.Complete() {
		return errors.New("refusing to persist a partial session")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = copySession(s)
	return nil
}

func (m *MemoryStore) Load() sdk.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copySession(m.session)
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = sdk.Session{}
	return nil
}

func copySession(s sdk.Session) sdk.Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
