package account

import (
	"context"
	"sync"

	"github.com/templui/magicprofile/internal/model"
)

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	err      error
	calls    int
}

func newFakeSessions(sessions ...*model.Session) *fakeSessions {
	f := &fakeSessions{sessions: make(map[string]*model.Session)}
	for _, s := range sessions {
		f.sessions[s.ID] = s
	}
	return f
}

func (f *fakeSessions) ResolveSession(ctx context.Context, sessionID string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.sessions[sessionID]
	if !ok {
		return nil, model.ErrUnauthenticated
	}
	return s, nil
}

func (f *fakeSessions) SignOut(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, sessionID)
	return nil
}

// memoryStore keeps profiles keyed by id, like the upsert on the real table.
type memoryStore struct {
	mu       sync.Mutex
	rows     map[string]model.Profile
	upserts  []model.Profile
	fetchErr error
	upsertFn func(p *model.Profile) error
	fetchFn  func(userID string)
}

func newMemoryStore() *memoryStore {
	return &memoryStore{rows: make(map[string]model.Profile)}
}

func (m *memoryStore) Fetch(ctx context.Context, userID string) (*model.Profile, error) {
	if m.fetchFn != nil {
		m.fetchFn(userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	p, ok := m.rows[userID]
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	return &p, nil
}

func (m *memoryStore) Upsert(ctx context.Context, p *model.Profile) error {
	if m.upsertFn != nil {
		if err := m.upsertFn(p); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts = append(m.upserts, *p)
	m.rows[p.ID] = *p
	return nil
}

func (m *memoryStore) upsertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.upserts)
}

func strPtr(s string) *string {
	return &s
}
