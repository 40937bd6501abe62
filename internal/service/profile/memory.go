package profile

import (
	"context"
	"sort"
	"sync"
)

const memoryBackend = "memory"

// MemoryStore implements Service in process memory. It backs local
// development runs and unit tests.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]*Profile),
	}
}

func (m *MemoryStore) Create(ctx context.Context, params CreateParams) (*Profile, error) {
	fields, key, err := prepare(params)
	if err != nil {
		audit(ctx, memoryBackend, "create", key, err)
		return nil, err
	}

	m.mu.Lock()
	if _, exists := m.profiles[key]; exists {
		m.mu.Unlock()
		audit(ctx, memoryBackend, "create", key, ErrAlreadyExists)
		return nil, ErrAlreadyExists
	}
	now := storedNow()
	p := newProfile(key, fields, now, now)
	m.profiles[key] = p
	m.mu.Unlock()

	audit(ctx, memoryBackend, "create", key, nil)
	return clone(p), nil
}

func (m *MemoryStore) List(_ context.Context) ([]*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, clone(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MemoryStore) GetByUsername(_ context.Context, username string) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.profiles {
		if p.Username == username {
			return clone(p), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetByKey(_ context.Context, key string) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, exists := m.profiles[key]
	if !exists {
		return nil, ErrNotFound
	}
	return clone(p), nil
}

func (m *MemoryStore) Update(ctx context.Context, key string, params UpdateParams) (*Profile, error) {
	p, err := m.update(key, params)
	audit(ctx, memoryBackend, "update", key, err)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (m *MemoryStore) update(key string, params UpdateParams) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, exists := m.profiles[key]
	if !exists {
		return nil, ErrNotFound
	}
	fields, newKey, err := prepare(params)
	if err != nil {
		return nil, err
	}
	if newKey != key {
		if _, taken := m.profiles[newKey]; taken {
			return nil, ErrAlreadyExists
		}
	}

	p := newProfile(newKey, fields, existing.CreatedAt, storedNow())
	delete(m.profiles, key)
	m.profiles[newKey] = p
	return clone(p), nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	_, exists := m.profiles[key]
	if exists {
		delete(m.profiles, key)
	}
	m.mu.Unlock()

	if !exists {
		audit(ctx, memoryBackend, "delete", key, ErrNotFound)
		return ErrNotFound
	}
	audit(ctx, memoryBackend, "delete", key, nil)
	return nil
}

// Len reports the number of stored profiles.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.profiles)
}

func clone(p *Profile) *Profile {
	c := *p
	return &c
}

// Compile-time interface check
var _ Service = (*MemoryStore)(nil)
