package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process RemoteStore. It backs the offline mode and the tests.
type MemoryStore struct {
	mu       sync.Mutex
	docs     map[string]Document
	children map[string][]Child
	subs     map[string]map[chan Snapshot]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:     make(map[string]Document),
		children: make(map[string][]Child),
		subs:     make(map[string]map[chan Snapshot]struct{}),
	}
}

func (m *MemoryStore) Write(ctx context.Context, path string, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs[path] = doc.Clone()
	m.publishLocked(path)
	return nil
}

func (m *MemoryStore) AppendUnique(ctx context.Context, path string, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.children[path] = append(m.children[path], Child{ID: id.String(), Doc: doc.Clone()})
	m.publishLocked(path)
	return id.String(), nil
}

func (m *MemoryStore) Subscribe(ctx context.Context, path string) (<-chan Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ch := make(chan Snapshot, 1)

	m.mu.Lock()
	if m.subs[path] == nil {
		m.subs[path] = make(map[chan Snapshot]struct{})
	}
	m.subs[path][ch] = struct{}{}
	Offer(ch, m.snapshotLocked(path))
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.subs[path][ch]; ok {
			delete(m.subs[path], ch)
			close(ch)
		}
	}()
	return ch, nil
}

// Snapshot returns the current value at path without subscribing.
func (m *MemoryStore) Snapshot(path string) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(path)
}

// Disconnect closes every subscription on path as if the connection dropped.
func (m *MemoryStore) Disconnect(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for ch := range m.subs[path] {
		close(ch)
	}
	delete(m.subs, path)
}

func (m *MemoryStore) publishLocked(path string) {
	if len(m.subs[path]) == 0 {
		return
	}
	snap := m.snapshotLocked(path)
	for ch := range m.subs[path] {
		Offer(ch, snap)
	}
}

func (m *MemoryStore) snapshotLocked(path string) Snapshot {
	snap := Snapshot{Path: path, Doc: m.docs[path].Clone()}
	if kids := m.children[path]; len(kids) > 0 {
		snap.Children = make([]Child, len(kids))
		for i, c := range kids {
			snap.Children[i] = Child{ID: c.ID, Doc: c.Doc.Clone()}
		}
	}
	return snap
}

// MemoryLocalStore is a LocalStore that forgets everything when the process exits.
type MemoryLocalStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryLocalStore() *MemoryLocalStore {
	return &MemoryLocalStore{values: make(map[string]string)}
}

func (m *MemoryLocalStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryLocalStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
