package object

import "sync"

// MemoryStore is a Store held entirely in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[Hash][]byte
	pushes  int
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[Hash][]byte)}
}

func (m *MemoryStore) Has(h Hash) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[h]
	return ok, nil
}

func (m *MemoryStore) Get(h Hash) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[h]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

func (m *MemoryStore) Push(data []byte) (Hash, error) {
	h := HashBytes(data)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[h]; ok {
		return h, nil
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	m.objects[h] = stored
	m.pushes++
	return h, nil
}

// Len returns the number of distinct objects held.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// Writes returns how many pushes stored new content.
func (m *MemoryStore) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pushes
}
