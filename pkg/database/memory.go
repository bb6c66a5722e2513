package database

import (
	"bytes"
	"sort"
	"sync"

	"github.com/syndtr/goleveldb/leveldb/errors"
)

// Memory is an in-memory Database, used by tests and by chain stores that
// don't need durability across restarts.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory Database.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Put stores value under key.
func (m *Memory) Put(key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.data[string(key)] = v
	return nil
}

// Get returns the value stored under key, or ErrNotFound.
func (m *Memory) Get(key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[string(key)]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return v, nil
}

// Has reports whether key is present.
func (m *Memory) Has(key []byte) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[string(key)]
	return ok, nil
}

// Delete removes key, if present.
func (m *Memory) Delete(key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, string(key))
	return nil
}

// Prefix returns the values of every key starting with prefix, in key order.
func (m *Memory) Prefix(prefix []byte) ([][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for k := range m.data {
		if bytes.HasPrefix([]byte(k), prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	values := make([][]byte, 0, len(keys))
	for _, k := range keys {
		values = append(values, m.data[k])
	}
	return values, nil
}

// Close is a no-op for the in-memory database.
func (m *Memory) Close() error {
	return nil
}
