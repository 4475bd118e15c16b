// Package kv defines the string-keyed storage contract the capsule store is
// built on, plus an in-memory implementation.
package kv

import (
	stderrors "errors"
	"sort"
	"strings"
	"sync"
)

// Backend is a synchronous string-keyed get/set/remove store.
// Get reports ok=false for a missing key. Remove of a missing key is not an error.
type Backend interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// Op is a single write in a batch. A nil Value removes the key.
type Op struct {
	Key   string
	Value *string
}

// Put returns an Op that sets key to value.
func Put(key, value string) Op {
	return Op{Key: key, Value: &value}
}

// Del returns an Op that removes key.
func Del(key string) Op {
	return Op{Key: key}
}

// Batcher is implemented by backends that can apply several writes all-or-nothing.
type Batcher interface {
	Apply(ops []Op) error
}

// Lister is implemented by backends that can enumerate keys by prefix.
type Lister interface {
	Keys(prefix string) ([]string, error)
}

// ErrReadOnly is returned by Memory when it has been frozen.
var ErrReadOnly = stderrors.New("kv: backend is read-only")

// Memory is an in-memory Backend. The zero value is not usable; use NewMemory.
type Memory struct {
	mu       sync.RWMutex
	data     map[string]string
	readOnly bool
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get implements Backend.
func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set implements Backend.
func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readOnly {
		return ErrReadOnly
	}
	m.data[key] = value
	return nil
}

// Remove implements Backend.
func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readOnly {
		return ErrReadOnly
	}
	delete(m.data, key)
	return nil
}

// Apply implements Batcher.
func (m *Memory) Apply(ops []Op) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readOnly {
		return ErrReadOnly
	}
	for _, op := range ops {
		if op.Value == nil {
			delete(m.data, op.Key)
			continue
		}
		m.data[op.Key] = *op.Value
	}
	return nil
}

// Keys implements Lister. Keys are returned sorted.
func (m *Memory) Keys(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0)
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// SetReadOnly makes every subsequent write fail with ErrReadOnly.
// Used to simulate a backend that rejects writes (e.g. quota exceeded).
func (m *Memory) SetReadOnly(readOnly bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readOnly = readOnly
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
