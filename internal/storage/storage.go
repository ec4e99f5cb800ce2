// Package storage defines the durable blob storage behind the planner
// store: one opaque record per key, last writer wins.
package storage

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrInvalidKey is returned for an empty record key.
var ErrInvalidKey = errors.New("storage: key is required")

// Storage loads and saves one opaque record per key.
type Storage interface {
	Load(ctx context.Context, key string) (data []byte, ok bool, err error)
	Save(ctx context.Context, key string, data []byte) error
}

// CheckKey validates a record key and returns it trimmed.
func CheckKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrInvalidKey
	}
	return key, nil
}

// Memory is an in-memory Storage for tests and ephemeral sessions.
type Memory struct {
	mu      sync.RWMutex
	records map[string][]byte
	saves   int
}

func NewMemory() *Memory {
	return &Memory{records: map[string][]byte{}}
}

func (m *Memory) Load(_ context.Context, key string) ([]byte, bool, error) {
	key, err := CheckKey(key)
	if err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	data, ok := m.records[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (m *Memory) Save(_ context.Context, key string, data []byte) error {
	key, err := CheckKey(key)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.records[key] = append([]byte(nil), data...)
	m.saves++
	m.mu.Unlock()
	return nil
}

// Saves reports how many writes the store has accepted.
func (m *Memory) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
