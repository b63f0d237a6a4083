// Package memory is a process-local cart storage used by tests and the
// "memory" driver.
package memory

import (
	"context"
	"sync"

	"github.com/dwikikusuma/storefront/internal/cart/app"
)

type Storage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func New() *Storage {
	return &Storage{data: make(map[string][]byte)}
}

func (s *Storage) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.data[key]
	if !ok {
		return nil, app.ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (s *Storage) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), data...)
	return nil
}

func (s *Storage) Ping(context.Context) error { return nil }

func (s *Storage) Close() error { return nil }
