package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/tienda-pos/internal/domain/repository"
)

var _ repository.IdempotencyStore = (*IdempotencyStore)(nil)

type idempotencyEntry struct {
	value     string
	expiresAt time.Time
}

// IdempotencyStore almacén de idempotencia en memoria con expiración perezosa.
type IdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]idempotencyEntry
	now     func() time.Time
}

// NewIdempotencyStore crea un almacén vacío.
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{entries: make(map[string]idempotencyEntry), now: time.Now}
}

// Get devuelve ("", false, nil) si la clave no existe o expiró.
func (s *IdempotencyStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		delete(s.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

// SetNX guarda value solo si la clave no existe (o expiró).
func (s *IdempotencyStore) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if e, ok := s.entries[key]; ok && (e.expiresAt.IsZero() || !now.After(e.expiresAt)) {
		return false, nil
	}
	e := idempotencyEntry{value: value}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}
	s.entries[key] = e
	return true, nil
}
