package repository

import (
	"context"
	"time"
)

// IdempotencyStore guarda respuestas ya servidas bajo una clave Idempotency-Key.
type IdempotencyStore interface {
	// Get devuelve ("", false, nil) si la clave no existe.
	Get(ctx context.Context, key string) (string, bool, error)
	// SetNX guarda value solo si la clave no existe todavía.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
}
