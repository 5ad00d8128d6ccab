// Package redisstore implementa el almacén de idempotencia de POST /api/sales sobre Redis.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/tienda-pos/internal/domain/repository"
	"github.com/jhoicas/tienda-pos/pkg/config"
)

const (
	keyNamespace      = "pos"
	idempotencyPrefix = "idempotency"
)

var _ repository.IdempotencyStore = (*Store)(nil)

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	SetNX(context.Context, string, any, time.Duration) *redis.BoolCmd
}

// Store respuestas guardadas bajo pos:idempotency:<clave>.
type Store struct {
	store cmdable
	raw   *redis.Client
}

// New conecta con Redis a partir de REDIS_URL y verifica la conexión.
func New(ctx context.Context, cfg config.RedisConfig) (*Store, error) {
	if !cfg.Enabled() {
		return nil, errors.New("redis: REDIS_URL requerido")
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Store{store: raw, raw: raw}, nil
}

// Get devuelve ("", false, nil) si la clave no existe.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.store.Get(ctx, buildKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return v, true, nil
}

// SetNX guarda value solo si la clave no existe todavía.
func (s *Store) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	ok, err := s.store.SetNX(ctx, buildKey(key), value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

// Ping verifica la conexión (health check).
func (s *Store) Ping(ctx context.Context) error {
	return s.store.Ping(ctx).Err()
}

// Close cierra la conexión subyacente.
func (s *Store) Close() error {
	if s.raw == nil {
		return nil
	}
	return s.raw.Close()
}

func buildKey(key string) string {
	return strings.Join([]string{keyNamespace, idempotencyPrefix, strings.TrimSpace(key)}, ":")
}
