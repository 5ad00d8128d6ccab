package redisstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-pos/pkg/config"
)

// ─── Helpers de test ──────────────────────────────────────────────────────────

type mockCmdable struct {
	data    map[string]string
	ttls    map[string]time.Duration
	failGet error
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *mockCmdable) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("PONG")
	return cmd
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if m.failGet != nil {
		cmd.SetErr(m.failGet)
		return cmd
	}
	v, ok := m.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx)
	if _, ok := m.data[key]; ok {
		cmd.SetVal(false)
		return cmd
	}
	m.data[key], _ = value.(string)
	m.ttls[key] = ttl
	cmd.SetVal(true)
	return cmd
}

// ─── Tests ────────────────────────────────────────────────────────────────────

func TestStore_GetClaveInexistente(t *testing.T) {
	s := &Store{store: newMockCmdable()}
	v, found, err := s.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, v)
}

func TestStore_SetNXYGet(t *testing.T) {
	mock := newMockCmdable()
	s := &Store{store: mock}
	ctx := context.Background()

	ok, err := s.SetNX(ctx, "abc", `{"status":201}`, time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Hour, mock.ttls["pos:idempotency:abc"])

	ok, err = s.SetNX(ctx, "abc", "otro", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "la segunda escritura no debe sobrescribir")

	v, found, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"status":201}`, v)
}

func TestStore_GetPropagaErrores(t *testing.T) {
	mock := newMockCmdable()
	mock.failGet = errors.New("conexión rechazada")
	s := &Store{store: mock}

	_, _, err := s.Get(context.Background(), "abc")
	assert.ErrorIs(t, err, mock.failGet)
}

func TestNew_SinURL(t *testing.T) {
	_, err := New(context.Background(), config.RedisConfig{})
	assert.Error(t, err)
}

func TestBuildKey(t *testing.T) {
	assert.Equal(t, "pos:idempotency:k-1", buildKey(" k-1 "))
}
