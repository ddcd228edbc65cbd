package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemRxn-Core/internal/config"
	"github.com/turtacn/ChemRxn-Core/internal/infrastructure/monitoring/logging"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewClient(config.RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestNewClient_Success(t *testing.T) {
	client, _ := newTestClient(t)
	assert.NoError(t, client.Ping(context.Background()))
}

func TestNewClient_ConnectionFailed(t *testing.T) {
	client, err := NewClient(config.RedisConfig{Addr: "localhost:1"}, logging.NewNopLogger())
	assert.ErrorIs(t, err, ErrConnectionFailed)
	assert.Nil(t, client)
}

func TestClient_Operations(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "foo", "bar", 0).Err())

	val, err := client.Get(ctx, "foo").Result()
	require.NoError(t, err)
	assert.Equal(t, "bar", val)

	n, err := client.Exists(ctx, "foo").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, client.Del(ctx, "foo").Err())
	n, err = client.Exists(ctx, "foo").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestClient_ClosedGuard(t *testing.T) {
	client, _ := newTestClient(t)
	require.NoError(t, client.Close())

	ctx := context.Background()
	assert.ErrorIs(t, client.Ping(ctx), ErrClientClosed)
	assert.ErrorIs(t, client.Get(ctx, "foo").Err(), ErrClientClosed)
	assert.ErrorIs(t, client.Set(ctx, "foo", "bar", 0).Err(), ErrClientClosed)
	assert.ErrorIs(t, client.Del(ctx, "foo").Err(), ErrClientClosed)

	// Close is idempotent.
	assert.NoError(t, client.Close())
}
