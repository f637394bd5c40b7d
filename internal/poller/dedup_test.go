package poller

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupDeduper(t *testing.T, ttl time.Duration) (*Deduper, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewDeduper(client, ttl, zap.NewNop()), mr
}

func TestDeduper_FirstSightIsFresh(t *testing.T) {
	d, _ := setupDeduper(t, time.Hour)
	ctx := context.Background()

	assert.False(t, d.Seen(ctx, "voice", "msg-1"))
	assert.True(t, d.Seen(ctx, "voice", "msg-1"))
	assert.True(t, d.Seen(ctx, "voice", "msg-1"))
}

func TestDeduper_SourcesAreIndependent(t *testing.T) {
	d, _ := setupDeduper(t, time.Hour)
	ctx := context.Background()

	assert.False(t, d.Seen(ctx, "voice", "42"))
	assert.False(t, d.Seen(ctx, "email", "42"))
	assert.True(t, d.Seen(ctx, "voice", "42"))
}

func TestDeduper_EntryExpiresAfterTTL(t *testing.T) {
	d, mr := setupDeduper(t, time.Minute)
	ctx := context.Background()

	assert.False(t, d.Seen(ctx, "email", "77"))

	mr.FastForward(2 * time.Minute)

	assert.False(t, d.Seen(ctx, "email", "77"), "expired entry must read as unseen")
}

func TestDeduper_RedisDownProcessesAnyway(t *testing.T) {
	d, mr := setupDeduper(t, time.Hour)
	ctx := context.Background()

	mr.Close()

	assert.False(t, d.Seen(ctx, "voice", "msg-9"), "redis outage must not drop messages")
}
