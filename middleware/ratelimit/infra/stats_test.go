package infra

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"middleware-users/middleware/ratelimit/domain"
)

func TestMemoryStatsStore_CountsByReason(t *testing.T) {
	s := NewMemoryStatsStore(WithTrackKeys(true))
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, domain.StatsEvent{Key: "a", Allowed: true, Reason: domain.ReasonAllowed, Method: "GET", Path: "/health"}))
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Key: "a", Reason: domain.ReasonThrottled, Method: "GET", Path: "/health"}))
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Reason: domain.ReasonMissingKey, Method: "POST", Path: "/users"}))

	assert.Equal(t, Counters{Allowed: 1, Throttled: 1, MissingKey: 1}, s.Total())

	snap := s.Snapshot()
	assert.Equal(t, Counters{Allowed: 1, Throttled: 1}, snap.ByRoute["GET /health"])
	assert.Equal(t, Counters{MissingKey: 1}, snap.ByRoute["POST /users"])
	assert.Equal(t, map[string]Counters{"a": {Allowed: 1, Throttled: 1}}, snap.ByKey)
}

func TestMemoryStatsStore_SnapshotWithoutKeys(t *testing.T) {
	s := NewMemoryStatsStore()
	require.NoError(t, s.Record(context.Background(), domain.StatsEvent{Key: "a", Reason: domain.ReasonAllowed}))
	assert.Nil(t, s.Snapshot().ByKey)
}

func TestRedisStatsStore_Record(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s := NewRedisStatsStore(rdb,
		WithStatsPrefix(":rl:stats:"),
		WithStatsTTL(time.Hour),
		WithStatsTrackKeys(true),
	)

	at := time.Date(2024, 5, 1, 10, 7, 30, 0, time.UTC)
	ctx := context.Background()
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Key: "alice", Allowed: true, Reason: domain.ReasonAllowed, Method: "POST", Path: "/users", At: at}))
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Key: "alice", Reason: domain.ReasonThrottled, Method: "POST", Path: "/users", At: at}))

	assert.Equal(t, "1", mr.HGet("rl:stats:total", "allowed"))
	assert.Equal(t, "1", mr.HGet("rl:stats:total", "throttled"))
	assert.Equal(t, "1", mr.HGet("rl:stats:minute:202405011007", "throttled"))
	assert.Equal(t, "1", mr.HGet("rl:stats:route", "POST /users:allowed"))
	assert.Equal(t, "1", mr.HGet("rl:stats:key:alice", "throttled"))

	assert.Equal(t, time.Hour, mr.TTL("rl:stats:minute:202405011007"))
	assert.Equal(t, time.Duration(0), mr.TTL("rl:stats:total"))
}

func TestRedisStatsStore_NoBucket(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s := NewRedisStatsStore(rdb, WithStatsBucket(" NONE "))
	require.NoError(t, s.Record(context.Background(), domain.StatsEvent{Reason: domain.ReasonMissingKey}))

	assert.Equal(t, "1", mr.HGet("ratelimit:stats:total", "missing_key"))
	assert.Len(t, mr.Keys(), 1)
}

func TestRedisStatsStore_NilIsNoop(t *testing.T) {
	var s *RedisStatsStore
	assert.NoError(t, s.Record(context.Background(), domain.StatsEvent{}))
}
