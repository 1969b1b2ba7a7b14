package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	FeeBps int    `json:"feeBps"`
	Mode   string `json:"mode"`
}

func setupService(t *testing.T) (Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewService(client), mr
}

func TestGetMiss(t *testing.T) {
	svc, _ := setupService(t)

	var out payload
	err := svc.Get(context.Background(), "missing", &out)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestSetGetDelete(t *testing.T) {
	svc, mr := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "organizer:fees:a", payload{FeeBps: 500, Mode: "ADDED"}, time.Minute))
	assert.True(t, svc.Exists(ctx, "organizer:fees:a"))
	assert.Equal(t, time.Minute, mr.TTL("organizer:fees:a"))

	var out payload
	require.NoError(t, svc.Get(ctx, "organizer:fees:a", &out))
	assert.Equal(t, payload{FeeBps: 500, Mode: "ADDED"}, out)

	require.NoError(t, svc.Delete(ctx, "organizer:fees:a"))
	assert.False(t, svc.Exists(ctx, "organizer:fees:a"))
}

func TestDeletePattern(t *testing.T) {
	svc, mr := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "organizer:fees:a", 1, 0))
	require.NoError(t, svc.Set(ctx, "organizer:fees:b", 2, 0))
	require.NoError(t, svc.Set(ctx, "organizer:orgs:c", 3, 0))

	require.NoError(t, svc.DeletePattern(ctx, "organizer:fees:*"))
	assert.False(t, mr.Exists("organizer:fees:a"))
	assert.False(t, mr.Exists("organizer:fees:b"))
	assert.True(t, mr.Exists("organizer:orgs:c"))
}

func TestGetOrSet(t *testing.T) {
	svc, mr := setupService(t)
	ctx := context.Background()
	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return payload{FeeBps: 250, Mode: "INCLUDED"}, nil
	}

	var first payload
	require.NoError(t, svc.GetOrSet(ctx, "organizer:fees:platform", time.Minute, fetch, &first))
	assert.Equal(t, 250, first.FeeBps)
	assert.True(t, mr.Exists("organizer:fees:platform"))

	var second payload
	require.NoError(t, svc.GetOrSet(ctx, "organizer:fees:platform", time.Minute, fetch, &second))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestGetOrSetFetcherError(t *testing.T) {
	svc, mr := setupService(t)

	var out payload
	err := svc.GetOrSet(context.Background(), "k", time.Minute, func() (interface{}, error) {
		return nil, errors.New("db down")
	}, &out)
	assert.ErrorContains(t, err, "db down")
	assert.False(t, mr.Exists("k"))
}

func TestGetOrSetRedisDown(t *testing.T) {
	svc, mr := setupService(t)
	mr.Close()

	var out payload
	err := svc.GetOrSet(context.Background(), "k", time.Minute, func() (interface{}, error) {
		return payload{FeeBps: 100}, nil
	}, &out)
	assert.NoError(t, err)
	assert.Equal(t, 100, out.FeeBps)
}
