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

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewRedisCache(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
}

func TestRememberCachesValue(t *testing.T) {
	rc, mr := newTestCache(t)
	ctx := context.Background()

	calls := 0
	fn := func() (string, error) {
		calls++
		return "valeur", nil
	}

	for i := 0; i < 3; i++ {
		val, err := rc.Remember(ctx, "cle", 5*time.Minute, fn)
		require.NoError(t, err)
		assert.Equal(t, "valeur", val)
	}
	assert.Equal(t, 1, calls)
	assert.Equal(t, 5*time.Minute, mr.TTL("cle"))
}

func TestRememberRecomputesAfterExpiry(t *testing.T) {
	rc, mr := newTestCache(t)
	ctx := context.Background()

	calls := 0
	fn := func() (string, error) {
		calls++
		return "valeur", nil
	}

	_, err := rc.Remember(ctx, "cle", time.Minute, fn)
	require.NoError(t, err)

	mr.FastForward(time.Minute + time.Second)

	_, err = rc.Remember(ctx, "cle", time.Minute, fn)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRememberPropagatesError(t *testing.T) {
	rc, _ := newTestCache(t)

	boom := errors.New("prestataire indisponible")
	_, err := rc.Remember(context.Background(), "cle", time.Minute, func() (string, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, boom)

	// Rien n'est mis en cache en cas d'échec
	calls := 0
	val, err := rc.Remember(context.Background(), "cle", time.Minute, func() (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, 1, calls)
}

func TestForget(t *testing.T) {
	rc, mr := newTestCache(t)
	ctx := context.Background()

	_, err := rc.Remember(ctx, "cle", time.Minute, func() (string, error) { return "valeur", nil })
	require.NoError(t, err)

	rc.Forget(ctx, "cle")
	assert.False(t, mr.Exists("cle"))
}
