package redislock_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Licoreria-api/internal/domain"
	"github.com/jhoicas/Licoreria-api/internal/infrastructure/redislock"
)

func newLocker(t *testing.T, wait time.Duration) (*redislock.Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redislock.New(client, time.Minute, wait), mr
}

func TestLock_ObtieneYLibera(t *testing.T) {
	locker, mr := newLocker(t, 100*time.Millisecond)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "L-1")
	require.NoError(t, err)
	assert.True(t, mr.Exists(redislock.Key("L-1")))
	assert.Equal(t, "lot:L-1:lock", redislock.Key("L-1"))

	unlock()
	assert.False(t, mr.Exists(redislock.Key("L-1")))

	again, err := locker.Lock(ctx, "L-1")
	require.NoError(t, err)
	again()
}

func TestLock_OcupadoDevuelveConflicto(t *testing.T) {
	locker, _ := newLocker(t, 80*time.Millisecond)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "L-2")
	require.NoError(t, err)
	defer unlock()

	_, err = locker.Lock(ctx, "L-2")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.True(t, domain.IsRetryable(err))

	// otro lote no se ve afectado
	other, err := locker.Lock(ctx, "L-3")
	require.NoError(t, err)
	other()
}

func TestLock_NoLiberaTokenAjeno(t *testing.T) {
	locker, mr := newLocker(t, 50*time.Millisecond)

	unlock, err := locker.Lock(context.Background(), "L-4")
	require.NoError(t, err)

	// el TTL expiró y otra instancia tomó el lote
	require.NoError(t, mr.Set(redislock.Key("L-4"), "otro-token"))
	unlock()

	got, err := mr.Get(redislock.Key("L-4"))
	require.NoError(t, err)
	assert.Equal(t, "otro-token", got)
}

func TestLock_EsperaHastaLiberacion(t *testing.T) {
	locker, _ := newLocker(t, time.Second)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "L-5")
	require.NoError(t, err)
	go func() {
		time.Sleep(50 * time.Millisecond)
		unlock()
	}()

	second, err := locker.Lock(ctx, "L-5")
	require.NoError(t, err)
	second()
}

func TestLock_RedisCaido(t *testing.T) {
	locker, mr := newLocker(t, 10*time.Second)
	mr.Close()

	_, err := locker.Lock(context.Background(), "L-6")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestLock_ContextoCancelado(t *testing.T) {
	locker, _ := newLocker(t, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := locker.Lock(ctx, "L-7")
	assert.ErrorIs(t, err, context.Canceled)
}
