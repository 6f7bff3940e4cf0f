// Package redislock bloqueo distribuido por lote sobre Redis (SET NX PX + liberación con token).
package redislock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Licoreria-api/internal/domain"
)

const (
	keyPrefix     = "lot:"
	keySuffix     = ":lock"
	DefaultTTL    = 30 * time.Second
	DefaultWait   = 5 * time.Second
	retryInterval = 25 * time.Millisecond
)

// Solo borra la clave si el token sigue siendo el nuestro.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// Locker bloqueo por lote compartido entre instancias.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
}

// New construye el locker. ttl y wait ≤ 0 toman los valores por defecto.
func New(client *redis.Client, ttl, wait time.Duration) *Locker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if wait <= 0 {
		wait = DefaultWait
	}
	return &Locker{client: client, ttl: ttl, wait: wait}
}

// Connect abre el cliente y verifica la conexión.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", errors.Join(domain.ErrStoreUnavailable, err))
	}
	return client, nil
}

// Key clave de bloqueo del lote.
func Key(lotID string) string {
	return keyPrefix + lotID + keySuffix
}

// Lock reintenta SET NX hasta obtener el lote o agotar la espera.
// Espera agotada → domain.ErrConflict; Redis caído → domain.ErrStoreUnavailable.
func (l *Locker) Lock(ctx context.Context, lotID string) (func(), error) {
	key := Key(lotID)
	token := uuid.New().String()

	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(waitCtx, key, token, l.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if !errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
			}
		}
		if ok {
			return l.unlockFunc(key, token), nil
		}

		select {
		case <-ticker.C:
		case <-waitCtx.Done():
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: lote %s ocupado", domain.ErrConflict, lotID)
		}
	}
}

func (l *Locker) unlockFunc(key, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			// liberar aunque el ctx de la operación ya haya terminado
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = releaseScript.Run(ctx, l.client, []string{key}, token).Err()
		})
	}
}
