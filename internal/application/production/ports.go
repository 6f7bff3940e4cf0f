package production

import "context"

// LotLocker serializa las operaciones sobre un mismo lote (entre goroutines o instancias).
// unlock debe llamarse siempre; es idempotente.
type LotLocker interface {
	Lock(ctx context.Context, lotID string) (unlock func(), err error)
}
