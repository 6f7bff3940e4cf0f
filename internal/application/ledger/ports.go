package ledger

import (
	"context"

	"github.com/jhoicas/Licoreria-api/internal/domain/repository"
)

// TxFunc recibe repositorios atados a una misma transacción.
type TxFunc func(
	ctx context.Context,
	materialRepo repository.MaterialRepository,
	lotRepo repository.LotRepository,
	movRepo repository.MovementRepository,
) error

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil; Rollback ante error o cancelación del contexto.
type TxRunner interface {
	Run(ctx context.Context, fn TxFunc) error
}
