package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Licoreria-api/internal/domain/entity"
)

// MaterialRepository define el puerto de persistencia de materiales.
// AdjustQuantity debe ser atómico a nivel de fila (read-modify-write en una sola sentencia).
type MaterialRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Material, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Material, error)
	// AdjustQuantity suma delta al saldo y devuelve el nuevo saldo. domain.ErrMaterialNotFound si no existe.
	AdjustQuantity(ctx context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error)
	UpdateUnitCost(ctx context.Context, id string, cost decimal.Decimal) error
	List(ctx context.Context, category string) ([]*entity.Material, error)
}
