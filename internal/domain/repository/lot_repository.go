package repository

import (
	"context"

	"github.com/jhoicas/Licoreria-api/internal/domain/entity"
)

// LotRepository define el puerto de persistencia de lotes.
type LotRepository interface {
	// GetByID devuelve domain.ErrLotNotFound si no existe.
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
	// GetForUpdate igual que GetByID pero bloquea el registro hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Lot, error)
	// Save inserta (Version == 0) o actualiza con control de versión; domain.ErrConflict si otro escribió antes.
	Save(ctx context.Context, lot *entity.Lot) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, status string) ([]*entity.Lot, error)
}
