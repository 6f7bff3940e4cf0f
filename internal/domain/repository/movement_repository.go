package repository

import (
	"context"

	"github.com/jhoicas/Licoreria-api/internal/domain/entity"
)

// MovementRepository define el puerto del registro de auditoría (append-only).
type MovementRepository interface {
	Append(ctx context.Context, movement *entity.Movement) error
	ListByMaterial(ctx context.Context, materialID string, limit int) ([]*entity.Movement, error)
	ListByLot(ctx context.Context, lotID string, limit int) ([]*entity.Movement, error)
}
