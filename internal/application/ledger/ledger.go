// Package ledger implementa el libro de stock: única vía para modificar saldos
// de materiales. Cada ajuste deja un movimiento de auditoría.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Licoreria-api/internal/domain"
	"github.com/jhoicas/Licoreria-api/internal/domain/costing"
	"github.com/jhoicas/Licoreria-api/internal/domain/entity"
	"github.com/jhoicas/Licoreria-api/internal/domain/repository"
	"github.com/jhoicas/Licoreria-api/internal/observability"
	"github.com/jhoicas/Licoreria-api/pkg/logger"
)

const reversalPrefix = "ESTORNO_"

// Reason describe el motivo de un ajuste; se copia al movimiento.
type Reason struct {
	Category    string
	Action      string
	Description string
	LotID       string
}

// Inverse motivo del estorno de este ajuste.
func (r Reason) Inverse() Reason {
	inv := r
	if strings.HasPrefix(r.Action, reversalPrefix) {
		inv.Action = strings.TrimPrefix(r.Action, reversalPrefix)
	} else {
		inv.Action = reversalPrefix + r.Action
	}
	inv.Description = "estorno: " + r.Description
	return inv
}

// Ledger libro de stock.
type Ledger struct {
	txRunner     TxRunner
	materialRepo repository.MaterialRepository
	movementRepo repository.MovementRepository
	log          *logger.Logger
	metrics      *observability.Metrics
	now          func() time.Time
}

// New construye el libro. metrics puede ser nil.
func New(
	txRunner TxRunner,
	materialRepo repository.MaterialRepository,
	movementRepo repository.MovementRepository,
	log *logger.Logger,
	metrics *observability.Metrics,
) *Ledger {
	return &Ledger{
		txRunner:     txRunner,
		materialRepo: materialRepo,
		movementRepo: movementRepo,
		log:          log.Child("ledger"),
		metrics:      metrics,
		now:          time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// Adjust aplica delta en su propia transacción y devuelve el nuevo saldo.
func (l *Ledger) Adjust(ctx context.Context, materialID string, delta decimal.Decimal, reason Reason) (decimal.Decimal, error) {
	if materialID == "" {
		return decimal.Zero, domain.ErrInvalidInput
	}
	txID := uuid.New().String()
	var balance decimal.Decimal
	err := l.txRunner.Run(ctx, func(
		ctx context.Context,
		materialRepo repository.MaterialRepository,
		_ repository.LotRepository,
		movRepo repository.MovementRepository,
	) error {
		var err error
		balance, err = l.AdjustInTx(ctx, materialRepo, movRepo, txID, materialID, delta, reason)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// Reverse estorna un ajuste previo: Adjust(materialID, -delta, reason.Inverse()).
func (l *Ledger) Reverse(ctx context.Context, materialID string, delta decimal.Decimal, reason Reason) (decimal.Decimal, error) {
	return l.Adjust(ctx, materialID, delta.Neg(), reason.Inverse())
}

// AdjustInTx ejecuta el ajuste con los repositorios de la transacción del caller.
// El saldo se aplica sin importar el signo; un saldo negativo deja además un movimiento WARNING.
// Un fallo al escribir la auditoría no aborta el ajuste: se registra en log y métricas.
func (l *Ledger) AdjustInTx(
	ctx context.Context,
	materialRepo repository.MaterialRepository,
	movRepo repository.MovementRepository,
	txID, materialID string,
	delta decimal.Decimal,
	reason Reason,
) (decimal.Decimal, error) {
	balance, err := materialRepo.AdjustQuantity(ctx, materialID, delta)
	if err != nil {
		if errors.Is(err, domain.ErrMaterialNotFound) {
			return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrMaterialNotFound, materialID)
		}
		return decimal.Zero, err
	}

	now := l.now()
	category := reason.Category
	if category == "" {
		category = entity.MovementCategoryStock
	}
	after := balance
	l.Record(ctx, movRepo, &entity.Movement{
		TransactionID: txID,
		MaterialID:    materialID,
		LotID:         reason.LotID,
		Category:      category,
		Action:        reason.Action,
		Level:         entity.LevelInfo,
		Quantity:      delta,
		BalanceAfter:  &after,
		Description:   reason.Description,
		CreatedAt:     now,
	})

	if balance.IsNegative() {
		l.metrics.StockNegative(materialID)
		l.log.Warn().
			Str("tx_id", txID).
			Str("material_id", materialID).
			Str("balance", balance.String()).
			Str("action", reason.Action).
			Msg("saldo negativo tras ajuste")
		l.Record(ctx, movRepo, &entity.Movement{
			TransactionID: txID,
			MaterialID:    materialID,
			LotID:         reason.LotID,
			Category:      entity.MovementCategoryStock,
			Action:        "ESTOQUE_NEGATIVO",
			Level:         entity.LevelWarning,
			Quantity:      delta,
			BalanceAfter:  &after,
			Description:   fmt.Sprintf("saldo de %s quedó en %s (%s)", materialID, balance, reason.Action),
			CreatedAt:     now,
		})
	}
	return balance, nil
}

// ReverseInTx estorno dentro de la transacción del caller.
func (l *Ledger) ReverseInTx(
	ctx context.Context,
	materialRepo repository.MaterialRepository,
	movRepo repository.MovementRepository,
	txID, materialID string,
	delta decimal.Decimal,
	reason Reason,
) (decimal.Decimal, error) {
	return l.AdjustInTx(ctx, materialRepo, movRepo, txID, materialID, delta.Neg(), reason.Inverse())
}

// Record agrega un movimiento a la auditoría. Nunca falla hacia el caller:
// un error de escritura degrada la observabilidad, no la integridad de los datos.
func (l *Ledger) Record(ctx context.Context, movRepo repository.MovementRepository, m *entity.Movement) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = l.now()
	}
	if m.Level == "" {
		m.Level = entity.LevelInfo
	}
	if err := movRepo.Append(ctx, m); err != nil {
		l.metrics.AuditWriteFailed()
		l.log.Error().Err(err).
			Str("tx_id", m.TransactionID).
			Str("material_id", m.MaterialID).
			Str("lot_id", m.LotID).
			Str("action", m.Action).
			Str("level", m.Level).
			Msg("no se pudo escribir el movimiento de auditoría")
	}
}

// ReceiveInput entrada de compra de un material con su costo unitario.
type ReceiveInput struct {
	MaterialID  string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	Description string
}

// Receive registra una entrada de compra: suma stock y recalcula el costo
// promedio ponderado del material (insumo del cálculo de costos).
func (l *Ledger) Receive(ctx context.Context, in ReceiveInput) (*entity.Material, error) {
	if in.MaterialID == "" || !in.Quantity.IsPositive() || in.UnitCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	txID := uuid.New().String()
	var out *entity.Material
	err := l.txRunner.Run(ctx, func(
		ctx context.Context,
		materialRepo repository.MaterialRepository,
		_ repository.LotRepository,
		movRepo repository.MovementRepository,
	) error {
		mat, err := materialRepo.GetForUpdate(ctx, in.MaterialID)
		if err != nil {
			return err
		}
		newCost := costing.WeightedAverageCost(mat.Quantity, mat.Cost(), in.Quantity, in.UnitCost)
		if err := materialRepo.UpdateUnitCost(ctx, in.MaterialID, newCost); err != nil {
			return err
		}
		balance, err := l.AdjustInTx(ctx, materialRepo, movRepo, txID, in.MaterialID, in.Quantity, Reason{
			Category:    entity.MovementCategoryStock,
			Action:      "ENTRADA",
			Description: fmt.Sprintf("entrada a costo unitario %s. %s", in.UnitCost, in.Description),
		})
		if err != nil {
			return err
		}
		mat.Quantity = balance
		mat.UnitCost = &newCost
		out = mat
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Balance devuelve el material con su saldo actual.
func (l *Ledger) Balance(ctx context.Context, materialID string) (*entity.Material, error) {
	return l.materialRepo.GetByID(ctx, materialID)
}

// Materials lista materiales, opcionalmente filtrados por categoría.
func (l *Ledger) Materials(ctx context.Context, category string) ([]*entity.Material, error) {
	return l.materialRepo.List(ctx, category)
}

// History movimientos recientes de un material (diagnóstico de descuadres).
func (l *Ledger) History(ctx context.Context, materialID string, limit int) ([]*entity.Movement, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if _, err := l.materialRepo.GetByID(ctx, materialID); err != nil {
		return nil, err
	}
	return l.movementRepo.ListByMaterial(ctx, materialID, limit)
}
