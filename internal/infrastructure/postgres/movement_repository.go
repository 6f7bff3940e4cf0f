package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Licoreria-api/internal/domain/entity"
	"github.com/jhoicas/Licoreria-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, transaction_id, material_id, lot_id, category, action, level,
	quantity, balance_after, description, created_at`

// MovementRepo auditoría append-only sobre PostgreSQL.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Append inserta el movimiento en un savepoint: si falla, la transacción del caller sigue válida.
func (r *MovementRepo) Append(ctx context.Context, movement *entity.Movement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	sp, err := r.q.Begin(ctx)
	if err != nil {
		return wrap("begin movement savepoint", err)
	}
	defer func() { _ = sp.Rollback(ctx) }()

	_, err = sp.Exec(ctx, `
		INSERT INTO stock_movements (`+movementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		movement.ID, movement.TransactionID, nullable(movement.MaterialID), nullable(movement.LotID),
		movement.Category, movement.Action, movement.Level, movement.Quantity, movement.BalanceAfter,
		movement.Description, movement.CreatedAt)
	if err != nil {
		return wrap("insert movement", err)
	}
	if err := sp.Commit(ctx); err != nil {
		return wrap("release movement savepoint", err)
	}
	return nil
}

// ListByMaterial movimientos del material, más recientes primero.
func (r *MovementRepo) ListByMaterial(ctx context.Context, materialID string, limit int) ([]*entity.Movement, error) {
	return r.list(ctx, "material_id", materialID, limit)
}

// ListByLot movimientos del lote, más recientes primero.
func (r *MovementRepo) ListByLot(ctx context.Context, lotID string, limit int) ([]*entity.Movement, error) {
	return r.list(ctx, "lot_id", lotID, limit)
}

func (r *MovementRepo) list(ctx context.Context, column, value string, limit int) ([]*entity.Movement, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM stock_movements
		WHERE %s = $1
		ORDER BY seq DESC LIMIT $2`, movementColumns, column)
	rows, err := r.q.Query(ctx, query, value, limit)
	if err != nil {
		return nil, wrap("list movements", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		var (
			m                 entity.Movement
			materialID, lotID *string
			balance           decimal.NullDecimal
		)
		if err := rows.Scan(&m.ID, &m.TransactionID, &materialID, &lotID, &m.Category, &m.Action, &m.Level,
			&m.Quantity, &balance, &m.Description, &m.CreatedAt); err != nil {
			return nil, wrap("scan movement", err)
		}
		if materialID != nil {
			m.MaterialID = *materialID
		}
		if lotID != nil {
			m.LotID = *lotID
		}
		if balance.Valid {
			m.BalanceAfter = &balance.Decimal
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
