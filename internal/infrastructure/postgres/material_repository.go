package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Licoreria-api/internal/domain"
	"github.com/jhoicas/Licoreria-api/internal/domain/entity"
	"github.com/jhoicas/Licoreria-api/internal/domain/repository"
)

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

const materialColumns = `id, name, category, unit, quantity, unit_cost, updated_at`

// MaterialRepo implementación de MaterialRepository sobre PostgreSQL (usable con pool o tx).
type MaterialRepo struct {
	q Querier
}

// NewMaterialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMaterialRepository(q Querier) *MaterialRepo {
	return &MaterialRepo{q: q}
}

func scanMaterial(row pgx.Row) (*entity.Material, error) {
	var (
		m    entity.Material
		cost decimal.NullDecimal
	)
	if err := row.Scan(&m.ID, &m.Name, &m.Category, &m.Unit, &m.Quantity, &cost, &m.UpdatedAt); err != nil {
		return nil, err
	}
	if cost.Valid {
		m.UnitCost = &cost.Decimal
	}
	return &m, nil
}

// GetByID obtiene un material por código.
func (r *MaterialRepo) GetByID(ctx context.Context, id string) (*entity.Material, error) {
	m, err := scanMaterial(r.q.QueryRow(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMaterialNotFound
		}
		return nil, wrap("get material", err)
	}
	return m, nil
}

// GetForUpdate obtiene el material y bloquea la fila (SELECT FOR UPDATE).
func (r *MaterialRepo) GetForUpdate(ctx context.Context, id string) (*entity.Material, error) {
	m, err := scanMaterial(r.q.QueryRow(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMaterialNotFound
		}
		return nil, wrap("get material for update", err)
	}
	return m, nil
}

// AdjustQuantity suma delta en una sola sentencia y devuelve el nuevo saldo.
func (r *MaterialRepo) AdjustQuantity(ctx context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.q.QueryRow(ctx, `
		UPDATE materials SET quantity = quantity + $2, updated_at = now()
		WHERE id = $1
		RETURNING quantity`, id, delta).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, domain.ErrMaterialNotFound
		}
		return decimal.Zero, wrap("adjust material quantity", err)
	}
	return balance, nil
}

// UpdateUnitCost fija el costo unitario.
func (r *MaterialRepo) UpdateUnitCost(ctx context.Context, id string, cost decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `UPDATE materials SET unit_cost = $2, updated_at = now() WHERE id = $1`, id, cost)
	if err != nil {
		return wrap("update unit cost", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMaterialNotFound
	}
	return nil
}

// List materiales ordenados por código; category vacío = todos.
func (r *MaterialRepo) List(ctx context.Context, category string) ([]*entity.Material, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+materialColumns+` FROM materials
		WHERE ($1 = '' OR category = $1)
		ORDER BY id`, category)
	if err != nil {
		return nil, wrap("list materials", err)
	}
	defer rows.Close()
	var list []*entity.Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, wrap("scan material", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
