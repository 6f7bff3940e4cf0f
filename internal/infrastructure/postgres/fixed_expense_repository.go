package postgres

import (
	"context"

	"github.com/jhoicas/Licoreria-api/internal/domain/entity"
	"github.com/jhoicas/Licoreria-api/internal/domain/repository"
)

var _ repository.FixedExpenseRepository = (*FixedExpenseRepo)(nil)

// FixedExpenseRepo gastos fijos mensuales.
type FixedExpenseRepo struct {
	q Querier
}

// NewFixedExpenseRepository construye el adaptador.
func NewFixedExpenseRepository(q Querier) *FixedExpenseRepo {
	return &FixedExpenseRepo{q: q}
}

// List gastos fijos por nombre.
func (r *FixedExpenseRepo) List(ctx context.Context) ([]*entity.FixedExpense, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, monthly_amount FROM fixed_expenses ORDER BY name`)
	if err != nil {
		return nil, wrap("list fixed expenses", err)
	}
	defer rows.Close()
	var list []*entity.FixedExpense
	for rows.Next() {
		var e entity.FixedExpense
		if err := rows.Scan(&e.ID, &e.Name, &e.MonthlyAmount); err != nil {
			return nil, wrap("scan fixed expense", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
