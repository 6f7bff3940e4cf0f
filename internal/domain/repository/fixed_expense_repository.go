package repository

import (
	"context"

	"github.com/jhoicas/Licoreria-api/internal/domain/entity"
)

// FixedExpenseRepository lectura de gastos fijos mensuales para el prorrateo de costos.
type FixedExpenseRepository interface {
	List(ctx context.Context) ([]*entity.FixedExpense, error)
}
