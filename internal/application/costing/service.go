// Package costing expone el cálculo de costo por botella sobre los costos
// unitarios vigentes de los materiales. Solo lectura: no toca el libro de stock.
package costing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Licoreria-api/internal/domain"
	domaincosting "github.com/jhoicas/Licoreria-api/internal/domain/costing"
	"github.com/jhoicas/Licoreria-api/internal/domain/entity"
	"github.com/jhoicas/Licoreria-api/internal/domain/repository"
	"github.com/jhoicas/Licoreria-api/pkg/logger"
)

// Service casos de uso de costos.
type Service struct {
	materialRepo repository.MaterialRepository
	expenseRepo  repository.FixedExpenseRepository
	log          *logger.Logger
}

// NewService construye el servicio de costos.
func NewService(materialRepo repository.MaterialRepository, expenseRepo repository.FixedExpenseRepository, log *logger.Logger) *Service {
	return &Service{materialRepo: materialRepo, expenseRepo: expenseRepo, log: log.Child("costing")}
}

// UnitCost costo por botella de la variante y tamaño con el prorrateo de gastos fijos
// sobre simulatedMonthlySales botellas al mes.
func (s *Service) UnitCost(ctx context.Context, v entity.Variant, size entity.BottleSize, simulatedMonthlySales decimal.Decimal) (domaincosting.Breakdown, error) {
	if !v.Valid() || !size.Valid() || simulatedMonthlySales.IsNegative() {
		return domaincosting.Breakdown{}, domain.ErrInvalidInput
	}

	var (
		ingredients, packaging []*entity.Material
		expenses               []*entity.FixedExpense
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.materialRepo.List(ctx, entity.CategoryIngredient)
		if err != nil {
			return fmt.Errorf("cargar insumos: %w", err)
		}
		ingredients = list
		return nil
	})
	g.Go(func() error {
		list, err := s.materialRepo.List(ctx, entity.CategoryPackaging)
		if err != nil {
			return fmt.Errorf("cargar envases: %w", err)
		}
		packaging = list
		return nil
	})
	g.Go(func() error {
		list, err := s.expenseRepo.List(ctx)
		if err != nil {
			return fmt.Errorf("cargar gastos fijos: %w", err)
		}
		expenses = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return domaincosting.Breakdown{}, err
	}

	costs := UnitCostsFrom(append(ingredients, packaging...))
	amounts := make([]decimal.Decimal, 0, len(expenses))
	for _, e := range expenses {
		amounts = append(amounts, e.MonthlyAmount)
	}

	b, err := domaincosting.UnitCost(v, size, costs, amounts, simulatedMonthlySales)
	if err != nil {
		return domaincosting.Breakdown{}, err
	}
	s.log.Debug().Str("variant", string(v)).Int("size_ml", int(size)).
		Str("total", b.Total.String()).Msg("costo por botella calculado")
	return b, nil
}

// UnitCostsFrom arma los costos unitarios a partir de los códigos del catálogo.
// Materiales sin costo configurado aportan cero.
func UnitCostsFrom(materials []*entity.Material) domaincosting.UnitCosts {
	byID := make(map[string]decimal.Decimal, len(materials))
	for _, m := range materials {
		byID[m.ID] = m.Cost()
	}

	costs := domaincosting.UnitCosts{
		Cap:     byID[entity.MaterialCap],
		Seal:    byID[entity.MaterialSeal],
		Stamp:   byID[entity.MaterialStamp],
		Alcohol: byID[entity.MaterialPureAlcohol],
		Sugar:   byID[entity.MaterialSugar],
		Fruit:   byID[entity.MaterialFruit],
	}
	for _, size := range entity.BottleSizes() {
		costs.SetBottle(size, byID[entity.BottleMaterial(size)])
		for _, v := range entity.Variants() {
			costs.SetLabel(v, size, byID[entity.Label(v, size)])
		}
	}
	return costs
}
