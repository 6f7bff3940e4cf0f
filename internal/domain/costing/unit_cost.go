// Package costing calcula el costo por botella a partir de costos unitarios
// vigentes y del prorrateo de gastos fijos. No toca el libro de stock.
package costing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Licoreria-api/internal/domain"
	"github.com/jhoicas/Licoreria-api/internal/domain/entity"
	"github.com/jhoicas/Licoreria-api/internal/domain/recipe"
)

// UnitCosts costos unitarios vigentes. Un costo ausente vale cero.
type UnitCosts struct {
	Bottle  map[entity.BottleSize]decimal.Decimal
	Cap     decimal.Decimal
	Seal    decimal.Decimal
	Stamp   decimal.Decimal
	Label   map[entity.Variant]map[entity.BottleSize]decimal.Decimal
	Alcohol decimal.Decimal // por litro
	Sugar   decimal.Decimal // por kg
	Fruit   decimal.Decimal // fruta por botella de 750 ml
}

// SetLabel registra el costo de etiqueta para variante y tamaño.
func (u *UnitCosts) SetLabel(v entity.Variant, size entity.BottleSize, cost decimal.Decimal) {
	if u.Label == nil {
		u.Label = map[entity.Variant]map[entity.BottleSize]decimal.Decimal{}
	}
	if u.Label[v] == nil {
		u.Label[v] = map[entity.BottleSize]decimal.Decimal{}
	}
	u.Label[v][size] = cost
}

// SetBottle registra el costo de la botella vacía de un tamaño.
func (u *UnitCosts) SetBottle(size entity.BottleSize, cost decimal.Decimal) {
	if u.Bottle == nil {
		u.Bottle = map[entity.BottleSize]decimal.Decimal{}
	}
	u.Bottle[size] = cost
}

// Breakdown costo por botella desglosado.
type Breakdown struct {
	Variant    entity.Variant    `json:"variant"`
	Size       entity.BottleSize `json:"size_ml"`
	Packaging  decimal.Decimal   `json:"packaging"`
	Liquid     decimal.Decimal   `json:"liquid"`
	FixedShare decimal.Decimal   `json:"fixed_share"`
	Total      decimal.Decimal   `json:"total"`
}

// UnitCost suma envase, líquido y la parte de gastos fijos de una botella.
// fixedShare = Σ gastos / ventas simuladas; cero si no hay ventas simuladas.
func UnitCost(v entity.Variant, size entity.BottleSize, costs UnitCosts, fixedExpenses []decimal.Decimal, simulatedMonthlySales decimal.Decimal) (Breakdown, error) {
	bom, err := recipe.ComputeBottleBOM(size, v)
	if err != nil {
		return Breakdown{}, err
	}
	if simulatedMonthlySales.IsNegative() {
		return Breakdown{}, domain.ErrInvalidInput
	}

	packaging := costs.Bottle[size].
		Add(costs.Cap).
		Add(costs.Seal).
		Add(costs.Stamp).
		Add(costs.Label[v][size])

	fruit := costs.Fruit
	if size == entity.Bottle375 {
		fruit = fruit.Div(decimal.NewFromInt(2))
	}
	liquid := bom.AlcoholMl.Div(decimal.NewFromInt(1000)).Mul(costs.Alcohol).
		Add(bom.SugarKg.Mul(costs.Sugar)).
		Add(fruit)

	fixedShare := decimal.Zero
	if simulatedMonthlySales.IsPositive() {
		fixedShare = decimal.Sum(decimal.Zero, fixedExpenses...).Div(simulatedMonthlySales)
	}

	return Breakdown{
		Variant:    v,
		Size:       size,
		Packaging:  packaging,
		Liquid:     liquid,
		FixedShare: fixedShare,
		Total:      packaging.Add(liquid).Add(fixedShare),
	}, nil
}
