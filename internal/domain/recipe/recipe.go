// Package recipe convierte un volumen objetivo en cantidades de materia prima.
// Funciones puras: sin I/O y sin redondeo (se redondea solo al presentar).
package recipe

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Licoreria-api/internal/domain"
	"github.com/jhoicas/Licoreria-api/internal/domain/entity"
)

// Constantes de receta. AlcoholFraction + SyrupFraction = 1.
var (
	AlcoholFraction = decimal.RequireFromString("0.2917")
	SyrupFraction   = decimal.RequireFromString("0.7083")

	// ReferenceBottleLiters botella estándar para estimar rendimiento.
	ReferenceBottleLiters = decimal.RequireFromString("0.75")

	// BOM por botella de 750 ml.
	alcoholMlPer750 = decimal.RequireFromString("218.78")
	sugarKgPer750   = decimal.RequireFromString("0.183")

	thousand = decimal.NewFromInt(1000)
)

// Factors descomposición del jarabe por variante.
type Factors struct {
	SyrupMlPerGram decimal.Decimal // ml de jarabe por gramo de azúcar
	WaterMlPerGram decimal.Decimal // ml de agua por gramo de azúcar
}

var variantFactors = map[entity.Variant]Factors{
	entity.VariantA: {SyrupMlPerGram: decimal.RequireFromString("2.88"), WaterMlPerGram: decimal.RequireFromString("2.25")},
	entity.VariantB: {SyrupMlPerGram: decimal.RequireFromString("3.13"), WaterMlPerGram: decimal.RequireFromString("2.50")},
}

// FactorsFor devuelve los factores de la variante.
func FactorsFor(v entity.Variant) (Factors, bool) {
	f, ok := variantFactors[v]
	return f, ok
}

// Batch cantidades requeridas para producir un volumen.
type Batch struct {
	VolumeLiters   decimal.Decimal `json:"volume_liters"`
	AlcoholLiters  decimal.Decimal `json:"alcohol_liters"`
	SyrupLiters    decimal.Decimal `json:"syrup_liters"`
	SugarKg        decimal.Decimal `json:"sugar_kg"`
	WaterLiters    decimal.Decimal `json:"water_liters"`
	BottleEstimate decimal.Decimal `json:"bottle_estimate"`
}

// ComputeBatch calcula alcohol, jarabe, azúcar, agua y botellas estimadas para volumeLiters.
func ComputeBatch(volumeLiters decimal.Decimal, v entity.Variant) (Batch, error) {
	if !volumeLiters.IsPositive() {
		return Batch{}, domain.ErrInvalidInput
	}
	f, ok := FactorsFor(v)
	if !ok {
		return Batch{}, domain.ErrInvalidInput
	}
	syrup := volumeLiters.Mul(SyrupFraction)
	sugarGrams := syrup.Mul(thousand).Div(f.SyrupMlPerGram)
	return Batch{
		VolumeLiters:   volumeLiters,
		AlcoholLiters:  volumeLiters.Mul(AlcoholFraction),
		SyrupLiters:    syrup,
		SugarKg:        sugarGrams.Div(thousand),
		WaterLiters:    sugarGrams.Mul(f.WaterMlPerGram).Div(thousand),
		BottleEstimate: volumeLiters.Div(ReferenceBottleLiters),
	}, nil
}

// BottleBOM lista de materiales líquidos de una botella.
type BottleBOM struct {
	Size      entity.BottleSize `json:"size_ml"`
	AlcoholMl decimal.Decimal   `json:"alcohol_ml"`
	SugarKg   decimal.Decimal   `json:"sugar_kg"`
}

// ComputeBottleBOM escala la BOM de 750 ml al tamaño pedido (375 ml = mitad).
func ComputeBottleBOM(size entity.BottleSize, v entity.Variant) (BottleBOM, error) {
	if !v.Valid() {
		return BottleBOM{}, domain.ErrInvalidInput
	}
	switch size {
	case entity.Bottle750:
		return BottleBOM{Size: size, AlcoholMl: alcoholMlPer750, SugarKg: sugarKgPer750}, nil
	case entity.Bottle375:
		two := decimal.NewFromInt(2)
		return BottleBOM{Size: size, AlcoholMl: alcoholMlPer750.Div(two), SugarKg: sugarKgPer750.Div(two)}, nil
	}
	return BottleBOM{}, domain.ErrInvalidInput
}
