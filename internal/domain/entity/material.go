package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categorías de material.
const (
	CategoryIngredient   = "INGREDIENT"   // alcohol, azúcar, fruta
	CategoryPackaging    = "PACKAGING"    // botella, tapa, etiqueta, lacre, sello
	CategoryIntermediate = "INTERMEDIATE" // base con cáscara / filtrada
	CategoryFinished     = "FINISHED"     // botellas terminadas por variante y tamaño
)

// Material representa un ítem con saldo controlado por el libro de stock.
// Quantity solo puede quedar negativo mediante un ajuste forzado, que siempre
// deja un movimiento WARNING en la auditoría.
type Material struct {
	ID        string
	Name      string
	Category  string
	Unit      string           // L, kg, un
	Quantity  decimal.Decimal  // saldo actual (con signo)
	UnitCost  *decimal.Decimal // nil = costo no configurado
	UpdatedAt time.Time
}

// Cost devuelve el costo unitario o cero si no está configurado.
func (m *Material) Cost() decimal.Decimal {
	if m == nil || m.UnitCost == nil {
		return decimal.Zero
	}
	return *m.UnitCost
}

// FixedExpense gasto fijo mensual que se prorratea en el costo por botella.
type FixedExpense struct {
	ID            string
	Name          string
	MonthlyAmount decimal.Decimal
}
