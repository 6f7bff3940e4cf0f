package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categorías de movimiento.
const (
	MovementCategoryStock      = "ESTOQUE"  // ajuste del libro de stock
	MovementCategoryProduction = "PRODUCAO" // etapa del pipeline
	MovementCategoryLot        = "LOTE"     // ciclo de vida del lote
)

// Niveles de movimiento.
const (
	LevelInfo    = "INFO"
	LevelWarning = "WARNING" // saldo negativo o anomalía aceptada
)

// Movement registro de auditoría append-only. Nunca se modifica ni se borra.
type Movement struct {
	ID            string
	TransactionID string
	MaterialID    string // vacío en acciones de lote
	LotID         string
	Category      string
	Action        string
	Level         string
	Quantity      decimal.Decimal  // delta aplicado (cero en acciones sin material)
	BalanceAfter  *decimal.Decimal // saldo resultante, solo en ajustes
	Description   string
	CreatedAt     time.Time
}

// IsWarning indica si el movimiento está marcado como WARNING.
func (m *Movement) IsWarning() bool {
	return m.Level == LevelWarning
}
