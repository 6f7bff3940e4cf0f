package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Licoreria-api/internal/domain/entity"
)

// MaterialDTO saldo y costo vigente de un material.
type MaterialDTO struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Category  string           `json:"category"`
	Unit      string           `json:"unit"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	Negative  bool             `json:"negative"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// MaterialFromEntity convierte la entidad en DTO.
func MaterialFromEntity(m *entity.Material) MaterialDTO {
	return MaterialDTO{
		ID:        m.ID,
		Name:      m.Name,
		Category:  m.Category,
		Unit:      m.Unit,
		Quantity:  m.Quantity,
		UnitCost:  m.UnitCost,
		Negative:  m.Quantity.IsNegative(),
		UpdatedAt: m.UpdatedAt,
	}
}

// MaterialsFromEntities convierte un listado.
func MaterialsFromEntities(list []*entity.Material) []MaterialDTO {
	out := make([]MaterialDTO, 0, len(list))
	for _, m := range list {
		out = append(out, MaterialFromEntity(m))
	}
	return out
}

// AdjustMaterialRequest body para POST /api/materials/:id/adjust.
// Delta con signo; un saldo resultante negativo queda marcado como WARNING.
type AdjustMaterialRequest struct {
	Delta       decimal.Decimal `json:"delta"`
	Action      string          `json:"action" validate:"required,max=40"`
	Description string          `json:"description" validate:"max=255"`
}

// ReceiveMaterialRequest body para POST /api/materials/:id/receive.
type ReceiveMaterialRequest struct {
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitCost    decimal.Decimal `json:"unit_cost" validate:"gte=0"`
	Description string          `json:"description" validate:"max=255"`
}

// AdjustResponse saldo tras el ajuste.
type AdjustResponse struct {
	MaterialID string          `json:"material_id"`
	Balance    decimal.Decimal `json:"balance"`
	Negative   bool            `json:"negative"`
}

// MovementDTO movimiento de auditoría.
type MovementDTO struct {
	ID            string           `json:"id"`
	TransactionID string           `json:"transaction_id"`
	MaterialID    string           `json:"material_id,omitempty"`
	LotID         string           `json:"lot_id,omitempty"`
	Category      string           `json:"category"`
	Action        string           `json:"action"`
	Level         string           `json:"level"`
	Quantity      decimal.Decimal  `json:"quantity"`
	BalanceAfter  *decimal.Decimal `json:"balance_after,omitempty"`
	Description   string           `json:"description"`
	CreatedAt     time.Time        `json:"created_at"`
}

// MovementsFromEntities convierte un listado de movimientos.
func MovementsFromEntities(list []*entity.Movement) []MovementDTO {
	out := make([]MovementDTO, 0, len(list))
	for _, m := range list {
		out = append(out, MovementDTO{
			ID:            m.ID,
			TransactionID: m.TransactionID,
			MaterialID:    m.MaterialID,
			LotID:         m.LotID,
			Category:      m.Category,
			Action:        m.Action,
			Level:         m.Level,
			Quantity:      m.Quantity,
			BalanceAfter:  m.BalanceAfter,
			Description:   m.Description,
			CreatedAt:     m.CreatedAt,
		})
	}
	return out
}
