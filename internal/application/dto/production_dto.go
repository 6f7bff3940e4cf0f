package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Licoreria-api/internal/domain/entity"
	"github.com/jhoicas/Licoreria-api/internal/domain/recipe"
)

// MacerateRequest body para POST /api/production/macerate.
type MacerateRequest struct {
	Variant       string          `json:"variant" validate:"required,oneof=citrus-A citrus-B"`
	AlcoholLiters decimal.Decimal `json:"alcohol_liters" validate:"gt=0"`
}

// FilterRequest body para POST /api/production/filter.
type FilterRequest struct {
	Variant         string          `json:"variant" validate:"required,oneof=citrus-A citrus-B"`
	WithdrawnLiters decimal.Decimal `json:"withdrawn_liters" validate:"gt=0"`
	YieldLiters     decimal.Decimal `json:"yield_liters" validate:"gt=0"`
	ConfirmGain     bool            `json:"confirm_gain"`
}

// CreateLotRequest body para POST /api/lots.
type CreateLotRequest struct {
	LotID        string          `json:"lot_id" validate:"required,max=64"`
	Variant      string          `json:"variant" validate:"required,oneof=citrus-A citrus-B"`
	VolumeLiters decimal.Decimal `json:"volume_liters" validate:"gt=0"`
	CreateOnly   bool            `json:"create_only"`
}

// BottleRequest body para POST /api/lots/:id/bottle.
type BottleRequest struct {
	Size     int  `json:"size_ml" validate:"required,oneof=375 750"`
	Quantity int  `json:"quantity" validate:"required,gt=0"`
	Force    bool `json:"force"`
}

// LotDTO estado del lote.
type LotDTO struct {
	ID               string                 `json:"id"`
	Variant          string                 `json:"variant"`
	VolumeTotal      decimal.Decimal        `json:"volume_total"`
	VolumeRemaining  decimal.Decimal        `json:"volume_remaining"`
	BottledLiters    decimal.Decimal        `json:"bottled_liters"`
	Status           string                 `json:"status"`
	StartedAt        time.Time              `json:"started_at"`
	EstimatedReadyAt time.Time              `json:"estimated_ready_at"`
	ApprovedAt       *time.Time             `json:"approved_at,omitempty"`
	History          []entity.ProductionRun `json:"history"`
	Bottled          map[int]int            `json:"bottled"`
	Depleted         bool                   `json:"depleted"`
}

// LotFromEntity convierte el lote en DTO.
func LotFromEntity(l *entity.Lot) LotDTO {
	bottled := make(map[int]int, len(l.Bottled))
	for size, qty := range l.Bottled {
		bottled[int(size)] = qty
	}
	return LotDTO{
		ID:               l.ID,
		Variant:          string(l.Variant),
		VolumeTotal:      l.VolumeTotal,
		VolumeRemaining:  l.VolumeRemaining,
		BottledLiters:    l.BottledLiters(),
		Status:           l.Status,
		StartedAt:        l.StartedAt,
		EstimatedReadyAt: l.EstimatedReadyAt,
		ApprovedAt:       l.ApprovedAt,
		History:          l.History,
		Bottled:          bottled,
		Depleted:         l.IsDepleted(),
	}
}

// LotsFromEntities convierte un listado.
func LotsFromEntities(list []*entity.Lot) []LotDTO {
	out := make([]LotDTO, 0, len(list))
	for _, l := range list {
		out = append(out, LotFromEntity(l))
	}
	return out
}

// LotOperationResponse resultado de crear o ampliar un lote.
type LotOperationResponse struct {
	TransactionID string       `json:"transaction_id"`
	Merged        bool         `json:"merged"`
	Lot           LotDTO       `json:"lot"`
	Batch         recipe.Batch `json:"batch"`
}

// ShortageDTO faltante de envase.
type ShortageDTO struct {
	MaterialID string          `json:"material_id"`
	Available  decimal.Decimal `json:"available"`
	Required   decimal.Decimal `json:"required"`
}

// BottleResponse resultado del embotellado.
type BottleResponse struct {
	TransactionID   string          `json:"transaction_id"`
	Lot             LotDTO          `json:"lot"`
	LiquidLiters    decimal.Decimal `json:"liquid_liters"`
	FinishedStock   decimal.Decimal `json:"finished_stock"`
	Forced          bool            `json:"forced"`
	ForcedShortages []ShortageDTO   `json:"forced_shortages,omitempty"`
}
