package production

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Licoreria-api/internal/application/ledger"
	"github.com/jhoicas/Licoreria-api/internal/domain"
	"github.com/jhoicas/Licoreria-api/internal/domain/entity"
	"github.com/jhoicas/Licoreria-api/internal/domain/repository"
)

// BottleInput embotellado de Quantity botellas de Size desde el lote.
// Force permite dejar envases en negativo; nunca aplica al líquido.
type BottleInput struct {
	LotID    string
	Size     entity.BottleSize
	Quantity int
	Force    bool
}

// BottleResult lote actualizado y detalle del consumo.
type BottleResult struct {
	TransactionID  string          `json:"transaction_id"`
	Lot            *entity.Lot     `json:"lot"`
	LiquidLiters   decimal.Decimal `json:"liquid_liters"`
	FinishedStock  decimal.Decimal `json:"finished_stock"`
	Forced         bool            `json:"forced"`
	ForcedShortage []Shortage      `json:"forced_shortages,omitempty"`
}

// Bottle convierte líquido del tanque en botellas terminadas.
//
// El líquido es una restricción dura: qty×size no puede superar el volumen
// restante (domain.ErrInsufficientLiquid, sin ningún cambio). Los envases son
// una restricción blanda: sin Force devuelve *InsufficientPackagingError; con
// Force continúa y deja WARNING en la auditoría. El lote debe estar PRONTO.
func (s *Service) Bottle(ctx context.Context, in BottleInput) (res BottleResult, err error) {
	if in.LotID == "" || !in.Size.Valid() || in.Quantity <= 0 {
		return BottleResult{}, domain.ErrInvalidInput
	}
	txID := uuid.New().String()
	defer func() { s.finish("bottle", txID, err) }()

	units := decimal.NewFromInt(int64(in.Quantity))
	liquid := in.Size.Liters().Mul(units)

	err = s.withLot(ctx, in.LotID, func() error {
		return s.txRunner.Run(ctx, func(
			ctx context.Context,
			materialRepo repository.MaterialRepository,
			lotRepo repository.LotRepository,
			movRepo repository.MovementRepository,
		) error {
			lot, err := lotRepo.GetForUpdate(ctx, in.LotID)
			if err != nil {
				return err
			}
			if !lot.IsReady() {
				return fmt.Errorf("%w: lote %s está %s, se requiere %s", domain.ErrInvalidTransition, in.LotID, lot.Status, entity.LotStatusReady)
			}
			if liquid.GreaterThan(lot.VolumeRemaining) {
				return fmt.Errorf("%w: lote %s tiene %s L, se requieren %s L", domain.ErrInsufficientLiquid, in.LotID, lot.VolumeRemaining, liquid)
			}

			packaging := entity.PackagingFor(lot.Variant, in.Size)
			var shortages []Shortage
			for _, materialID := range packaging {
				mat, err := materialRepo.GetForUpdate(ctx, materialID)
				if err != nil {
					return err
				}
				if mat.Quantity.LessThan(units) {
					shortages = append(shortages, Shortage{MaterialID: materialID, Available: mat.Quantity, Required: units})
				}
			}
			if len(shortages) > 0 && !in.Force {
				return &InsufficientPackagingError{LotID: in.LotID, Shortages: shortages}
			}

			now := s.now()
			if len(shortages) > 0 {
				s.log.Warn().Str("tx_id", txID).Str("lot_id", in.LotID).
					Int("shortages", len(shortages)).Int("qty", in.Quantity).
					Msg("embotellado forzado con envases insuficientes")
				s.ledger.Record(ctx, movRepo, &entity.Movement{
					TransactionID: txID,
					LotID:         in.LotID,
					Category:      entity.MovementCategoryProduction,
					Action:        "ENVASE_FORCADO",
					Level:         entity.LevelWarning,
					Quantity:      units,
					Description:   fmt.Sprintf("embotellado forzado: %d materiales de envase quedan negativos", len(shortages)),
					CreatedAt:     now,
				})
			}

			reason := ledger.Reason{
				Category:    entity.MovementCategoryProduction,
				Action:      "ENVASE",
				Description: fmt.Sprintf("lote %s: %d botellas de %d ml", in.LotID, in.Quantity, in.Size),
				LotID:       in.LotID,
			}
			for _, materialID := range packaging {
				if _, err := s.ledger.AdjustInTx(ctx, materialRepo, movRepo, txID, materialID, units.Neg(), reason); err != nil {
					return err
				}
			}

			lot.ApplyBottling(in.Size, in.Quantity, now)
			if err := lot.Validate(); err != nil {
				return err
			}
			if err := lotRepo.Save(ctx, lot); err != nil {
				return err
			}

			finished, err := s.ledger.AdjustInTx(ctx, materialRepo, movRepo, txID, entity.FinishedStock(lot.Variant, in.Size), units, reason)
			if err != nil {
				return err
			}
			s.ledger.Record(ctx, movRepo, &entity.Movement{
				TransactionID: txID,
				LotID:         in.LotID,
				Category:      entity.MovementCategoryLot,
				Action:        "LOTE_ENVASADO",
				Quantity:      liquid.Neg(),
				Description:   fmt.Sprintf("restan %s L en el tanque", lot.VolumeRemaining),
				CreatedAt:     now,
			})

			res = BottleResult{
				TransactionID:  txID,
				Lot:            lot,
				LiquidLiters:   liquid,
				FinishedStock:  finished,
				Forced:         len(shortages) > 0,
				ForcedShortage: shortages,
			}
			return nil
		})
	})
	if err != nil {
		return BottleResult{}, err
	}
	if res.Lot.IsDepleted() {
		s.log.Info().Str("lot_id", in.LotID).Msg("lote agotado")
	}
	return res, nil
}
