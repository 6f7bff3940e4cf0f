package production

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Licoreria-api/internal/application/ledger"
	"github.com/jhoicas/Licoreria-api/internal/domain"
	"github.com/jhoicas/Licoreria-api/internal/domain/entity"
	"github.com/jhoicas/Licoreria-api/internal/domain/recipe"
	"github.com/jhoicas/Licoreria-api/internal/domain/repository"
)

// LotInput producción de volumeLiters para el lote LotID.
// CreateOnly pide semántica de creación: un id existente con otra variante
// devuelve domain.ErrDuplicateLotID en vez de domain.ErrVariantMismatch.
type LotInput struct {
	LotID        string
	Variant      entity.Variant
	VolumeLiters decimal.Decimal
	CreateOnly   bool
}

// LotResult lote resultante y receta consumida.
type LotResult struct {
	TransactionID string       `json:"transaction_id"`
	Lot           *entity.Lot  `json:"lot"`
	Batch         recipe.Batch `json:"batch"`
	Merged        bool         `json:"merged"`
}

// CreateOrExtendLot crea el lote o fusiona una nueva corrida en él, y consume
// azúcar y base filtrada según la receta, todo en una transacción.
func (s *Service) CreateOrExtendLot(ctx context.Context, in LotInput) (res LotResult, err error) {
	if in.LotID == "" {
		return LotResult{}, domain.ErrInvalidInput
	}
	batch, err := recipe.ComputeBatch(in.VolumeLiters, in.Variant)
	if err != nil {
		return LotResult{}, err
	}
	txID := uuid.New().String()
	defer func() { s.finish("create_or_extend_lot", txID, err) }()

	err = s.withLot(ctx, in.LotID, func() error {
		return s.txRunner.Run(ctx, func(
			ctx context.Context,
			materialRepo repository.MaterialRepository,
			lotRepo repository.LotRepository,
			movRepo repository.MovementRepository,
		) error {
			now := s.now()
			lot, err := lotRepo.GetForUpdate(ctx, in.LotID)
			merged := false
			switch {
			case errors.Is(err, domain.ErrLotNotFound):
				lot = entity.NewLot(in.LotID, in.Variant, in.VolumeLiters, now, s.readyIn)
			case err != nil:
				return err
			case lot.Variant != in.Variant:
				if in.CreateOnly {
					return fmt.Errorf("%w: lote %s es %s", domain.ErrDuplicateLotID, in.LotID, lot.Variant)
				}
				return fmt.Errorf("%w: lote %s es %s, recibido %s", domain.ErrVariantMismatch, in.LotID, lot.Variant, in.Variant)
			default:
				lot.Merge(in.VolumeLiters, now, s.readyIn)
				merged = true
			}
			if err := lot.Validate(); err != nil {
				return err
			}
			if err := lotRepo.Save(ctx, lot); err != nil {
				return err
			}

			reason := ledger.Reason{
				Category:    entity.MovementCategoryProduction,
				Action:      "PRODUCAO_LOTE",
				Description: fmt.Sprintf("lote %s: %s L de %s", in.LotID, in.VolumeLiters, in.Variant),
				LotID:       in.LotID,
			}
			if _, err := s.ledger.AdjustInTx(ctx, materialRepo, movRepo, txID, entity.MaterialSugar, batch.SugarKg.Neg(), reason); err != nil {
				return err
			}
			if _, err := s.ledger.AdjustInTx(ctx, materialRepo, movRepo, txID, entity.BaseFiltered(in.Variant), batch.AlcoholLiters.Neg(), reason); err != nil {
				return err
			}

			action := "LOTE_CRIADO"
			if merged {
				action = "LOTE_AMPLIADO"
			}
			s.ledger.Record(ctx, movRepo, &entity.Movement{
				TransactionID: txID,
				LotID:         in.LotID,
				Category:      entity.MovementCategoryLot,
				Action:        action,
				Quantity:      in.VolumeLiters,
				Description:   fmt.Sprintf("volumen total %s L, listo estimado %s", lot.VolumeTotal, lot.EstimatedReadyAt.Format("2006-01-02")),
				CreatedAt:     now,
			})
			res = LotResult{TransactionID: txID, Lot: lot, Batch: batch, Merged: merged}
			return nil
		})
	})
	if err != nil {
		return LotResult{}, err
	}
	return res, nil
}

// ApproveLot aplica EM_INFUSAO → PRONTO. Un lote inexistente tampoco admite la
// transición: el error cumple errors.Is con ErrInvalidTransition y ErrLotNotFound.
func (s *Service) ApproveLot(ctx context.Context, lotID string) (lot *entity.Lot, err error) {
	if lotID == "" {
		return nil, domain.ErrInvalidInput
	}
	txID := uuid.New().String()
	defer func() { s.finish("approve_lot", txID, err) }()

	err = s.withLot(ctx, lotID, func() error {
		return s.txRunner.Run(ctx, func(
			ctx context.Context,
			_ repository.MaterialRepository,
			lotRepo repository.LotRepository,
			movRepo repository.MovementRepository,
		) error {
			current, err := lotRepo.GetForUpdate(ctx, lotID)
			if errors.Is(err, domain.ErrLotNotFound) {
				return fmt.Errorf("%w: %w", domain.ErrInvalidTransition, err)
			}
			if err != nil {
				return err
			}
			if !current.CanApprove() {
				return fmt.Errorf("%w: lote %s ya está %s", domain.ErrInvalidTransition, lotID, current.Status)
			}
			now := s.now()
			current.Approve(now)
			if err := lotRepo.Save(ctx, current); err != nil {
				return err
			}
			s.ledger.Record(ctx, movRepo, &entity.Movement{
				TransactionID: txID,
				LotID:         lotID,
				Category:      entity.MovementCategoryLot,
				Action:        "LOTE_APROVADO",
				Description:   fmt.Sprintf("%s → %s", entity.LotStatusInfusing, entity.LotStatusReady),
				CreatedAt:     now,
			})
			lot = current
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return lot, nil
}

// DeleteLot revierte el consumo neto del lote (azúcar y base por cada corrida;
// envases y stock terminado por lo embotellado) y elimina el registro.
// Las ventas posteriores no se revierten: el stock terminado puede quedar negativo
// y el libro lo marca con WARNING.
func (s *Service) DeleteLot(ctx context.Context, lotID string) (err error) {
	if lotID == "" {
		return domain.ErrInvalidInput
	}
	txID := uuid.New().String()
	defer func() { s.finish("delete_lot", txID, err) }()

	return s.withLot(ctx, lotID, func() error {
		return s.txRunner.Run(ctx, func(
			ctx context.Context,
			materialRepo repository.MaterialRepository,
			lotRepo repository.LotRepository,
			movRepo repository.MovementRepository,
		) error {
			lot, err := lotRepo.GetForUpdate(ctx, lotID)
			if err != nil {
				return err
			}

			sugar, alcohol := decimal.Zero, decimal.Zero
			for _, run := range lot.History {
				batch, err := recipe.ComputeBatch(run.Volume, lot.Variant)
				if err != nil {
					return fmt.Errorf("lote %s: corrida inválida en historial: %w", lotID, err)
				}
				sugar = sugar.Add(batch.SugarKg)
				alcohol = alcohol.Add(batch.AlcoholLiters)
			}
			production := ledger.Reason{
				Category:    entity.MovementCategoryProduction,
				Action:      "PRODUCAO_LOTE",
				Description: fmt.Sprintf("lote %s eliminado (%d corridas)", lotID, len(lot.History)),
				LotID:       lotID,
			}
			if _, err := s.ledger.ReverseInTx(ctx, materialRepo, movRepo, txID, entity.MaterialSugar, sugar.Neg(), production); err != nil {
				return err
			}
			if _, err := s.ledger.ReverseInTx(ctx, materialRepo, movRepo, txID, entity.BaseFiltered(lot.Variant), alcohol.Neg(), production); err != nil {
				return err
			}

			for _, size := range entity.BottleSizes() {
				qty := lot.Bottled[size]
				if qty <= 0 {
					continue
				}
				units := decimal.NewFromInt(int64(qty))
				bottling := ledger.Reason{
					Category:    entity.MovementCategoryProduction,
					Action:      "ENVASE",
					Description: fmt.Sprintf("lote %s eliminado: %d botellas de %d ml", lotID, qty, size),
					LotID:       lotID,
				}
				for _, materialID := range entity.PackagingFor(lot.Variant, size) {
					if _, err := s.ledger.ReverseInTx(ctx, materialRepo, movRepo, txID, materialID, units.Neg(), bottling); err != nil {
						return err
					}
				}
				if _, err := s.ledger.ReverseInTx(ctx, materialRepo, movRepo, txID, entity.FinishedStock(lot.Variant, size), units, bottling); err != nil {
					return err
				}
			}

			if err := lotRepo.Delete(ctx, lotID); err != nil {
				return err
			}
			s.ledger.Record(ctx, movRepo, &entity.Movement{
				TransactionID: txID,
				LotID:         lotID,
				Category:      entity.MovementCategoryLot,
				Action:        "LOTE_EXCLUIDO",
				Quantity:      lot.VolumeTotal.Neg(),
				Description:   fmt.Sprintf("lote %s (%s) eliminado con %s L restantes", lotID, lot.Variant, lot.VolumeRemaining),
			})
			return nil
		})
	})
}

// GetLot devuelve el lote.
func (s *Service) GetLot(ctx context.Context, lotID string) (*entity.Lot, error) {
	if lotID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.lotRepo.GetByID(ctx, lotID)
}

// ListLots lista lotes; status vacío = todos.
func (s *Service) ListLots(ctx context.Context, status string) ([]*entity.Lot, error) {
	if status != "" && status != entity.LotStatusInfusing && status != entity.LotStatusReady {
		return nil, domain.ErrInvalidInput
	}
	return s.lotRepo.List(ctx, status)
}

// LotMovements auditoría del lote, más reciente primero.
func (s *Service) LotMovements(ctx context.Context, lotID string, limit int) ([]*entity.Movement, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.movementRepo.ListByLot(ctx, lotID, limit)
}
