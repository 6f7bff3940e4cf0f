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

// MacerateInput alcohol puro que entra en maceración con cáscara.
type MacerateInput struct {
	Variant       entity.Variant
	AlcoholLiters decimal.Decimal
}

// MacerateResult saldos resultantes.
type MacerateResult struct {
	TransactionID  string          `json:"transaction_id"`
	AlcoholBalance decimal.Decimal `json:"alcohol_balance"`
	BaseBalance    decimal.Decimal `json:"base_with_peel_balance"`
}

// Macerate convierte alcohol puro en base con cáscara, 1:1 y sin merma.
func (s *Service) Macerate(ctx context.Context, in MacerateInput) (res MacerateResult, err error) {
	if !in.Variant.Valid() || !in.AlcoholLiters.IsPositive() {
		return MacerateResult{}, domain.ErrInvalidInput
	}
	txID := uuid.New().String()
	defer func() { s.finish("macerate", txID, err) }()

	err = s.txRunner.Run(ctx, func(
		ctx context.Context,
		materialRepo repository.MaterialRepository,
		_ repository.LotRepository,
		movRepo repository.MovementRepository,
	) error {
		reason := ledger.Reason{
			Category:    entity.MovementCategoryProduction,
			Action:      "MACERACAO",
			Description: fmt.Sprintf("maceración %s de %s L", in.Variant, in.AlcoholLiters),
		}
		alcohol, err := s.ledger.AdjustInTx(ctx, materialRepo, movRepo, txID, entity.MaterialPureAlcohol, in.AlcoholLiters.Neg(), reason)
		if err != nil {
			return err
		}
		base, err := s.ledger.AdjustInTx(ctx, materialRepo, movRepo, txID, entity.BaseWithPeel(in.Variant), in.AlcoholLiters, reason)
		if err != nil {
			return err
		}
		res = MacerateResult{TransactionID: txID, AlcoholBalance: alcohol, BaseBalance: base}
		return nil
	})
	if err != nil {
		return MacerateResult{}, err
	}
	return res, nil
}

// FilterInput retiro de base con cáscara y rendimiento de base filtrada.
// ConfirmGain acepta un rendimiento mayor al retiro (queda marcado como WARNING).
type FilterInput struct {
	Variant         entity.Variant
	WithdrawnLiters decimal.Decimal
	YieldLiters     decimal.Decimal
	ConfirmGain     bool
}

// FilterResult saldos resultantes y merma (negativa si hubo ganancia).
type FilterResult struct {
	TransactionID   string          `json:"transaction_id"`
	LossLiters      decimal.Decimal `json:"loss_liters"`
	BaseWithPeel    decimal.Decimal `json:"base_with_peel_balance"`
	BaseFiltered    decimal.Decimal `json:"base_filtered_balance"`
	GainAcknowledge bool            `json:"gain_acknowledged"`
}

// Filter retira la cáscara: descuenta la base con cáscara y suma la base filtrada.
func (s *Service) Filter(ctx context.Context, in FilterInput) (res FilterResult, err error) {
	if !in.Variant.Valid() || !in.WithdrawnLiters.IsPositive() || !in.YieldLiters.IsPositive() {
		return FilterResult{}, domain.ErrInvalidInput
	}
	gain := in.YieldLiters.GreaterThan(in.WithdrawnLiters)
	if gain && !in.ConfirmGain {
		return FilterResult{}, fmt.Errorf("%w: retirado %s L, rendimiento %s L", domain.ErrYieldExceedsWithdrawal, in.WithdrawnLiters, in.YieldLiters)
	}
	txID := uuid.New().String()
	defer func() { s.finish("filter", txID, err) }()

	err = s.txRunner.Run(ctx, func(
		ctx context.Context,
		materialRepo repository.MaterialRepository,
		_ repository.LotRepository,
		movRepo repository.MovementRepository,
	) error {
		reason := ledger.Reason{
			Category:    entity.MovementCategoryProduction,
			Action:      "FILTRAGEM",
			Description: fmt.Sprintf("filtrado %s: retirado %s L, rendimiento %s L", in.Variant, in.WithdrawnLiters, in.YieldLiters),
		}
		peel, err := s.ledger.AdjustInTx(ctx, materialRepo, movRepo, txID, entity.BaseWithPeel(in.Variant), in.WithdrawnLiters.Neg(), reason)
		if err != nil {
			return err
		}
		filtered, err := s.ledger.AdjustInTx(ctx, materialRepo, movRepo, txID, entity.BaseFiltered(in.Variant), in.YieldLiters, reason)
		if err != nil {
			return err
		}
		if gain {
			s.log.Warn().Str("tx_id", txID).Str("variant", string(in.Variant)).
				Str("withdrawn", in.WithdrawnLiters.String()).Str("yield", in.YieldLiters.String()).
				Msg("filtrado con rendimiento mayor al retiro confirmado")
			s.ledger.Record(ctx, movRepo, &entity.Movement{
				TransactionID: txID,
				MaterialID:    entity.BaseFiltered(in.Variant),
				Category:      entity.MovementCategoryProduction,
				Action:        "FILTRAGEM_GANHO",
				Level:         entity.LevelWarning,
				Quantity:      in.YieldLiters.Sub(in.WithdrawnLiters),
				Description:   "rendimiento mayor al volumen retirado confirmado por el operador",
			})
		}
		res = FilterResult{
			TransactionID:   txID,
			LossLiters:      in.WithdrawnLiters.Sub(in.YieldLiters),
			BaseWithPeel:    peel,
			BaseFiltered:    filtered,
			GainAcknowledge: gain,
		}
		return nil
	})
	if err != nil {
		return FilterResult{}, err
	}
	return res, nil
}
