package production_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Licoreria-api/internal/application/ledger"
	"github.com/jhoicas/Licoreria-api/internal/application/production"
	"github.com/jhoicas/Licoreria-api/internal/domain"
	"github.com/jhoicas/Licoreria-api/internal/domain/entity"
	"github.com/jhoicas/Licoreria-api/internal/domain/recipe"
	"github.com/jhoicas/Licoreria-api/internal/infrastructure/memory"
	"github.com/jhoicas/Licoreria-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store *memory.Store
	svc   *production.Service
}

// newFixture siembra el catálogo con saldos holgados de insumos y envases.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.Seed(entity.CatalogMaterials()...)
	f := &fixture{store: store}
	f.set(t, entity.MaterialPureAlcohol, "200")
	f.set(t, entity.MaterialSugar, "100")
	for _, v := range entity.Variants() {
		f.set(t, entity.BaseFiltered(v), "100")
		for _, size := range entity.BottleSizes() {
			for _, id := range entity.PackagingFor(v, size) {
				f.set(t, id, "100")
			}
		}
	}

	log := logger.Nop()
	l := ledger.New(store, store.Materials(), store.Movements(), log, nil).WithClock(func() time.Time { return t0 })
	f.svc = production.NewService(store, store.Lots(), store.Movements(), l, memory.NewKeyedMutex(), log, nil, production.Config{}).
		WithClock(func() time.Time { return t0 })
	return f
}

// set fija el saldo del material directamente (fuera del libro).
func (f *fixture) set(t *testing.T, id, qty string) {
	t.Helper()
	mat, err := f.store.Materials().GetByID(context.Background(), id)
	require.NoError(t, err)
	_, err = f.store.Materials().AdjustQuantity(context.Background(), id, d(qty).Sub(mat.Quantity))
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	mat, err := f.store.Materials().GetByID(context.Background(), id)
	require.NoError(t, err)
	return mat.Quantity
}

// snapshot saldos de todos los materiales.
func (f *fixture) snapshot(t *testing.T) map[string]decimal.Decimal {
	t.Helper()
	list, err := f.store.Materials().List(context.Background(), "")
	require.NoError(t, err)
	out := make(map[string]decimal.Decimal, len(list))
	for _, m := range list {
		out[m.ID] = m.Quantity
	}
	return out
}

func assertSameBalances(t *testing.T, before, after map[string]decimal.Decimal) {
	t.Helper()
	require.Len(t, after, len(before))
	for id, qty := range before {
		assert.True(t, qty.Equal(after[id]), "%s: antes %s, después %s", id, qty, after[id])
	}
}

// readyLot crea y aprueba un lote.
func (f *fixture) readyLot(t *testing.T, id string, v entity.Variant, liters string) *entity.Lot {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.CreateOrExtendLot(ctx, production.LotInput{LotID: id, Variant: v, VolumeLiters: d(liters)})
	require.NoError(t, err)
	lot, err := f.svc.ApproveLot(ctx, id)
	require.NoError(t, err)
	return lot
}

func (f *fixture) warnings() []*entity.Movement {
	var out []*entity.Movement
	for _, m := range f.store.Movements().All() {
		if m.IsWarning() {
			out = append(out, m)
		}
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Etapas de maceración y filtrado
// ──────────────────────────────────────────────────────────────────────────────

func TestMacerate_ConvierteAlcoholEnBase(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Macerate(context.Background(), production.MacerateInput{Variant: entity.VariantA, AlcoholLiters: d("20")})
	require.NoError(t, err)
	assert.True(t, res.AlcoholBalance.Equal(d("180")))
	assert.True(t, res.BaseBalance.Equal(d("20")))
	assert.True(t, f.balance(t, entity.BaseWithPeel(entity.VariantB)).IsZero())
}

func TestMacerate_EntradaInvalida(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Macerate(context.Background(), production.MacerateInput{Variant: entity.VariantA, AlcoholLiters: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.svc.Macerate(context.Background(), production.MacerateInput{Variant: "otra", AlcoholLiters: d("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFilter_ConMerma(t *testing.T) {
	f := newFixture(t)
	f.set(t, entity.BaseWithPeel(entity.VariantB), "30")

	res, err := f.svc.Filter(context.Background(), production.FilterInput{
		Variant: entity.VariantB, WithdrawnLiters: d("30"), YieldLiters: d("27.5"),
	})
	require.NoError(t, err)
	assert.True(t, res.LossLiters.Equal(d("2.5")))
	assert.True(t, res.BaseWithPeel.IsZero())
	assert.True(t, res.BaseFiltered.Equal(d("127.5")))
	assert.Empty(t, f.warnings())
}

func TestFilter_GananciaRequiereConfirmacion(t *testing.T) {
	f := newFixture(t)
	f.set(t, entity.BaseWithPeel(entity.VariantA), "10")
	before := f.snapshot(t)

	_, err := f.svc.Filter(context.Background(), production.FilterInput{
		Variant: entity.VariantA, WithdrawnLiters: d("10"), YieldLiters: d("11"),
	})
	assert.ErrorIs(t, err, domain.ErrYieldExceedsWithdrawal)
	assertSameBalances(t, before, f.snapshot(t))

	res, err := f.svc.Filter(context.Background(), production.FilterInput{
		Variant: entity.VariantA, WithdrawnLiters: d("10"), YieldLiters: d("11"), ConfirmGain: true,
	})
	require.NoError(t, err)
	assert.True(t, res.GainAcknowledge)
	assert.True(t, res.LossLiters.Equal(d("-1")))

	warnings := f.warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, "FILTRAGEM_GANHO", warnings[0].Action)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lotes: creación, fusión, aprobación y eliminación
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateOrExtendLot_CreaYConsumeReceta(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.CreateOrExtendLot(context.Background(), production.LotInput{
		LotID: "L-100", Variant: entity.VariantA, VolumeLiters: d("50"),
	})
	require.NoError(t, err)
	assert.False(t, res.Merged)
	assert.Equal(t, entity.LotStatusInfusing, res.Lot.Status)
	assert.Equal(t, t0.Add(production.DefaultReadyIn), res.Lot.EstimatedReadyAt)
	assert.True(t, res.Lot.VolumeRemaining.Equal(d("50")))

	batch, err := recipe.ComputeBatch(d("50"), entity.VariantA)
	require.NoError(t, err)
	assert.True(t, f.balance(t, entity.MaterialSugar).Equal(d("100").Sub(batch.SugarKg)))
	assert.True(t, f.balance(t, entity.BaseFiltered(entity.VariantA)).Equal(d("85.415")))
}

func TestCreateOrExtendLot_FusionaMismaVariante(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.readyLot(t, "L-200", entity.VariantB, "30")

	res, err := f.svc.CreateOrExtendLot(ctx, production.LotInput{LotID: "L-200", Variant: entity.VariantB, VolumeLiters: d("20")})
	require.NoError(t, err)
	assert.True(t, res.Merged)

	lot, err := f.svc.GetLot(ctx, "L-200")
	require.NoError(t, err)
	assert.True(t, lot.VolumeTotal.Equal(d("50")))
	assert.True(t, lot.VolumeRemaining.Equal(d("50")))
	assert.Len(t, lot.History, 2)
	assert.Equal(t, entity.LotStatusInfusing, lot.Status, "una nueva corrida vuelve el lote a infusión")

	lots, err := f.svc.ListLots(ctx, "")
	require.NoError(t, err)
	assert.Len(t, lots, 1)
}

func TestCreateOrExtendLot_VarianteDistintaNoTocaElLote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.CreateOrExtendLot(ctx, production.LotInput{LotID: "L-300", Variant: entity.VariantA, VolumeLiters: d("10")})
	require.NoError(t, err)
	original, err := f.svc.GetLot(ctx, "L-300")
	require.NoError(t, err)
	before := f.snapshot(t)

	_, err = f.svc.CreateOrExtendLot(ctx, production.LotInput{LotID: "L-300", Variant: entity.VariantB, VolumeLiters: d("10")})
	assert.ErrorIs(t, err, domain.ErrVariantMismatch)

	_, err = f.svc.CreateOrExtendLot(ctx, production.LotInput{LotID: "L-300", Variant: entity.VariantB, VolumeLiters: d("10"), CreateOnly: true})
	assert.ErrorIs(t, err, domain.ErrDuplicateLotID)

	after, err := f.svc.GetLot(ctx, "L-300")
	require.NoError(t, err)
	assert.Equal(t, original, after)
	assertSameBalances(t, before, f.snapshot(t))
}

func TestCreateOrExtendLot_SinMaterialNoAplicaNada(t *testing.T) {
	store := memory.NewStore()
	// falta ACUCAR: el lote y la base no deben cambiar
	store.Seed(&entity.Material{ID: entity.BaseFiltered(entity.VariantA), Category: entity.CategoryIntermediate, Quantity: d("40")})
	log := logger.Nop()
	l := ledger.New(store, store.Materials(), store.Movements(), log, nil)
	svc := production.NewService(store, store.Lots(), store.Movements(), l, memory.NewKeyedMutex(), log, nil, production.Config{})

	_, err := svc.CreateOrExtendLot(context.Background(), production.LotInput{LotID: "L-X", Variant: entity.VariantA, VolumeLiters: d("10")})
	assert.ErrorIs(t, err, domain.ErrMaterialNotFound)

	_, err = svc.GetLot(context.Background(), "L-X")
	assert.ErrorIs(t, err, domain.ErrLotNotFound)
	mat, err := store.Materials().GetByID(context.Background(), entity.BaseFiltered(entity.VariantA))
	require.NoError(t, err)
	assert.True(t, mat.Quantity.Equal(d("40")))
	assert.Empty(t, store.Movements().All())
}

func TestApproveLot_Transiciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ApproveLot(ctx, "NO-EXISTE")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.ErrorIs(t, err, domain.ErrLotNotFound)
	assert.Empty(t, f.store.Movements().All())

	lot := f.readyLot(t, "L-400", entity.VariantA, "5")
	assert.Equal(t, entity.LotStatusReady, lot.Status)
	require.NotNil(t, lot.ApprovedAt)

	_, err = f.svc.ApproveLot(ctx, "L-400")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestDeleteLot_LoteNuevoRestauraSaldos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := f.snapshot(t)

	_, err := f.svc.CreateOrExtendLot(ctx, production.LotInput{LotID: "L-500", Variant: entity.VariantA, VolumeLiters: d("50")})
	require.NoError(t, err)
	_, err = f.svc.CreateOrExtendLot(ctx, production.LotInput{LotID: "L-500", Variant: entity.VariantA, VolumeLiters: d("7.3")})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteLot(ctx, "L-500"))

	assertSameBalances(t, before, f.snapshot(t))
	_, err = f.svc.GetLot(ctx, "L-500")
	assert.ErrorIs(t, err, domain.ErrLotNotFound)

	assert.ErrorIs(t, f.svc.DeleteLot(ctx, "L-500"), domain.ErrLotNotFound)
}

func TestDeleteLot_TrasEmbotelladoRevierteEnvasesYTerminado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := f.snapshot(t)

	f.readyLot(t, "L-600", entity.VariantB, "10")
	_, err := f.svc.Bottle(ctx, production.BottleInput{LotID: "L-600", Size: entity.Bottle750, Quantity: 4})
	require.NoError(t, err)
	_, err = f.svc.Bottle(ctx, production.BottleInput{LotID: "L-600", Size: entity.Bottle375, Quantity: 6})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteLot(ctx, "L-600"))
	assertSameBalances(t, before, f.snapshot(t))

	movs, err := f.svc.LotMovements(ctx, "L-600", 1)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, "LOTE_EXCLUIDO", movs[0].Action)
}

// ──────────────────────────────────────────────────────────────────────────────
// Embotellado
// ──────────────────────────────────────────────────────────────────────────────

func TestBottle_DescuentaLiquidoYSumaTerminado(t *testing.T) {
	f := newFixture(t)
	f.readyLot(t, "L-700", entity.VariantA, "50")

	res, err := f.svc.Bottle(context.Background(), production.BottleInput{LotID: "L-700", Size: entity.Bottle750, Quantity: 10})
	require.NoError(t, err)
	assert.False(t, res.Forced)
	assert.True(t, res.LiquidLiters.Equal(d("7.5")))
	assert.True(t, res.Lot.VolumeRemaining.Equal(d("42.5")))
	assert.Equal(t, 10, res.Lot.Bottled[entity.Bottle750])
	assert.True(t, res.FinishedStock.Equal(d("10")))
	assert.True(t, f.balance(t, entity.FinishedStock(entity.VariantA, entity.Bottle750)).Equal(d("10")))

	for _, id := range entity.PackagingFor(entity.VariantA, entity.Bottle750) {
		assert.True(t, f.balance(t, id).Equal(d("90")), id)
	}
	// la etiqueta de 375 no se toca
	assert.True(t, f.balance(t, entity.Label(entity.VariantA, entity.Bottle375)).Equal(d("100")))
}

func TestBottle_LiquidoInsuficienteNuncaSeFuerza(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.readyLot(t, "L-800", entity.VariantA, "1.5")

	_, err := f.svc.Bottle(ctx, production.BottleInput{LotID: "L-800", Size: entity.Bottle750, Quantity: 2})
	require.NoError(t, err)
	before := f.snapshot(t)

	for _, force := range []bool{false, true} {
		_, err = f.svc.Bottle(ctx, production.BottleInput{LotID: "L-800", Size: entity.Bottle750, Quantity: 1, Force: force})
		assert.ErrorIs(t, err, domain.ErrInsufficientLiquid, "force=%v", force)
	}
	assertSameBalances(t, before, f.snapshot(t))

	lot, err := f.svc.GetLot(ctx, "L-800")
	require.NoError(t, err)
	assert.True(t, lot.IsDepleted())
}

func TestBottle_RequiereLotePronto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.CreateOrExtendLot(ctx, production.LotInput{LotID: "L-900", Variant: entity.VariantA, VolumeLiters: d("5")})
	require.NoError(t, err)

	_, err = f.svc.Bottle(ctx, production.BottleInput{LotID: "L-900", Size: entity.Bottle750, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.svc.Bottle(ctx, production.BottleInput{LotID: "NO-EXISTE", Size: entity.Bottle750, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrLotNotFound)

	_, err = f.svc.Bottle(ctx, production.BottleInput{LotID: "L-900", Size: entity.BottleSize(700), Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBottle_EnvaseInsuficienteSinForce(t *testing.T) {
	f := newFixture(t)
	f.readyLot(t, "L-1000", entity.VariantB, "20")
	f.set(t, entity.MaterialCap, "3")
	f.set(t, entity.Label(entity.VariantB, entity.Bottle750), "1")
	before := f.snapshot(t)

	_, err := f.svc.Bottle(context.Background(), production.BottleInput{LotID: "L-1000", Size: entity.Bottle750, Quantity: 5})
	require.ErrorIs(t, err, domain.ErrInsufficientPackaging)

	var pkgErr *production.InsufficientPackagingError
	require.True(t, errors.As(err, &pkgErr))
	require.Len(t, pkgErr.Shortages, 2)
	assert.Equal(t, entity.MaterialCap, pkgErr.Shortages[0].MaterialID)
	assert.Equal(t, entity.Label(entity.VariantB, entity.Bottle750), pkgErr.Shortages[1].MaterialID)
	assertSameBalances(t, before, f.snapshot(t))
}

func TestBottle_EnvaseForzadoDejaWarning(t *testing.T) {
	f := newFixture(t)
	f.readyLot(t, "L-1100", entity.VariantB, "20")
	f.set(t, entity.MaterialCap, "3")

	res, err := f.svc.Bottle(context.Background(), production.BottleInput{LotID: "L-1100", Size: entity.Bottle750, Quantity: 5, Force: true})
	require.NoError(t, err)
	assert.True(t, res.Forced)
	require.Len(t, res.ForcedShortage, 1)
	assert.True(t, f.balance(t, entity.MaterialCap).Equal(d("-2")))

	actions := map[string]bool{}
	for _, m := range f.warnings() {
		actions[m.Action] = true
	}
	assert.True(t, actions["ENVASE_FORCADO"])
	assert.True(t, actions["ESTOQUE_NEGATIVO"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia y cancelación
// ──────────────────────────────────────────────────────────────────────────────

func TestBottle_ConcurrenteNoPierdeActualizaciones(t *testing.T) {
	f := newFixture(t)
	f.readyLot(t, "L-1200", entity.VariantA, "7.5") // 10 botellas de 750

	var ok, short atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Bottle(context.Background(), production.BottleInput{LotID: "L-1200", Size: entity.Bottle750, Quantity: 1})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrInsufficientLiquid):
				short.Add(1)
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), ok.Load())
	assert.Equal(t, int32(15), short.Load())
	lot, err := f.svc.GetLot(context.Background(), "L-1200")
	require.NoError(t, err)
	assert.True(t, lot.VolumeRemaining.IsZero())
	assert.Equal(t, 10, lot.Bottled[entity.Bottle750])
	assert.True(t, f.balance(t, entity.FinishedStock(entity.VariantA, entity.Bottle750)).Equal(d("10")))
}

func TestCreateOrExtendLot_ConcurrenteSumaTodo(t *testing.T) {
	f := newFixture(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateOrExtendLot(context.Background(), production.LotInput{LotID: "L-1300", Variant: entity.VariantA, VolumeLiters: d("2")})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	lot, err := f.svc.GetLot(context.Background(), "L-1300")
	require.NoError(t, err)
	assert.True(t, lot.VolumeTotal.Equal(d("16")))
	assert.Len(t, lot.History, 8)
	require.NoError(t, lot.Validate())
}

func TestContextoCanceladoNoAplicaNada(t *testing.T) {
	f := newFixture(t)
	before := f.snapshot(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.CreateOrExtendLot(ctx, production.LotInput{LotID: "L-1400", Variant: entity.VariantA, VolumeLiters: d("10")})
	assert.ErrorIs(t, err, context.Canceled)
	assertSameBalances(t, before, f.snapshot(t))
}
