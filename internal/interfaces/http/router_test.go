package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Licoreria-api/internal/application/costing"
	"github.com/jhoicas/Licoreria-api/internal/application/dto"
	"github.com/jhoicas/Licoreria-api/internal/application/ledger"
	"github.com/jhoicas/Licoreria-api/internal/application/production"
	"github.com/jhoicas/Licoreria-api/internal/domain/entity"
	"github.com/jhoicas/Licoreria-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Licoreria-api/internal/interfaces/http"
	"github.com/jhoicas/Licoreria-api/internal/observability"
	"github.com/jhoicas/Licoreria-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// buildTestApp arma la API completa sobre el almacenamiento en memoria.
func buildTestApp(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.Seed(entity.CatalogMaterials()...)
	log := logger.Nop()
	metrics := observability.NewMetrics()

	l := ledger.New(store, store.Materials(), store.Movements(), log, metrics)
	svc := production.NewService(store, store.Lots(), store.Movements(), l, memory.NewKeyedMutex(), log, metrics, production.Config{})
	costs := costing.NewService(store.Materials(), store.FixedExpenses(), log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{Ledger: l, Production: svc, Costing: costs, Metrics: metrics, AppName: "test"})
	return app, store
}

func do(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func decodeError(t *testing.T, raw []byte) dto.ErrorResponse {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &e))
	return e
}

func setBalance(t *testing.T, store *memory.Store, id string, qty int64) {
	t.Helper()
	_, err := store.Materials().AdjustQuantity(context.Background(), id, decimal.NewFromInt(qty))
	require.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestHealthYMetrics(t *testing.T) {
	app, _ := buildTestApp(t)

	resp, _ := do(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, raw := do(t, app, http.MethodGet, "/metrics", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "licoreria_http_requests_total")
}

func TestMaterials_AjusteNegativoDevuelveBandera(t *testing.T) {
	app, _ := buildTestApp(t)

	resp, raw := do(t, app, http.MethodPost, "/api/materials/TAMPA/adjust", `{"delta":"-3","action":"QUEBRA"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	var out dto.AdjustResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.True(t, out.Negative)
	assert.True(t, out.Balance.Equal(decimal.NewFromInt(-3)))

	resp, raw = do(t, app, http.MethodGet, "/api/materials/TAMPA/movements?limit=10", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var movs []dto.MovementDTO
	require.NoError(t, json.Unmarshal(raw, &movs))
	require.Len(t, movs, 2)
	assert.Equal(t, entity.LevelWarning, movs[0].Level)
}

func TestMaterials_Validacion(t *testing.T) {
	app, _ := buildTestApp(t)

	resp, raw := do(t, app, http.MethodPost, "/api/materials/TAMPA/adjust", `{"delta":"1"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decodeError(t, raw).Code)

	resp, raw = do(t, app, http.MethodPost, "/api/materials/ACUCAR/receive", `{"quantity":"0","unit_cost":"5"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decodeError(t, raw).Code)

	resp, raw = do(t, app, http.MethodPost, "/api/materials/ACUCAR/receive", `{nope`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", decodeError(t, raw).Code)

	resp, raw = do(t, app, http.MethodGet, "/api/materials/NO_EXISTE", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "MATERIAL_NOT_FOUND", decodeError(t, raw).Code)

	resp, _ = do(t, app, http.MethodGet, "/api/materials?category=OTRA", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLots_CicloCompleto(t *testing.T) {
	app, store := buildTestApp(t)
	setBalance(t, store, entity.MaterialSugar, 50)
	setBalance(t, store, entity.BaseFiltered(entity.VariantA), 50)
	for _, id := range entity.PackagingFor(entity.VariantA, entity.Bottle750) {
		setBalance(t, store, id, 2)
	}

	resp, raw := do(t, app, http.MethodPost, "/api/lots", `{"lot_id":"L-1","variant":"citrus-A","volume_liters":"10"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))

	resp, raw = do(t, app, http.MethodPost, "/api/lots/L-1/bottle", `{"size_ml":750,"quantity":1}`)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_TRANSITION", decodeError(t, raw).Code)

	resp, _ = do(t, app, http.MethodPost, "/api/lots/L-1/approve", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// envases insuficientes: 422 con detalle y sin cambios
	resp, raw = do(t, app, http.MethodPost, "/api/lots/L-1/bottle", `{"size_ml":750,"quantity":3}`)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	e := decodeError(t, raw)
	assert.Equal(t, "INSUFFICIENT_PACKAGING", e.Code)
	assert.Len(t, e.Details, 5)

	resp, raw = do(t, app, http.MethodPost, "/api/lots/L-1/bottle", `{"size_ml":750,"quantity":3,"force":true}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	var bottled dto.BottleResponse
	require.NoError(t, json.Unmarshal(raw, &bottled))
	assert.True(t, bottled.Forced)
	assert.Len(t, bottled.ForcedShortages, 5)
	assert.True(t, bottled.Lot.VolumeRemaining.Equal(decimal.RequireFromString("7.75")))
	assert.Equal(t, 3, bottled.Lot.Bottled[750])

	resp, raw = do(t, app, http.MethodPost, "/api/lots/L-1/bottle", `{"size_ml":750,"quantity":20,"force":true}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_LIQUID", decodeError(t, raw).Code)

	resp, raw = do(t, app, http.MethodPost, "/api/lots", `{"lot_id":"L-1","variant":"citrus-B","volume_liters":"1"}`)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "VARIANT_MISMATCH", decodeError(t, raw).Code)

	resp, raw = do(t, app, http.MethodGet, "/api/lots?status=PRONTO", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var lots []dto.LotDTO
	require.NoError(t, json.Unmarshal(raw, &lots))
	require.Len(t, lots, 1)

	resp, _ = do(t, app, http.MethodDelete, "/api/lots/L-1", "")
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, raw = do(t, app, http.MethodGet, "/api/lots/L-1", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "LOT_NOT_FOUND", decodeError(t, raw).Code)
}

func TestLots_ValidacionDeBody(t *testing.T) {
	app, _ := buildTestApp(t)

	resp, raw := do(t, app, http.MethodPost, "/api/lots", `{"lot_id":"L-2","variant":"citrus-C","volume_liters":"10"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	e := decodeError(t, raw)
	assert.Equal(t, "VALIDATION", e.Code)
	assert.NotEmpty(t, e.Details)

	resp, _ = do(t, app, http.MethodPost, "/api/lots/L-2/bottle", `{"size_ml":700,"quantity":1}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestProduction_FiltradoConGanancia(t *testing.T) {
	app, store := buildTestApp(t)
	setBalance(t, store, entity.BaseWithPeel(entity.VariantB), 10)

	resp, raw := do(t, app, http.MethodPost, "/api/production/filter", `{"variant":"citrus-B","withdrawn_liters":"10","yield_liters":"10.5"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "YIELD_EXCEEDS_WITHDRAWAL", decodeError(t, raw).Code)

	resp, raw = do(t, app, http.MethodPost, "/api/production/filter", `{"variant":"citrus-B","withdrawn_liters":"10","yield_liters":"10.5","confirm_gain":true}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	var out production.FilterResult
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.True(t, out.BaseFiltered.Equal(decimal.RequireFromString("10.5")))
}

func TestCosts_UnitCost(t *testing.T) {
	app, store := buildTestApp(t)
	cost := decimal.NewFromInt(2)
	store.Seed(&entity.Material{ID: entity.MaterialCap, Category: entity.CategoryPackaging, Unit: "un", UnitCost: &cost, UpdatedAt: time.Now()})
	store.SeedExpenses(&entity.FixedExpense{ID: "rent", MonthlyAmount: decimal.NewFromInt(100)})

	resp, raw := do(t, app, http.MethodGet, "/api/costs/unit?variant=citrus-A&size_ml=375&simulated_monthly_sales=50", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	var out struct {
		Packaging  decimal.Decimal `json:"packaging"`
		FixedShare decimal.Decimal `json:"fixed_share"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.True(t, out.Packaging.Equal(cost))
	assert.True(t, out.FixedShare.Equal(cost))

	resp, _ = do(t, app, http.MethodGet, "/api/costs/unit?variant=citrus-A&size_ml=500", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLots_AprobarLoteInexistente(t *testing.T) {
	app, _ := buildTestApp(t)

	resp, raw := do(t, app, http.MethodPost, "/api/lots/NO-EXISTE/approve", "")
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode, string(raw))
	e := decodeError(t, raw)
	assert.Equal(t, "LOT_NOT_FOUND", e.Code)
	assert.Contains(t, e.Message, "transición de estado inválida")
	assert.False(t, e.Retryable)
}
