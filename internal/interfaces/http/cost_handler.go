package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Licoreria-api/internal/application/costing"
	"github.com/jhoicas/Licoreria-api/internal/application/dto"
	"github.com/jhoicas/Licoreria-api/internal/domain"
	"github.com/jhoicas/Licoreria-api/internal/domain/entity"
)

// CostHandler costo por botella.
type CostHandler struct {
	svc      *costing.Service
	validate *validator.Validate
}

// NewCostHandler construye el handler.
func NewCostHandler(svc *costing.Service, v *validator.Validate) *CostHandler {
	return &CostHandler{svc: svc, validate: v}
}

// UnitCost godoc
// @Summary      Costo por botella
// @Description  Envase + líquido + prorrateo de gastos fijos sobre las ventas mensuales simuladas.
// @Tags         costs
// @Produce      json
// @Param        variant                  query  string  true   "citrus-A o citrus-B"
// @Param        size_ml                  query  int     true   "375 o 750"
// @Param        simulated_monthly_sales  query  string  false  "Botellas vendidas por mes (decimal)"
// @Success      200  {object}  costing.Breakdown
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/costs/unit [get]
func (h *CostHandler) UnitCost(c *fiber.Ctx) error {
	var q dto.UnitCostQuery
	if ok, err := bindQuery(c, h.validate, &q); !ok {
		return err
	}
	variant, err := entity.ParseVariant(q.Variant)
	if err != nil {
		return writeError(c, err)
	}
	sales := decimal.Zero
	if q.SimulatedMonthlySales != "" {
		parsed, err := decimal.NewFromString(q.SimulatedMonthlySales)
		if err != nil {
			return writeError(c, domain.ErrInvalidInput)
		}
		sales = parsed
	}
	b, err := h.svc.UnitCost(c.UserContext(), variant, entity.BottleSize(q.Size), sales)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(b)
}
