package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Licoreria-api/internal/application/dto"
	"github.com/jhoicas/Licoreria-api/internal/application/production"
	"github.com/jhoicas/Licoreria-api/internal/domain/entity"
)

// ProductionHandler etapas de maceración y filtrado.
type ProductionHandler struct {
	svc      *production.Service
	validate *validator.Validate
}

// NewProductionHandler construye el handler.
func NewProductionHandler(svc *production.Service, v *validator.Validate) *ProductionHandler {
	return &ProductionHandler{svc: svc, validate: v}
}

// Macerate godoc
// @Summary      Maceración
// @Description  Alcohol puro → base con cáscara, 1:1.
// @Tags         production
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MacerateRequest  true  "variant, alcohol_liters"
// @Success      200   {object}  production.MacerateResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/production/macerate [post]
func (h *ProductionHandler) Macerate(c *fiber.Ctx) error {
	var in dto.MacerateRequest
	if ok, err := bindJSON(c, h.validate, &in); !ok {
		return err
	}
	variant, err := entity.ParseVariant(in.Variant)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.svc.Macerate(c.UserContext(), production.MacerateInput{
		Variant:       variant,
		AlcoholLiters: in.AlcoholLiters,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// Filter godoc
// @Summary      Filtrado
// @Description  Base con cáscara → base filtrada. Un rendimiento mayor al retiro requiere confirm_gain.
// @Tags         production
// @Accept       json
// @Produce      json
// @Param        body  body  dto.FilterRequest  true  "variant, withdrawn_liters, yield_liters, confirm_gain"
// @Success      200   {object}  production.FilterResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/production/filter [post]
func (h *ProductionHandler) Filter(c *fiber.Ctx) error {
	var in dto.FilterRequest
	if ok, err := bindJSON(c, h.validate, &in); !ok {
		return err
	}
	variant, err := entity.ParseVariant(in.Variant)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.svc.Filter(c.UserContext(), production.FilterInput{
		Variant:         variant,
		WithdrawnLiters: in.WithdrawnLiters,
		YieldLiters:     in.YieldLiters,
		ConfirmGain:     in.ConfirmGain,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}
