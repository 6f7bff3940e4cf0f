package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Licoreria-api/internal/application/dto"
	"github.com/jhoicas/Licoreria-api/internal/application/ledger"
	"github.com/jhoicas/Licoreria-api/internal/domain"
	"github.com/jhoicas/Licoreria-api/internal/domain/entity"
)

// MaterialHandler saldos, ajustes y auditoría de materiales.
type MaterialHandler struct {
	ledger   *ledger.Ledger
	validate *validator.Validate
}

// NewMaterialHandler construye el handler.
func NewMaterialHandler(l *ledger.Ledger, v *validator.Validate) *MaterialHandler {
	return &MaterialHandler{ledger: l, validate: v}
}

// List godoc
// @Summary      Listar materiales con saldo
// @Tags         materials
// @Produce      json
// @Param        category  query  string  false  "INGREDIENT, PACKAGING, INTERMEDIATE o FINISHED"
// @Success      200  {array}   dto.MaterialDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/materials [get]
func (h *MaterialHandler) List(c *fiber.Ctx) error {
	category := c.Query("category")
	switch category {
	case "", entity.CategoryIngredient, entity.CategoryPackaging, entity.CategoryIntermediate, entity.CategoryFinished:
	default:
		return writeError(c, domain.ErrInvalidInput)
	}
	list, err := h.ledger.Materials(c.UserContext(), category)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MaterialsFromEntities(list))
}

// GetByID godoc
// @Summary      Saldo de un material
// @Tags         materials
// @Produce      json
// @Param        id   path      string  true  "Código del material"
// @Success      200  {object}  dto.MaterialDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/materials/{id} [get]
func (h *MaterialHandler) GetByID(c *fiber.Ctx) error {
	m, err := h.ledger.Balance(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MaterialFromEntity(m))
}

// Adjust godoc
// @Summary      Ajuste manual de saldo
// @Description  Aplica delta con signo. Un saldo negativo se acepta y queda como WARNING en la auditoría.
// @Tags         materials
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "Código del material"
// @Param        body  body  dto.AdjustMaterialRequest  true  "delta, action, description"
// @Success      200   {object}  dto.AdjustResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/materials/{id}/adjust [post]
func (h *MaterialHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustMaterialRequest
	if ok, err := bindJSON(c, h.validate, &in); !ok {
		return err
	}
	id := c.Params("id")
	balance, err := h.ledger.Adjust(c.UserContext(), id, in.Delta, ledger.Reason{
		Category:    entity.MovementCategoryStock,
		Action:      in.Action,
		Description: in.Description,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.AdjustResponse{MaterialID: id, Balance: balance, Negative: balance.IsNegative()})
}

// Receive godoc
// @Summary      Entrada de compra
// @Description  Suma stock y recalcula el costo promedio ponderado del material.
// @Tags         materials
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "Código del material"
// @Param        body  body  dto.ReceiveMaterialRequest  true  "quantity, unit_cost"
// @Success      200   {object}  dto.MaterialDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/materials/{id}/receive [post]
func (h *MaterialHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveMaterialRequest
	if ok, err := bindJSON(c, h.validate, &in); !ok {
		return err
	}
	m, err := h.ledger.Receive(c.UserContext(), ledger.ReceiveInput{
		MaterialID:  c.Params("id"),
		Quantity:    in.Quantity,
		UnitCost:    in.UnitCost,
		Description: in.Description,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MaterialFromEntity(m))
}

// Movements godoc
// @Summary      Auditoría del material
// @Tags         materials
// @Produce      json
// @Param        id     path   string  true   "Código del material"
// @Param        limit  query  int     false  "Máximo de movimientos (1-500, por defecto 100)"
// @Success      200  {array}   dto.MovementDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/materials/{id}/movements [get]
func (h *MaterialHandler) Movements(c *fiber.Ctx) error {
	var q dto.LimitQuery
	if ok, err := bindQuery(c, h.validate, &q); !ok {
		return err
	}
	q.DefaultLimit()
	list, err := h.ledger.History(c.UserContext(), c.Params("id"), q.Limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MovementsFromEntities(list))
}
