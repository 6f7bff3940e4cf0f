package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Licoreria-api/internal/application/dto"
	"github.com/jhoicas/Licoreria-api/internal/application/production"
	"github.com/jhoicas/Licoreria-api/internal/domain/entity"
)

// LotHandler ciclo de vida del lote: producción, aprobación, embotellado y eliminación.
type LotHandler struct {
	svc      *production.Service
	validate *validator.Validate
}

// NewLotHandler construye el handler.
func NewLotHandler(svc *production.Service, v *validator.Validate) *LotHandler {
	return &LotHandler{svc: svc, validate: v}
}

// CreateOrExtend godoc
// @Summary      Crear o ampliar lote
// @Description  Un lot_id existente de la misma variante recibe una nueva corrida (vuelve a EM_INFUSAO).
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLotRequest  true  "lot_id, variant, volume_liters, create_only"
// @Success      201   {object}  dto.LotOperationResponse
// @Success      200   {object}  dto.LotOperationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots [post]
func (h *LotHandler) CreateOrExtend(c *fiber.Ctx) error {
	var in dto.CreateLotRequest
	if ok, err := bindJSON(c, h.validate, &in); !ok {
		return err
	}
	variant, err := entity.ParseVariant(in.Variant)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.svc.CreateOrExtendLot(c.UserContext(), production.LotInput{
		LotID:        in.LotID,
		Variant:      variant,
		VolumeLiters: in.VolumeLiters,
		CreateOnly:   in.CreateOnly,
	})
	if err != nil {
		return writeError(c, err)
	}
	status := fiber.StatusCreated
	if res.Merged {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(dto.LotOperationResponse{
		TransactionID: res.TransactionID,
		Merged:        res.Merged,
		Lot:           dto.LotFromEntity(res.Lot),
		Batch:         res.Batch,
	})
}

// List godoc
// @Summary      Listar lotes
// @Tags         lots
// @Produce      json
// @Param        status  query  string  false  "EM_INFUSAO o PRONTO"
// @Success      200  {array}   dto.LotDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/lots [get]
func (h *LotHandler) List(c *fiber.Ctx) error {
	list, err := h.svc.ListLots(c.UserContext(), c.Query("status"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.LotsFromEntities(list))
}

// GetByID godoc
// @Summary      Obtener lote
// @Tags         lots
// @Produce      json
// @Param        id   path      string  true  "ID del lote"
// @Success      200  {object}  dto.LotDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id} [get]
func (h *LotHandler) GetByID(c *fiber.Ctx) error {
	lot, err := h.svc.GetLot(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.LotFromEntity(lot))
}

// Approve godoc
// @Summary      Aprobar lote (EM_INFUSAO → PRONTO)
// @Tags         lots
// @Produce      json
// @Param        id   path      string  true  "ID del lote"
// @Success      200  {object}  dto.LotDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/approve [post]
func (h *LotHandler) Approve(c *fiber.Ctx) error {
	lot, err := h.svc.ApproveLot(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.LotFromEntity(lot))
}

// Bottle godoc
// @Summary      Embotellar
// @Description  El líquido es límite duro; con force los envases pueden quedar negativos (WARNING).
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID del lote"
// @Param        body  body  dto.BottleRequest  true  "size_ml, quantity, force"
// @Success      200   {object}  dto.BottleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/bottle [post]
func (h *LotHandler) Bottle(c *fiber.Ctx) error {
	var in dto.BottleRequest
	if ok, err := bindJSON(c, h.validate, &in); !ok {
		return err
	}
	res, err := h.svc.Bottle(c.UserContext(), production.BottleInput{
		LotID:    c.Params("id"),
		Size:     entity.BottleSize(in.Size),
		Quantity: in.Quantity,
		Force:    in.Force,
	})
	if err != nil {
		return writeError(c, err)
	}
	resp := dto.BottleResponse{
		TransactionID: res.TransactionID,
		Lot:           dto.LotFromEntity(res.Lot),
		LiquidLiters:  res.LiquidLiters,
		FinishedStock: res.FinishedStock,
		Forced:        res.Forced,
	}
	if len(res.ForcedShortage) > 0 {
		resp.ForcedShortages = shortagesDTO(res.ForcedShortage)
	}
	return c.JSON(resp)
}

// Delete godoc
// @Summary      Eliminar lote
// @Description  Revierte el consumo de azúcar, base, envases y stock terminado del lote.
// @Tags         lots
// @Param        id   path  string  true  "ID del lote"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id} [delete]
func (h *LotHandler) Delete(c *fiber.Ctx) error {
	if err := h.svc.DeleteLot(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Movements godoc
// @Summary      Auditoría del lote
// @Tags         lots
// @Produce      json
// @Param        id     path   string  true   "ID del lote"
// @Param        limit  query  int     false  "Máximo de movimientos (1-500, por defecto 100)"
// @Success      200  {array}  dto.MovementDTO
// @Router       /api/lots/{id}/movements [get]
func (h *LotHandler) Movements(c *fiber.Ctx) error {
	var q dto.LimitQuery
	if ok, err := bindQuery(c, h.validate, &q); !ok {
		return err
	}
	q.DefaultLimit()
	list, err := h.svc.LotMovements(c.UserContext(), c.Params("id"), q.Limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MovementsFromEntities(list))
}
