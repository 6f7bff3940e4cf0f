package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Licoreria-api/internal/application/dto"
	"github.com/jhoicas/Licoreria-api/internal/application/production"
	"github.com/jhoicas/Licoreria-api/internal/domain"
)

// errorMapping código HTTP y código de negocio por error de dominio. El orden importa:
// se usa la primera coincidencia de errors.Is.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrLotNotFound, fiber.StatusNotFound, "LOT_NOT_FOUND"},
	{domain.ErrMaterialNotFound, fiber.StatusNotFound, "MATERIAL_NOT_FOUND"},
	{domain.ErrInvalidTransition, fiber.StatusConflict, "INVALID_TRANSITION"},
	{domain.ErrVariantMismatch, fiber.StatusConflict, "VARIANT_MISMATCH"},
	{domain.ErrDuplicateLotID, fiber.StatusConflict, "DUPLICATE_LOT_ID"},
	{domain.ErrInsufficientLiquid, fiber.StatusUnprocessableEntity, "INSUFFICIENT_LIQUID"},
	{domain.ErrInsufficientPackaging, fiber.StatusUnprocessableEntity, "INSUFFICIENT_PACKAGING"},
	{domain.ErrYieldExceedsWithdrawal, fiber.StatusUnprocessableEntity, "YIELD_EXCEEDS_WITHDRAWAL"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrStoreUnavailable, fiber.StatusServiceUnavailable, "STORE_UNAVAILABLE"},
	{context.DeadlineExceeded, fiber.StatusServiceUnavailable, "TIMEOUT"},
}

// writeError traduce un error de los casos de uso a la respuesta HTTP.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMapping {
		if !errors.Is(err, m.err) {
			continue
		}
		resp := dto.ErrorResponse{
			Code:      m.code,
			Message:   err.Error(),
			Retryable: domain.IsRetryable(err) || errors.Is(err, context.DeadlineExceeded),
		}
		var pkgErr *production.InsufficientPackagingError
		if errors.As(err, &pkgErr) {
			resp.Details = shortagesDTO(pkgErr.Shortages)
		}
		return c.Status(m.status).JSON(resp)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func shortagesDTO(list []production.Shortage) []dto.ShortageDTO {
	out := make([]dto.ShortageDTO, 0, len(list))
	for _, s := range list {
		out = append(out, dto.ShortageDTO{MaterialID: s.MaterialID, Available: s.Available, Required: s.Required})
	}
	return out
}
