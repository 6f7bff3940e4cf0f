package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrInvalidTransition      = errors.New("transición de estado inválida")
	ErrVariantMismatch        = errors.New("la variante no coincide con la del lote")
	ErrDuplicateLotID         = errors.New("el id de lote ya existe con otra variante")
	ErrMaterialNotFound       = errors.New("material no encontrado")
	ErrLotNotFound            = errors.New("lote no encontrado")
	ErrInsufficientLiquid     = errors.New("volumen insuficiente en el tanque")
	ErrInsufficientPackaging  = errors.New("material de envase insuficiente")
	ErrYieldExceedsWithdrawal = errors.New("el rendimiento supera el volumen retirado")
	ErrConflict               = errors.New("conflicto con el estado actual")
	ErrStoreUnavailable       = errors.New("almacenamiento no disponible")
)

// IsRetryable indica si el caller puede reintentar la operación tal cual
// (conflicto de concurrencia o almacenamiento caído). Nada quedó aplicado.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrStoreUnavailable)
}
