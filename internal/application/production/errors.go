package production

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Licoreria-api/internal/domain"
)

// Shortage faltante de un material de envase.
type Shortage struct {
	MaterialID string          `json:"material_id"`
	Available  decimal.Decimal `json:"available"`
	Required   decimal.Decimal `json:"required"`
}

// InsufficientPackagingError faltantes de envase; se puede reintentar con Force.
// errors.Is(err, domain.ErrInsufficientPackaging) es true.
type InsufficientPackagingError struct {
	LotID     string
	Shortages []Shortage
}

func (e *InsufficientPackagingError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s (disponible %s, requerido %s)", s.MaterialID, s.Available, s.Required))
	}
	return fmt.Sprintf("%s para lote %s: %s", domain.ErrInsufficientPackaging, e.LotID, strings.Join(parts, ", "))
}

func (e *InsufficientPackagingError) Unwrap() error { return domain.ErrInsufficientPackaging }
