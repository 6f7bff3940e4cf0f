package dto

// LimitQuery tamaño de página de los listados de auditoría.
type LimitQuery struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=500"`
}

// DefaultLimit aplica el valor por defecto si Limit es cero.
func (q *LimitQuery) DefaultLimit() {
	if q.Limit <= 0 {
		q.Limit = 100
	}
}

// ErrorResponse cuerpo de error HTTP.
// Retryable indica que la misma petición puede reenviarse: nada quedó aplicado.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// FieldError detalle de validación de un campo.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}
