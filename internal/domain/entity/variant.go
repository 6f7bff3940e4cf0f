package entity

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Licoreria-api/internal/domain"
)

// Variant identifica la receta del licor. Conjunto cerrado.
type Variant string

const (
	VariantA Variant = "citrus-A"
	VariantB Variant = "citrus-B"
)

// Variants devuelve las variantes soportadas en orden estable.
func Variants() []Variant {
	return []Variant{VariantA, VariantB}
}

// Valid indica si la variante pertenece al conjunto cerrado.
func (v Variant) Valid() bool {
	return v == VariantA || v == VariantB
}

// suffix es el sufijo usado en los códigos de material (A, B).
func (v Variant) suffix() string {
	switch v {
	case VariantA:
		return "A"
	case VariantB:
		return "B"
	}
	return ""
}

// ParseVariant valida una variante recibida como texto.
func ParseVariant(s string) (Variant, error) {
	v := Variant(s)
	if !v.Valid() {
		return "", fmt.Errorf("%w: variante desconocida %q", domain.ErrInvalidInput, s)
	}
	return v, nil
}

// BottleSize tamaño de botella en mililitros.
type BottleSize int

const (
	Bottle750 BottleSize = 750
	Bottle375 BottleSize = 375
)

// BottleSizes devuelve los tamaños soportados.
func BottleSizes() []BottleSize {
	return []BottleSize{Bottle750, Bottle375}
}

// Valid indica si el tamaño es uno de los soportados.
func (s BottleSize) Valid() bool {
	return s == Bottle750 || s == Bottle375
}

// Liters devuelve el volumen de una botella en litros.
func (s BottleSize) Liters() decimal.Decimal {
	return decimal.NewFromInt(int64(s)).Div(decimal.NewFromInt(1000))
}
