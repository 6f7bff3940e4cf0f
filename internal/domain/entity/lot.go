package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Estados del lote.
const (
	LotStatusInfusing = "EM_INFUSAO" // en infusión, recibiendo producción
	LotStatusReady    = "PRONTO"     // aprobado para embotellar
)

// ProductionRun una corrida de producción fusionada en el lote.
type ProductionRun struct {
	At     time.Time       `json:"at"`
	Volume decimal.Decimal `json:"volume"`
}

// Lot representa un lote de licor desde la infusión hasta el embotellado.
// VolumeTotal = Σ History.Volume; VolumeRemaining = VolumeTotal − litros embotellados.
type Lot struct {
	ID               string
	Variant          Variant
	VolumeTotal      decimal.Decimal
	VolumeRemaining  decimal.Decimal
	Status           string
	StartedAt        time.Time
	EstimatedReadyAt time.Time
	ApprovedAt       *time.Time
	History          []ProductionRun
	Bottled          map[BottleSize]int
	Version          int // control optimista; 0 = aún no persistido
	UpdatedAt        time.Time
}

// NewLot crea un lote en infusión con su primera corrida.
func NewLot(id string, v Variant, volume decimal.Decimal, now time.Time, readyIn time.Duration) *Lot {
	return &Lot{
		ID:               id,
		Variant:          v,
		VolumeTotal:      volume,
		VolumeRemaining:  volume,
		Status:           LotStatusInfusing,
		StartedAt:        now,
		EstimatedReadyAt: now.Add(readyIn),
		History:          []ProductionRun{{At: now, Volume: volume}},
		Bottled:          map[BottleSize]int{},
		UpdatedAt:        now,
	}
}

// Merge agrega una corrida al lote existente: suma volúmenes, reinicia la
// fecha estimada y vuelve el estado a EM_INFUSAO.
func (l *Lot) Merge(volume decimal.Decimal, now time.Time, readyIn time.Duration) {
	l.History = append(l.History, ProductionRun{At: now, Volume: volume})
	l.VolumeTotal = l.VolumeTotal.Add(volume)
	l.VolumeRemaining = l.VolumeRemaining.Add(volume)
	l.EstimatedReadyAt = now.Add(readyIn)
	l.Status = LotStatusInfusing
	l.ApprovedAt = nil
	l.UpdatedAt = now
}

// CanApprove indica si la transición EM_INFUSAO → PRONTO es válida.
func (l *Lot) CanApprove() bool {
	return l.Status == LotStatusInfusing
}

// Approve aplica EM_INFUSAO → PRONTO.
func (l *Lot) Approve(now time.Time) {
	l.Status = LotStatusReady
	l.ApprovedAt = &now
	l.UpdatedAt = now
}

// IsReady indica si el lote puede embotellarse.
func (l *Lot) IsReady() bool {
	return l.Status == LotStatusReady
}

// ApplyBottling descuenta el líquido y suma las unidades embotelladas.
// El caller ya verificó que liquid ≤ VolumeRemaining.
func (l *Lot) ApplyBottling(size BottleSize, qty int, now time.Time) {
	if l.Bottled == nil {
		l.Bottled = map[BottleSize]int{}
	}
	l.Bottled[size] += qty
	l.VolumeRemaining = l.VolumeRemaining.Sub(size.Liters().Mul(decimal.NewFromInt(int64(qty))))
	l.UpdatedAt = now
}

// BottledLiters litros ya convertidos en botellas.
func (l *Lot) BottledLiters() decimal.Decimal {
	total := decimal.Zero
	for size, qty := range l.Bottled {
		total = total.Add(size.Liters().Mul(decimal.NewFromInt(int64(qty))))
	}
	return total
}

// IsDepleted indica que el tanque quedó vacío.
func (l *Lot) IsDepleted() bool {
	return l.VolumeRemaining.IsZero()
}

// Validate verifica los invariantes de volumen del lote.
func (l *Lot) Validate() error {
	sum := decimal.Zero
	for _, run := range l.History {
		sum = sum.Add(run.Volume)
	}
	if !sum.Equal(l.VolumeTotal) {
		return fmt.Errorf("lote %s: volumen total %s no coincide con historial %s", l.ID, l.VolumeTotal, sum)
	}
	expected := l.VolumeTotal.Sub(l.BottledLiters())
	if !expected.Equal(l.VolumeRemaining) {
		return fmt.Errorf("lote %s: volumen restante %s, esperado %s", l.ID, l.VolumeRemaining, expected)
	}
	if l.VolumeRemaining.IsNegative() {
		return fmt.Errorf("lote %s: volumen restante negativo", l.ID)
	}
	return nil
}

// Clone copia profunda (historial y mapa de embotellado).
func (l *Lot) Clone() *Lot {
	if l == nil {
		return nil
	}
	c := *l
	c.History = append([]ProductionRun(nil), l.History...)
	c.Bottled = make(map[BottleSize]int, len(l.Bottled))
	for k, v := range l.Bottled {
		c.Bottled[k] = v
	}
	if l.ApprovedAt != nil {
		t := *l.ApprovedAt
		c.ApprovedAt = &t
	}
	return &c
}
