package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Licoreria-api/internal/domain"
	"github.com/jhoicas/Licoreria-api/internal/domain/entity"
	"github.com/jhoicas/Licoreria-api/internal/domain/repository"
)

var (
	_ repository.MaterialRepository     = (*MaterialRepo)(nil)
	_ repository.LotRepository          = (*LotRepo)(nil)
	_ repository.MovementRepository     = (*MovementRepo)(nil)
	_ repository.FixedExpenseRepository = (*FixedExpenseRepo)(nil)
)

// MaterialRepo materiales en memoria.
type MaterialRepo struct{ v view }

// GetByID obtiene una copia del material.
func (r *MaterialRepo) GetByID(_ context.Context, id string) (*entity.Material, error) {
	var out *entity.Material
	r.v.read(func(st *state) {
		if m, ok := st.materials[id]; ok {
			out = cloneMaterial(m)
		}
	})
	if out == nil {
		return nil, domain.ErrMaterialNotFound
	}
	return out, nil
}

// GetForUpdate en memoria equivale a GetByID: la transacción ya es exclusiva.
func (r *MaterialRepo) GetForUpdate(ctx context.Context, id string) (*entity.Material, error) {
	return r.GetByID(ctx, id)
}

// AdjustQuantity suma delta y devuelve el nuevo saldo.
func (r *MaterialRepo) AdjustQuantity(_ context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error) {
	var (
		balance decimal.Decimal
		found   bool
	)
	r.v.write(func(st *state, _ error) {
		m, ok := st.materials[id]
		if !ok {
			return
		}
		found = true
		m.Quantity = m.Quantity.Add(delta)
		m.UpdatedAt = time.Now()
		balance = m.Quantity
	})
	if !found {
		return decimal.Zero, domain.ErrMaterialNotFound
	}
	return balance, nil
}

// UpdateUnitCost fija el costo unitario.
func (r *MaterialRepo) UpdateUnitCost(_ context.Context, id string, cost decimal.Decimal) error {
	found := false
	r.v.write(func(st *state, _ error) {
		if m, ok := st.materials[id]; ok {
			found = true
			c := cost
			m.UnitCost = &c
			m.UpdatedAt = time.Now()
		}
	})
	if !found {
		return domain.ErrMaterialNotFound
	}
	return nil
}

// List materiales ordenados por id; category vacío = todos.
func (r *MaterialRepo) List(_ context.Context, category string) ([]*entity.Material, error) {
	var list []*entity.Material
	r.v.read(func(st *state) {
		for _, m := range st.materials {
			if category == "" || m.Category == category {
				list = append(list, cloneMaterial(m))
			}
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// LotRepo lotes en memoria.
type LotRepo struct{ v view }

// GetByID obtiene una copia del lote.
func (r *LotRepo) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	var out *entity.Lot
	r.v.read(func(st *state) {
		if l, ok := st.lots[id]; ok {
			out = l.Clone()
		}
	})
	if out == nil {
		return nil, domain.ErrLotNotFound
	}
	return out, nil
}

// GetForUpdate equivale a GetByID dentro de la transacción exclusiva.
func (r *LotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	return r.GetByID(ctx, id)
}

// Save inserta o actualiza con control de versión.
func (r *LotRepo) Save(_ context.Context, lot *entity.Lot) error {
	var err error
	r.v.write(func(st *state, _ error) {
		current, exists := st.lots[lot.ID]
		switch {
		case lot.Version == 0 && exists:
			err = fmt.Errorf("%w: lote %s ya existe", domain.ErrConflict, lot.ID)
			return
		case lot.Version > 0 && (!exists || current.Version != lot.Version):
			err = fmt.Errorf("%w: versión de lote %s desactualizada", domain.ErrConflict, lot.ID)
			return
		}
		stored := lot.Clone()
		stored.Version = lot.Version + 1
		st.lots[lot.ID] = stored
	})
	if err != nil {
		return err
	}
	lot.Version++
	return nil
}

// Delete elimina el lote.
func (r *LotRepo) Delete(_ context.Context, id string) error {
	found := false
	r.v.write(func(st *state, _ error) {
		if _, ok := st.lots[id]; ok {
			found = true
			delete(st.lots, id)
		}
	})
	if !found {
		return domain.ErrLotNotFound
	}
	return nil
}

// List lotes ordenados por fecha de inicio; status vacío = todos.
func (r *LotRepo) List(_ context.Context, status string) ([]*entity.Lot, error) {
	var list []*entity.Lot
	r.v.read(func(st *state) {
		for _, l := range st.lots {
			if status == "" || l.Status == status {
				list = append(list, l.Clone())
			}
		}
	})
	sort.Slice(list, func(i, j int) bool {
		if list[i].StartedAt.Equal(list[j].StartedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].StartedAt.Before(list[j].StartedAt)
	})
	return list, nil
}

// MovementRepo auditoría en memoria (append-only).
type MovementRepo struct{ v view }

// Append agrega un movimiento.
func (r *MovementRepo) Append(_ context.Context, movement *entity.Movement) error {
	var err error
	r.v.write(func(st *state, movementErr error) {
		if movementErr != nil {
			err = movementErr
			return
		}
		if movement.ID == "" {
			movement.ID = uuid.New().String()
		}
		c := *movement
		st.movements = append(st.movements, &c)
	})
	return err
}

// ListByMaterial movimientos del material, más recientes primero.
func (r *MovementRepo) ListByMaterial(_ context.Context, materialID string, limit int) ([]*entity.Movement, error) {
	return r.list(func(m *entity.Movement) bool { return m.MaterialID == materialID }, limit), nil
}

// ListByLot movimientos del lote, más recientes primero.
func (r *MovementRepo) ListByLot(_ context.Context, lotID string, limit int) ([]*entity.Movement, error) {
	return r.list(func(m *entity.Movement) bool { return m.LotID == lotID }, limit), nil
}

// All todos los movimientos en orden de inserción (tests y diagnóstico).
func (r *MovementRepo) All() []*entity.Movement {
	return r.list(func(*entity.Movement) bool { return true }, 0)
}

func (r *MovementRepo) list(match func(*entity.Movement) bool, limit int) []*entity.Movement {
	var list []*entity.Movement
	r.v.read(func(st *state) {
		for i := len(st.movements) - 1; i >= 0; i-- {
			if m := st.movements[i]; match(m) {
				c := *m
				list = append(list, &c)
			}
		}
	})
	if limit <= 0 {
		// orden de inserción
		for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
			list[i], list[j] = list[j], list[i]
		}
		return list
	}
	if len(list) > limit {
		list = list[:limit]
	}
	return list
}

// FixedExpenseRepo gastos fijos en memoria.
type FixedExpenseRepo struct{ s *Store }

// List devuelve copias de los gastos fijos.
func (r *FixedExpenseRepo) List(_ context.Context) ([]*entity.FixedExpense, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.FixedExpense, 0, len(r.s.st.expenses))
	for _, e := range r.s.st.expenses {
		c := *e
		list = append(list, &c)
	}
	return list, nil
}
