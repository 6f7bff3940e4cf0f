// Package memory implementa los puertos de persistencia en memoria.
// Las transacciones trabajan sobre una copia del estado que solo se publica en el commit.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Licoreria-api/internal/application/ledger"
	"github.com/jhoicas/Licoreria-api/internal/domain/entity"
)

var _ ledger.TxRunner = (*Store)(nil)

type state struct {
	materials map[string]*entity.Material
	lots      map[string]*entity.Lot
	movements []*entity.Movement
	expenses  []*entity.FixedExpense
}

func newState() *state {
	return &state{
		materials: map[string]*entity.Material{},
		lots:      map[string]*entity.Lot{},
	}
}

func (s *state) clone() *state {
	c := &state{
		materials: make(map[string]*entity.Material, len(s.materials)),
		lots:      make(map[string]*entity.Lot, len(s.lots)),
		movements: append([]*entity.Movement(nil), s.movements...),
		expenses:  append([]*entity.FixedExpense(nil), s.expenses...),
	}
	for id, m := range s.materials {
		c.materials[id] = cloneMaterial(m)
	}
	for id, l := range s.lots {
		c.lots[id] = l.Clone()
	}
	return c
}

func cloneMaterial(m *entity.Material) *entity.Material {
	c := *m
	if m.UnitCost != nil {
		cost := *m.UnitCost
		c.UnitCost = &cost
	}
	return &c
}

// Store almacenamiento en memoria. Serializa las transacciones con un único mutex.
type Store struct {
	mu          sync.RWMutex
	st          *state
	movementErr error
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Seed inserta o reemplaza materiales.
func (s *Store) Seed(materials ...*entity.Material) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range materials {
		s.st.materials[m.ID] = cloneMaterial(m)
	}
}

// SeedExpenses agrega gastos fijos.
func (s *Store) SeedExpenses(expenses ...*entity.FixedExpense) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range expenses {
		c := *e
		s.st.expenses = append(s.st.expenses, &c)
	}
}

// FailMovementWrites hace que Append devuelva err (nil restablece).
func (s *Store) FailMovementWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movementErr = err
}

// Run ejecuta fn sobre una copia del estado; la publica solo si fn termina sin error
// y el contexto sigue vigente.
func (s *Store) Run(ctx context.Context, fn ledger.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	tx := &txView{st: work, movementErr: s.movementErr}
	if err := fn(ctx, &MaterialRepo{v: tx}, &LotRepo{v: tx}, &MovementRepo{v: tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Materials repositorio fuera de transacción.
func (s *Store) Materials() *MaterialRepo { return &MaterialRepo{v: &storeView{s: s}} }

// Lots repositorio fuera de transacción.
func (s *Store) Lots() *LotRepo { return &LotRepo{v: &storeView{s: s}} }

// Movements repositorio fuera de transacción.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{v: &storeView{s: s}} }

// FixedExpenses repositorio de gastos fijos.
func (s *Store) FixedExpenses() *FixedExpenseRepo { return &FixedExpenseRepo{s: s} }

// view abstrae el acceso al estado: dentro de una tx ya se tiene el lock.
type view interface {
	read(fn func(st *state))
	write(fn func(st *state, movementErr error))
}

type txView struct {
	st          *state
	movementErr error
}

func (v *txView) read(fn func(st *state))                     { fn(v.st) }
func (v *txView) write(fn func(st *state, movementErr error)) { fn(v.st, v.movementErr) }

type storeView struct{ s *Store }

func (v *storeView) read(fn func(st *state)) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	fn(v.s.st)
}

func (v *storeView) write(fn func(st *state, movementErr error)) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	fn(v.s.st, v.s.movementErr)
}
