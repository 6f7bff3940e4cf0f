package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Licoreria-api/internal/domain"
	"github.com/jhoicas/Licoreria-api/internal/domain/entity"
	"github.com/jhoicas/Licoreria-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

const lotColumns = `id, variant, volume_total, volume_remaining, status, started_at,
	estimated_ready_at, approved_at, history, bottled, version, updated_at`

// LotRepo implementación de LotRepository sobre PostgreSQL.
// History y Bottled se guardan como JSONB; Version es el control optimista.
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

func scanLot(row pgx.Row) (*entity.Lot, error) {
	var (
		l                entity.Lot
		variant          string
		history, bottled []byte
	)
	if err := row.Scan(&l.ID, &variant, &l.VolumeTotal, &l.VolumeRemaining, &l.Status, &l.StartedAt,
		&l.EstimatedReadyAt, &l.ApprovedAt, &history, &bottled, &l.Version, &l.UpdatedAt); err != nil {
		return nil, err
	}
	l.Variant = entity.Variant(variant)
	if err := json.Unmarshal(history, &l.History); err != nil {
		return nil, fmt.Errorf("lote %s: history: %w", l.ID, err)
	}
	l.Bottled = map[entity.BottleSize]int{}
	if len(bottled) > 0 {
		if err := json.Unmarshal(bottled, &l.Bottled); err != nil {
			return nil, fmt.Errorf("lote %s: bottled: %w", l.ID, err)
		}
	}
	return &l, nil
}

func (r *LotRepo) get(ctx context.Context, op, query, id string) (*entity.Lot, error) {
	l, err := scanLot(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLotNotFound
		}
		return nil, wrap(op, err)
	}
	return l, nil
}

// GetByID obtiene un lote por id.
func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	return r.get(ctx, "get lot", `SELECT `+lotColumns+` FROM lots WHERE id = $1`, id)
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
func (r *LotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	return r.get(ctx, "get lot for update", `SELECT `+lotColumns+` FROM lots WHERE id = $1 FOR UPDATE`, id)
}

// Save inserta (Version 0) o actualiza si la versión coincide.
func (r *LotRepo) Save(ctx context.Context, lot *entity.Lot) error {
	history, err := json.Marshal(lot.History)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	bottled, err := json.Marshal(lot.Bottled)
	if err != nil {
		return fmt.Errorf("marshal bottled: %w", err)
	}

	if lot.Version == 0 {
		_, err := r.q.Exec(ctx, `
			INSERT INTO lots (id, variant, volume_total, volume_remaining, status, started_at,
				estimated_ready_at, approved_at, history, bottled, version, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1, $11)`,
			lot.ID, string(lot.Variant), lot.VolumeTotal, lot.VolumeRemaining, lot.Status, lot.StartedAt,
			lot.EstimatedReadyAt, lot.ApprovedAt, history, bottled, lot.UpdatedAt)
		if err != nil {
			return wrap("insert lot", err)
		}
		lot.Version = 1
		return nil
	}

	tag, err := r.q.Exec(ctx, `
		UPDATE lots SET volume_total = $2, volume_remaining = $3, status = $4,
			estimated_ready_at = $5, approved_at = $6, history = $7, bottled = $8,
			version = version + 1, updated_at = $9
		WHERE id = $1 AND version = $10`,
		lot.ID, lot.VolumeTotal, lot.VolumeRemaining, lot.Status,
		lot.EstimatedReadyAt, lot.ApprovedAt, history, bottled, lot.UpdatedAt, lot.Version)
	if err != nil {
		return wrap("update lot", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: versión de lote %s desactualizada", domain.ErrConflict, lot.ID)
	}
	lot.Version++
	return nil
}

// Delete elimina el lote.
func (r *LotRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM lots WHERE id = $1`, id)
	if err != nil {
		return wrap("delete lot", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLotNotFound
	}
	return nil
}

// List lotes por fecha de inicio; status vacío = todos.
func (r *LotRepo) List(ctx context.Context, status string) ([]*entity.Lot, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+lotColumns+` FROM lots
		WHERE ($1 = '' OR status = $1)
		ORDER BY started_at, id`, status)
	if err != nil {
		return nil, wrap("list lots", err)
	}
	defer rows.Close()
	var list []*entity.Lot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, wrap("scan lot", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}
