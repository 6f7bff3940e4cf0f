package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Licoreria-api/internal/domain"
)

func TestWrap_TraduceCodigosDePostgres(t *testing.T) {
	cases := []struct {
		code string
		want error
	}{
		{"23505", domain.ErrConflict},
		{"40001", domain.ErrConflict},
		{"40P01", domain.ErrConflict},
		{"08006", domain.ErrStoreUnavailable},
	}
	for _, c := range cases {
		err := wrap("op", &pgconn.PgError{Code: c.code})
		assert.ErrorIs(t, err, c.want, c.code)
		assert.True(t, domain.IsRetryable(err), c.code)
	}
}

func TestWrap_ErrorGenericoNoEsReintentable(t *testing.T) {
	err := wrap("op", &pgconn.PgError{Code: "22003"})
	assert.False(t, domain.IsRetryable(err))
	assert.Contains(t, err.Error(), "op:")

	err = wrap("op", errors.New("boom"))
	assert.False(t, domain.IsRetryable(err))
}

func TestWrap_TimeoutEsNoDisponible(t *testing.T) {
	err := wrap("op", context.DeadlineExceeded)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestMigrations_Embebidas(t *testing.T) {
	script, err := migrations.ReadFile("migrations/001_init.sql")
	assert.NoError(t, err)
	assert.Contains(t, string(script), "CREATE TABLE IF NOT EXISTS stock_movements")
}
