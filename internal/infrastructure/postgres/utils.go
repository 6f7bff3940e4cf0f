package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Licoreria-api/internal/domain"
)

// Querier operaciones comunes de pool y tx. Begin sobre una tx abre un savepoint.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isConcurrencyFailure serialización, deadlock o lock no disponible: reintentar es seguro.
func isConcurrencyFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
	}
	return false
}

// isConnectionError la base no está accesible (clase 08, timeout o error de red).
func isConnectionError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "08")
	}
	var netErr net.Error
	return pgconn.Timeout(err) || errors.As(err, &netErr)
}

// wrap anota el error con la operación y lo traduce a los errores de dominio reintentables.
func wrap(op string, err error) error {
	switch {
	case isUniqueViolation(err), isConcurrencyFailure(err):
		return fmt.Errorf("%s: %w", op, errors.Join(domain.ErrConflict, err))
	case isConnectionError(err):
		return fmt.Errorf("%s: %w", op, errors.Join(domain.ErrStoreUnavailable, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}
