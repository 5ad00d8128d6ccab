package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Códigos SQLSTATE que el dominio traduce.
const (
	codeForeignKeyViolation = "23503"
	codeLockNotAvailable    = "55P03"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isForeignKeyViolation el DELETE de un producto con ventas choca con sale_items.
func isForeignKeyViolation(err error) bool { return pgCode(err) == codeForeignKeyViolation }

// isLockTimeout otra caja tiene bloqueadas las filas de stock más de lock_timeout.
func isLockTimeout(err error) bool { return pgCode(err) == codeLockNotAvailable }
