package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/tienda-pos/internal/application/billing"
	"github.com/jhoicas/tienda-pos/internal/domain"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
)

var _ billing.SaleTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta el registro de una venta dentro de una transacción.
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout string
}

// NewTxRunner construye el runner. lockTimeout vacío deja el valor del servidor.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout string) *TxRunner {
	return &TxRunner{pool: pool, lockTimeout: lockTimeout}
}

// RunSale abre la transacción, limita la espera por filas bloqueadas y ejecuta
// fn con repos atados a la tx. Commit solo si fn no devolvió error.
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.lockTimeout != "" {
		// SET no acepta parámetros: set_config con is_local = true equivale a SET LOCAL.
		if _, err := tx.Exec(ctx, "SELECT set_config('lock_timeout', $1, true)", r.lockTimeout); err != nil {
			return fmt.Errorf("lock_timeout: %w", err)
		}
	}

	if err := fn(NewProductRepository(tx), NewSaleRepository(tx)); err != nil {
		if isLockTimeout(err) {
			return domain.Errorf(domain.ErrConflict, "el stock está siendo actualizado por otra caja; reintente la venta")
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
