package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-pos/internal/domain/entity"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo persistencia de ventas y líneas (sales / sale_items).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el repositorio. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta la cabecera y luego cada línea. Debe llamarse dentro de una transacción.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now().UTC()
	}
	err := r.q.QueryRow(ctx,
		`INSERT INTO sales (total_amount, profit, created_at) VALUES ($1, $2, $3) RETURNING id`,
		sale.TotalAmount, sale.Profit, sale.CreatedAt,
	).Scan(&sale.ID)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	const itemQuery = `
		INSERT INTO sale_items (sale_id, product_id, product_name, quantity, selling_price, buying_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	for i := range sale.Items {
		it := &sale.Items[i]
		it.SaleID = sale.ID
		if err := r.q.QueryRow(ctx, itemQuery,
			it.SaleID, it.ProductID, it.ProductName, it.Quantity, it.SellingPrice, it.BuyingPrice,
		).Scan(&it.ID); err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la venta con sus líneas.
func (r *SaleRepo) GetByID(ctx context.Context, id int64) (*entity.Sale, error) {
	var s entity.Sale
	err := r.q.QueryRow(ctx,
		`SELECT id, total_amount, profit, created_at FROM sales WHERE id = $1`, id,
	).Scan(&s.ID, &s.TotalAmount, &s.Profit, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	sales := []*entity.Sale{&s}
	if err := r.loadItems(ctx, sales); err != nil {
		return nil, err
	}
	return &s, nil
}

// List últimas ventas, más recientes primero.
func (r *SaleRepo) List(ctx context.Context, limit int) ([]*entity.Sale, error) {
	return r.querySales(ctx,
		`SELECT id, total_amount, profit, created_at FROM sales ORDER BY created_at DESC, id DESC LIMIT $1`,
		limit,
	)
}

// ListBetween ventas con created_at en [start, end].
func (r *SaleRepo) ListBetween(ctx context.Context, start, end time.Time) ([]*entity.Sale, error) {
	return r.querySales(ctx,
		`SELECT id, total_amount, profit, created_at FROM sales
		 WHERE created_at BETWEEN $1 AND $2
		 ORDER BY created_at DESC, id DESC`,
		start, end,
	)
}

func (r *SaleRepo) querySales(ctx context.Context, query string, args ...any) ([]*entity.Sale, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	var sales []*entity.Sale
	for rows.Next() {
		var s entity.Sale
		if err := rows.Scan(&s.ID, &s.TotalAmount, &s.Profit, &s.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, &s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, sales); err != nil {
		return nil, err
	}
	return sales, nil
}

// loadItems carga las líneas de todas las ventas en una sola consulta.
func (r *SaleRepo) loadItems(ctx context.Context, sales []*entity.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	ids := make([]int64, len(sales))
	byID := make(map[int64]*entity.Sale, len(sales))
	for i, s := range sales {
		ids[i] = s.ID
		byID[s.ID] = s
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, product_id, product_name, quantity, selling_price, buying_price
		FROM sale_items
		WHERE sale_id = ANY($1)
		ORDER BY sale_id, id`, ids)
	if err != nil {
		return fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductName, &it.Quantity, &it.SellingPrice, &it.BuyingPrice); err != nil {
			return fmt.Errorf("scan sale item: %w", err)
		}
		if s, ok := byID[it.SaleID]; ok {
			s.Items = append(s.Items, it)
		}
	}
	return rows.Err()
}
