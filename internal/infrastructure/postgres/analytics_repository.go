package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/tienda-pos/internal/domain/entity"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para dashboard y reportes.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// GetSalesMetrics agrega transacciones, ingresos y ganancia en [start, end].
func (r *AnalyticsRepo) GetSalesMetrics(ctx context.Context, start, end time.Time) (repository.SalesMetrics, error) {
	const query = `
	SELECT
	    COUNT(*),
	    COALESCE(SUM(total_amount), 0),
	    COALESCE(SUM(profit), 0)
	FROM sales
	WHERE created_at BETWEEN $1 AND $2`

	var m repository.SalesMetrics
	if err := r.q.QueryRow(ctx, query, start, end).Scan(&m.Transactions, &m.Revenue, &m.Profit); err != nil {
		return m, fmt.Errorf("analytics.GetSalesMetrics: %w", err)
	}
	return m, nil
}

// GetAllTimeMetrics agrega todas las ventas.
func (r *AnalyticsRepo) GetAllTimeMetrics(ctx context.Context) (repository.SalesMetrics, error) {
	const query = `SELECT COUNT(*), COALESCE(SUM(total_amount), 0), COALESCE(SUM(profit), 0) FROM sales`

	var m repository.SalesMetrics
	if err := r.q.QueryRow(ctx, query).Scan(&m.Transactions, &m.Revenue, &m.Profit); err != nil {
		return m, fmt.Errorf("analytics.GetAllTimeMetrics: %w", err)
	}
	return m, nil
}

// GetStockLevels productos ordenados por categoría y nombre.
func (r *AnalyticsRepo) GetStockLevels(ctx context.Context) ([]*entity.Product, error) {
	list, err := queryProducts(ctx, r.q, `SELECT `+productColumns+` FROM products ORDER BY category, name, id`)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetStockLevels: %w", err)
	}
	return list, nil
}
