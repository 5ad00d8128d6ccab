package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-pos/internal/domain/entity"
)

// SalesMetrics agregados crudos de ventas en un período.
type SalesMetrics struct {
	Transactions int
	Revenue      decimal.Decimal
	Profit       decimal.Decimal
}

// AnalyticsRepository define las consultas de lectura para dashboard y reportes.
// Las implementaciones son read-only (no modifican datos).
type AnalyticsRepository interface {
	// GetSalesMetrics agrega las ventas con created_at en [start, end].
	// Usa COALESCE para devolver cero si no hay ventas en el período.
	GetSalesMetrics(ctx context.Context, start, end time.Time) (SalesMetrics, error)

	// GetAllTimeMetrics agrega todas las ventas registradas.
	GetAllTimeMetrics(ctx context.Context) (SalesMetrics, error)

	// GetStockLevels devuelve los productos ordenados por categoría y nombre.
	GetStockLevels(ctx context.Context) ([]*entity.Product, error)
}
