// Package analytics contiene los casos de uso de lectura: dashboard del día y reportes.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/tienda-pos/internal/application/billing"
	"github.com/jhoicas/tienda-pos/internal/application/dto"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
)

// DashboardUseCase genera el resumen del día en curso.
//
// Fuente de datos: AnalyticsRepository (agregados) y SaleRepository (detalle del día).
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	saleRepo      repository.SaleRepository
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository, saleRepo repository.SaleRepository) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, saleRepo: saleRepo, now: time.Now}
}

// GetStats devuelve transacciones, ingresos y ganancia de hoy.
func (uc *DashboardUseCase) GetStats(ctx context.Context) (*dto.DashboardStats, error) {
	start, end := dayRange(uc.now())
	m, err := uc.analyticsRepo.GetSalesMetrics(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("dashboard: métricas de hoy: %w", err)
	}
	return &dto.DashboardStats{
		DailyTransactions: m.Transactions,
		DailyRevenue:      m.Revenue.Round(2),
		DailyProfit:       m.Profit.Round(2),
	}, nil
}

// TodayTransactions devuelve las ventas de hoy, más recientes primero, con sus líneas.
func (uc *DashboardUseCase) TodayTransactions(ctx context.Context) ([]dto.SaleResponse, error) {
	start, end := dayRange(uc.now())
	sales, err := uc.saleRepo.ListBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("dashboard: ventas de hoy: %w", err)
	}
	out := make([]dto.SaleResponse, 0, len(sales))
	for _, s := range sales {
		out = append(out, *billing.ToSaleResponse(s))
	}
	return out, nil
}

// dayRange hoy: 00:00:00.000 – 23:59:59.999 en la zona horaria de now.
func dayRange(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.Add(24*time.Hour - time.Nanosecond)
}
