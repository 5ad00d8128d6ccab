package analytics

import (
	"context"
	"fmt"

	"github.com/jhoicas/tienda-pos/internal/application/dto"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
)

// ReportUseCase reportes históricos y de inventario.
type ReportUseCase struct {
	analyticsRepo repository.AnalyticsRepository
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(analyticsRepo repository.AnalyticsRepository) *ReportUseCase {
	return &ReportUseCase{analyticsRepo: analyticsRepo}
}

// Summary totales de todas las ventas registradas.
func (uc *ReportUseCase) Summary(ctx context.Context) (*dto.ReportSummary, error) {
	m, err := uc.analyticsRepo.GetAllTimeMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("reportes: resumen: %w", err)
	}
	return &dto.ReportSummary{
		TotalRevenue:      m.Revenue.Round(2),
		TotalProfit:       m.Profit.Round(2),
		TotalTransactions: m.Transactions,
	}, nil
}

// Stock niveles actuales de inventario, ordenados por categoría y nombre.
func (uc *ReportUseCase) Stock(ctx context.Context) ([]dto.StockItem, error) {
	products, err := uc.analyticsRepo.GetStockLevels(ctx)
	if err != nil {
		return nil, fmt.Errorf("reportes: stock: %w", err)
	}
	out := make([]dto.StockItem, 0, len(products))
	for _, p := range products {
		out = append(out, dto.StockItem{
			ProductID:     p.ID,
			ProductName:   p.Name,
			Category:      p.Category,
			StockQuantity: p.StockQuantity,
			BuyingPrice:   p.BuyingPrice,
			SellingPrice:  p.SellingPrice,
		})
	}
	return out, nil
}
