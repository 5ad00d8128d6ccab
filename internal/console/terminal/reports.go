package terminal

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/jhoicas/tienda-pos/internal/application/dto"
)

// valuation métricas del stock a precio de compra y de venta.
type valuation struct {
	cost    decimal.Decimal
	revenue decimal.Decimal
}

func (v valuation) profit() decimal.Decimal { return v.revenue.Sub(v.cost) }

func valuate(items []dto.StockItem) valuation {
	v := valuation{cost: decimal.Zero, revenue: decimal.Zero}
	for _, it := range items {
		qty := decimal.NewFromInt(int64(it.StockQuantity))
		v.cost = v.cost.Add(it.BuyingPrice.Mul(qty))
		v.revenue = v.revenue.Add(it.SellingPrice.Mul(qty))
	}
	return v
}

func (c *Console) cmdReports(ctx context.Context, args []string) error {
	items, err := c.backend.StockReport(ctx)
	if err != nil {
		return fmt.Errorf("reporte de stock: %w", err)
	}
	summary, err := c.backend.ReportSummary(ctx)
	if err != nil {
		return fmt.Errorf("resumen de ventas: %w", err)
	}

	v := valuate(items)
	c.printf("Valorización del stock\n  Costo total: %s\n  Ingreso esperado: %s\n  Ganancia esperada: %s\n",
		c.money(v.cost), c.money(v.revenue), c.money(v.profit()))
	c.printf("Histórico de ventas\n  Transacciones: %d\n  Ingresos: %s\n  Ganancia: %s\n",
		summary.TotalTransactions, c.money(summary.TotalRevenue), c.money(summary.TotalProfit))

	term := strings.TrimSpace(strings.Join(args, " "))
	if term != "" {
		fold := cases.Fold()
		needle := fold.String(term)
		filtered := items[:0:0]
		for _, it := range items {
			if strings.Contains(fold.String(it.ProductName), needle) || strings.Contains(fold.String(it.Category), needle) {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}
	if len(items) == 0 {
		c.printf("No hay productos.\n")
		return nil
	}
	rows := make([]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s",
			it.ProductName, it.Category, c.stockCell(it.StockQuantity), c.money(it.BuyingPrice), c.money(it.SellingPrice), c.money(it.StockValue())))
	}
	c.table("PRODUCTO\tCATEGORÍA\tSTOCK\tCOMPRA\tVENTA\tVALOR", rows)
	return nil
}
