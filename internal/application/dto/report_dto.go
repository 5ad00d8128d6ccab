package dto

import "github.com/shopspring/decimal"

// ReportSummary respuesta de GET /api/reports/summary (histórico completo).
type ReportSummary struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalProfit       decimal.Decimal `json:"total_profit"`
	TotalTransactions int             `json:"total_transactions"`
}

// StockItem fila de GET /api/reports/stock.
type StockItem struct {
	ProductID     int64           `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Category      string          `json:"category"`
	StockQuantity int             `json:"stock_quantity"`
	BuyingPrice   decimal.Decimal `json:"buying_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
}

// StockValue valor del inventario de la fila a precio de compra.
func (s StockItem) StockValue() decimal.Decimal {
	return s.BuyingPrice.Mul(decimal.NewFromInt(int64(s.StockQuantity)))
}
