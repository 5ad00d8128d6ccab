package dto

import "github.com/shopspring/decimal"

// DashboardStats respuesta de GET /api/dashboard/stats (solo el día en curso).
type DashboardStats struct {
	DailyTransactions int             `json:"daily_transactions"`
	DailyRevenue      decimal.Decimal `json:"daily_revenue"`
	DailyProfit       decimal.Decimal `json:"daily_profit"`
}
