package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo de la tienda.
// BuyingPrice es el costo de compra; SellingPrice el precio de venta al público.
type Product struct {
	ID            int64
	Name          string
	Category      string
	BuyingPrice   decimal.Decimal
	SellingPrice  decimal.Decimal
	StockQuantity int
	CreatedAt     time.Time
}

// UnitProfit ganancia por unidad vendida al precio actual.
func (p *Product) UnitProfit() decimal.Decimal {
	return p.SellingPrice.Sub(p.BuyingPrice)
}

// ProfitMargin margen porcentual sobre el precio de compra ((venta - compra) / compra * 100).
// Devuelve cero si el precio de compra es cero.
func (p *Product) ProfitMargin() decimal.Decimal {
	if p.BuyingPrice.IsZero() {
		return decimal.Zero
	}
	return p.UnitProfit().Div(p.BuyingPrice).Mul(decimal.NewFromInt(100))
}
