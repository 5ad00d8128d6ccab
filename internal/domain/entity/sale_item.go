package entity

import "github.com/shopspring/decimal"

// SaleItem línea de una venta. Los precios quedan congelados al momento de vender.
type SaleItem struct {
	ID           int64
	SaleID       int64
	ProductID    int64
	ProductName  string
	Quantity     int
	SellingPrice decimal.Decimal
	BuyingPrice  decimal.Decimal
}

// Subtotal precio de venta por cantidad.
func (i SaleItem) Subtotal() decimal.Decimal {
	return i.SellingPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Profit ganancia de la línea ((venta - compra) * cantidad).
func (i SaleItem) Profit() decimal.Decimal {
	return i.SellingPrice.Sub(i.BuyingPrice).Mul(decimal.NewFromInt(int64(i.Quantity)))
}
