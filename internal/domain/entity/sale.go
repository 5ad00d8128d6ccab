package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale cabecera de una venta confirmada en caja.
// TotalAmount y Profit se calculan en el servidor con los precios vigentes al momento de la venta.
type Sale struct {
	ID          int64
	TotalAmount decimal.Decimal
	Profit      decimal.Decimal
	CreatedAt   time.Time
	Items       []SaleItem
}

// ItemCount suma de unidades vendidas.
func (s *Sale) ItemCount() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}
