package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest una línea del carrito enviada al confirmar la venta.
type SaleItemRequest struct {
	ProductID int64 `json:"product_id" validate:"gt=0"`
	Quantity  int   `json:"quantity" validate:"gt=0,max=2147483647"`
}

// CreateSaleRequest cuerpo de POST /api/sales.
type CreateSaleRequest struct {
	Items []SaleItemRequest `json:"items" validate:"dive"`
}

// SaleItemResponse línea de venta con precios congelados.
type SaleItemResponse struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Quantity     int             `json:"quantity"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	BuyingPrice  decimal.Decimal `json:"buying_price"`
}

// SaleResponse venta confirmada tal como la calcula el servidor.
type SaleResponse struct {
	ID          int64              `json:"id"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	Profit      decimal.Decimal    `json:"profit"`
	CreatedAt   time.Time          `json:"created_at"`
	Items       []SaleItemResponse `json:"items"`
}

// ItemCount suma de unidades de la venta.
func (s SaleResponse) ItemCount() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}
