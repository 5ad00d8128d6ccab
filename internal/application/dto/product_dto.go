package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductRequest entrada para crear o reemplazar un producto (POST y PUT comparten cuerpo).
type ProductRequest struct {
	Name          string          `json:"name" validate:"required,min=1,max=200"`
	Category      string          `json:"category" validate:"required,min=1,max=100"`
	BuyingPrice   decimal.Decimal `json:"buying_price" validate:"gte=0"`
	SellingPrice  decimal.Decimal `json:"selling_price" validate:"gte=0"`
	StockQuantity int             `json:"stock_quantity" validate:"gte=0"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	BuyingPrice   decimal.Decimal `json:"buying_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	StockQuantity int             `json:"stock_quantity"`
	CreatedAt     time.Time       `json:"created_at"`
}
