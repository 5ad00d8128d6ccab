package billing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-pos/internal/domain/entity"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
)

// SaleTxRunner ejecuta una función dentro de una transacción con repos de productos y ventas.
type SaleTxRunner interface {
	RunSale(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error) error
}

// ReceiptPDFGenerator genera el comprobante de una venta en PDF.
type ReceiptPDFGenerator interface {
	GenerateReceiptPDF(ctx context.Context, storeName string, sale *entity.Sale) ([]byte, error)
}

// SaleMetrics observa el resultado de las ventas (prometheus en producción).
// Un nil es válido: las implementaciones deben tolerar receptor nil.
type SaleMetrics interface {
	ObserveSale(amount, profit decimal.Decimal, items int)
	IncRejected(reason string)
}
