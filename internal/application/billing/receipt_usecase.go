package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/tienda-pos/internal/domain"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
)

// ReceiptUseCase genera el comprobante PDF de una venta ya registrada.
type ReceiptUseCase struct {
	saleRepo  repository.SaleRepository
	generator ReceiptPDFGenerator
	storeName string
}

// NewReceiptUseCase construye el caso de uso inyectando todas sus dependencias.
func NewReceiptUseCase(saleRepo repository.SaleRepository, generator ReceiptPDFGenerator, storeName string) *ReceiptUseCase {
	return &ReceiptUseCase{saleRepo: saleRepo, generator: generator, storeName: storeName}
}

// DownloadReceiptPDF devuelve los bytes del PDF y el nombre de archivo sugerido.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la venta no existe.
func (uc *ReceiptUseCase) DownloadReceiptPDF(ctx context.Context, saleID int64) ([]byte, string, error) {
	sale, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, "", fmt.Errorf("recibo: obtener venta: %w", err)
	}
	if sale == nil {
		return nil, "", domain.ErrNotFound
	}
	pdfBytes, err := uc.generator.GenerateReceiptPDF(ctx, uc.storeName, sale)
	if err != nil {
		return nil, "", fmt.Errorf("recibo: generar PDF: %w", err)
	}
	return pdfBytes, fmt.Sprintf("venta-%d.pdf", sale.ID), nil
}
