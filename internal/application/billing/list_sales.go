package billing

import (
	"context"

	"github.com/jhoicas/tienda-pos/internal/application/dto"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
)

const (
	DefaultSalesLimit = 100
	MaxSalesLimit     = 500
)

// ListSalesUseCase consulta el historial de ventas.
type ListSalesUseCase struct {
	saleRepo repository.SaleRepository
}

// NewListSalesUseCase construye el caso de uso.
func NewListSalesUseCase(saleRepo repository.SaleRepository) *ListSalesUseCase {
	return &ListSalesUseCase{saleRepo: saleRepo}
}

// List devuelve las últimas ventas, más recientes primero. limit fuera de rango se normaliza.
func (uc *ListSalesUseCase) List(ctx context.Context, limit int) ([]dto.SaleResponse, error) {
	if limit <= 0 {
		limit = DefaultSalesLimit
	}
	if limit > MaxSalesLimit {
		limit = MaxSalesLimit
	}
	sales, err := uc.saleRepo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SaleResponse, 0, len(sales))
	for _, s := range sales {
		out = append(out, *ToSaleResponse(s))
	}
	return out, nil
}

// GetByID obtiene una venta con sus líneas. (nil, nil) si no existe.
func (uc *ListSalesUseCase) GetByID(ctx context.Context, id int64) (*dto.SaleResponse, error) {
	sale, err := uc.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToSaleResponse(sale), nil
}
