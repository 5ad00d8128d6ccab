package billing

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-pos/internal/application/dto"
	"github.com/jhoicas/tienda-pos/internal/domain"
	"github.com/jhoicas/tienda-pos/internal/domain/entity"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
)

// Motivos de rechazo reportados a métricas.
const (
	RejectEmpty        = "empty"
	RejectInvalid      = "invalid"
	RejectNotFound     = "not_found"
	RejectInsufficient = "insufficient_stock"
	RejectInternal     = "internal"
)

// CreateSaleUseCase registra una venta y descuenta el stock en una sola transacción.
type CreateSaleUseCase struct {
	txRunner SaleTxRunner
	metrics  SaleMetrics
	now      func() time.Time
}

// NewCreateSaleUseCase construye el caso de uso. metrics puede ser nil.
func NewCreateSaleUseCase(txRunner SaleTxRunner, metrics SaleMetrics) *CreateSaleUseCase {
	return &CreateSaleUseCase{
		txRunner: txRunner,
		metrics:  metrics,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// maxLineQuantity tope de la columna INTEGER sale_items.quantity.
const maxLineQuantity = math.MaxInt32

type saleLine struct {
	productID int64
	quantity  int
}

// CreateSale valida el carrito contra el stock actual, calcula total y ganancia con los
// precios vigentes, descuenta inventario y guarda cabecera y líneas.
// Si algún producto falla, no se aplica nada (rollback).
func (uc *CreateSaleUseCase) CreateSale(ctx context.Context, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if len(in.Items) == 0 {
		uc.reject(RejectEmpty)
		return nil, domain.ErrEmptySale
	}
	lines, err := mergeLines(in.Items)
	if err != nil {
		uc.reject(RejectInvalid)
		return nil, err
	}

	var sale *entity.Sale
	err = uc.txRunner.RunSale(ctx, func(productRepo repository.ProductRepository, saleRepo repository.SaleRepository) error {
		sale = &entity.Sale{
			TotalAmount: decimal.Zero,
			Profit:      decimal.Zero,
			CreatedAt:   uc.now(),
			Items:       make([]entity.SaleItem, 0, len(lines)),
		}

		// 1) Validar existencia y stock, y congelar precios
		for _, line := range lines {
			product, err := productRepo.GetByID(ctx, line.productID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.Errorf(domain.ErrNotFound, "producto %d no encontrado", line.productID)
			}
			if product.StockQuantity < line.quantity {
				return insufficient(product)
			}
			item := entity.SaleItem{
				ProductID:    product.ID,
				ProductName:  product.Name,
				Quantity:     line.quantity,
				SellingPrice: product.SellingPrice,
				BuyingPrice:  product.BuyingPrice,
			}
			sale.TotalAmount = sale.TotalAmount.Add(item.Subtotal())
			sale.Profit = sale.Profit.Add(item.Profit())
			sale.Items = append(sale.Items, item)
		}

		// 2) Descontar stock (UPDATE con guarda: otra caja pudo vender entre medias)
		for _, item := range sale.Items {
			if err := productRepo.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				if errors.Is(err, domain.ErrInsufficientStock) {
					current, _ := productRepo.GetByID(ctx, item.ProductID)
					if current != nil {
						return insufficient(current)
					}
				}
				return err
			}
		}

		// 3) Persistir venta
		return saleRepo.Create(ctx, sale)
	})
	if err != nil {
		uc.reject(rejectReason(err))
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ObserveSale(sale.TotalAmount, sale.Profit, sale.ItemCount())
	}
	return ToSaleResponse(sale), nil
}

// mergeLines agrupa productos repetidos conservando el orden de primera aparición.
func mergeLines(items []dto.SaleItemRequest) ([]saleLine, error) {
	index := make(map[int64]int, len(items))
	lines := make([]saleLine, 0, len(items))
	for _, it := range items {
		if it.ProductID <= 0 || it.Quantity <= 0 {
			return nil, domain.Errorf(domain.ErrInvalidInput, "product_id y quantity deben ser positivos")
		}
		if it.Quantity > maxLineQuantity {
			return nil, domain.Errorf(domain.ErrInvalidInput, "quantity no puede superar %d", maxLineQuantity)
		}
		if i, ok := index[it.ProductID]; ok {
			if it.Quantity > maxLineQuantity-lines[i].quantity {
				return nil, domain.Errorf(domain.ErrInvalidInput, "la cantidad total del producto %d supera %d", it.ProductID, maxLineQuantity)
			}
			lines[i].quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(lines)
		lines = append(lines, saleLine{productID: it.ProductID, quantity: it.Quantity})
	}
	return lines, nil
}

func insufficient(p *entity.Product) error {
	return domain.Errorf(domain.ErrInsufficientStock, "stock insuficiente para %s. Disponible: %d", p.Name, p.StockQuantity)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return RejectNotFound
	case errors.Is(err, domain.ErrInsufficientStock):
		return RejectInsufficient
	case errors.Is(err, domain.ErrInvalidInput):
		return RejectInvalid
	default:
		return RejectInternal
	}
}

func (uc *CreateSaleUseCase) reject(reason string) {
	if uc.metrics != nil {
		uc.metrics.IncRejected(reason)
	}
}

// ToSaleResponse convierte la entidad al DTO de salida.
func ToSaleResponse(s *entity.Sale) *dto.SaleResponse {
	if s == nil {
		return nil
	}
	items := make([]dto.SaleItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, dto.SaleItemResponse{
			ID:           it.ID,
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			Quantity:     it.Quantity,
			SellingPrice: it.SellingPrice,
			BuyingPrice:  it.BuyingPrice,
		})
	}
	return &dto.SaleResponse{
		ID:          s.ID,
		TotalAmount: s.TotalAmount,
		Profit:      s.Profit,
		CreatedAt:   s.CreatedAt,
		Items:       items,
	}
}
