package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/tienda-pos/internal/application/dto"
	"github.com/jhoicas/tienda-pos/internal/domain"
	"github.com/jhoicas/tienda-pos/internal/domain/entity"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. El stock baja con cada venta;
// aquí solo se fija por edición manual.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un nuevo producto.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.ProductRequest) (*dto.ProductResponse, error) {
	if err := checkProductInput(&in); err != nil {
		return nil, err
	}
	product := &entity.Product{
		Name:          in.Name,
		Category:      in.Category,
		BuyingPrice:   in.BuyingPrice,
		SellingPrice:  in.SellingPrice,
		StockQuantity: in.StockQuantity,
		CreatedAt:     time.Now().UTC(),
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// GetByID obtiene un producto por ID. (nil, nil) si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return ToProductResponse(product), nil
}

// List lista todos los productos ordenados por nombre.
func (uc *ProductUseCase) List(ctx context.Context) ([]dto.ProductResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *ToProductResponse(p))
	}
	return items, nil
}

// Update reemplaza todos los campos editables del producto. (nil, nil) si no existe.
func (uc *ProductUseCase) Update(ctx context.Context, id int64, in dto.ProductRequest) (*dto.ProductResponse, error) {
	if err := checkProductInput(&in); err != nil {
		return nil, err
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	product.Name = in.Name
	product.Category = in.Category
	product.BuyingPrice = in.BuyingPrice
	product.SellingPrice = in.SellingPrice
	product.StockQuantity = in.StockQuantity
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// Delete elimina un producto. No se permite si ya tiene ventas registradas:
// en ese caso se sugiere dejar el stock en 0.
func (uc *ProductUseCase) Delete(ctx context.Context, id int64) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.Errorf(domain.ErrNotFound, "producto no encontrado")
	}
	sold, err := uc.repo.HasSales(ctx, id)
	if err != nil {
		return err
	}
	if sold {
		return domain.ErrHasSalesHistory
	}
	return uc.repo.Delete(ctx, id)
}

func checkProductInput(in *dto.ProductRequest) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if in.Name == "" || in.Category == "" {
		return domain.ErrInvalidInput
	}
	if in.BuyingPrice.IsNegative() || in.SellingPrice.IsNegative() || in.StockQuantity < 0 {
		return domain.ErrInvalidInput
	}
	return nil
}

// ToProductResponse convierte la entidad al DTO de salida.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Category:      p.Category,
		BuyingPrice:   p.BuyingPrice,
		SellingPrice:  p.SellingPrice,
		StockQuantity: p.StockQuantity,
		CreatedAt:     p.CreatedAt,
	}
}
