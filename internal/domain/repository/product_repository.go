package repository

import (
	"context"

	"github.com/jhoicas/tienda-pos/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	// Create persiste el producto y completa ID y CreatedAt.
	Create(ctx context.Context, product *entity.Product) error
	// GetByID devuelve (nil, nil) si el producto no existe.
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	// Update reemplaza los campos editables. domain.ErrNotFound si no existe.
	Update(ctx context.Context, product *entity.Product) error
	// List devuelve todos los productos ordenados por nombre.
	List(ctx context.Context) ([]*entity.Product, error)
	Delete(ctx context.Context, id int64) error
	// HasSales indica si el producto aparece en alguna línea de venta.
	HasSales(ctx context.Context, id int64) (bool, error)
	// DecrementStock descuenta quantity solo si hay stock suficiente;
	// de lo contrario devuelve domain.ErrInsufficientStock.
	DecrementStock(ctx context.Context, id int64, quantity int) error
}
