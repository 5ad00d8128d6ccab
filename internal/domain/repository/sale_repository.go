package repository

import (
	"context"
	"time"

	"github.com/jhoicas/tienda-pos/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas y sus líneas.
type SaleRepository interface {
	// Create inserta cabecera y líneas; completa IDs y CreatedAt.
	Create(ctx context.Context, sale *entity.Sale) error
	// GetByID devuelve (nil, nil) si la venta no existe. Incluye líneas.
	GetByID(ctx context.Context, id int64) (*entity.Sale, error)
	// List devuelve las últimas `limit` ventas (más recientes primero) con sus líneas.
	List(ctx context.Context, limit int) ([]*entity.Sale, error)
	// ListBetween devuelve las ventas con created_at en [start, end], más recientes primero.
	ListBetween(ctx context.Context, start, end time.Time) ([]*entity.Sale, error)
}
