// Package memory implementa los puertos de persistencia en memoria.
// Se usa con STORAGE_DRIVER=memory (demo sin PostgreSQL) y en los tests de casos de uso y handlers.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-pos/internal/application/billing"
	"github.com/jhoicas/tienda-pos/internal/domain"
	"github.com/jhoicas/tienda-pos/internal/domain/entity"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
)

var (
	_ repository.ProductRepository   = (*ProductRepo)(nil)
	_ repository.SaleRepository      = (*SaleRepo)(nil)
	_ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)
	_ billing.SaleTxRunner           = (*Store)(nil)
)

// Store estado compartido por los repositorios en memoria. Un único mutex serializa
// todas las operaciones; RunSale lo mantiene durante toda la transacción.
type Store struct {
	mu            sync.Mutex
	products      map[int64]entity.Product
	sales         []entity.Sale
	nextProductID int64
	nextSaleID    int64
	nextItemID    int64
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{products: make(map[int64]entity.Product)}
}

// Products repositorio de productos sobre el store.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Sales repositorio de ventas sobre el store.
func (s *Store) Sales() *SaleRepo { return &SaleRepo{s: s} }

// Analytics consultas de lectura sobre el store.
func (s *Store) Analytics() *AnalyticsRepo { return &AnalyticsRepo{s: s} }

// RunSale ejecuta fn con el store bloqueado. Si fn falla se restauran productos y ventas.
func (s *Store) RunSale(_ context.Context, fn func(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make(map[int64]entity.Product, len(s.products))
	for k, v := range s.products {
		products[k] = v
	}
	salesLen := len(s.sales)
	nextSale, nextItem := s.nextSaleID, s.nextItemID

	if err := fn(&ProductRepo{s: s, inTx: true}, &SaleRepo{s: s, inTx: true}); err != nil {
		s.products = products
		s.sales = s.sales[:salesLen]
		s.nextSaleID, s.nextItemID = nextSale, nextItem
		return err
	}
	return nil
}

func (s *Store) lock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// ── Productos ─────────────────────────────────────────────────────────────────

// ProductRepo implementación en memoria de ProductRepository.
type ProductRepo struct {
	s    *Store
	inTx bool
}

// Create asigna ID incremental.
func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	defer r.s.lock(r.inTx)()
	r.s.nextProductID++
	p.ID = r.s.nextProductID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	r.s.products[p.ID] = *p
	return nil
}

// GetByID devuelve una copia del producto o (nil, nil).
func (r *ProductRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	defer r.s.lock(r.inTx)()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// Update reemplaza el producto.
func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	defer r.s.lock(r.inTx)()
	current, ok := r.s.products[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	p.CreatedAt = current.CreatedAt
	r.s.products[p.ID] = *p
	return nil
}

// List ordenado por nombre.
func (r *ProductRepo) List(_ context.Context) ([]*entity.Product, error) {
	defer r.s.lock(r.inTx)()
	out := r.s.snapshotProducts()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Delete elimina el producto si existe.
func (r *ProductRepo) Delete(_ context.Context, id int64) error {
	defer r.s.lock(r.inTx)()
	delete(r.s.products, id)
	return nil
}

// HasSales busca el producto en las líneas de venta.
func (r *ProductRepo) HasSales(_ context.Context, id int64) (bool, error) {
	defer r.s.lock(r.inTx)()
	for _, sale := range r.s.sales {
		for _, it := range sale.Items {
			if it.ProductID == id {
				return true, nil
			}
		}
	}
	return false, nil
}

// DecrementStock descuenta solo si alcanza.
func (r *ProductRepo) DecrementStock(_ context.Context, id int64, quantity int) error {
	defer r.s.lock(r.inTx)()
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	if quantity <= 0 {
		return domain.Errorf(domain.ErrInvalidInput, "cantidad a descontar inválida: %d", quantity)
	}
	if p.StockQuantity < quantity {
		return domain.ErrInsufficientStock
	}
	p.StockQuantity -= quantity
	r.s.products[id] = p
	return nil
}

func (s *Store) snapshotProducts() []*entity.Product {
	out := make([]*entity.Product, 0, len(s.products))
	for _, p := range s.products {
		p := p
		out = append(out, &p)
	}
	return out
}

// ── Ventas ────────────────────────────────────────────────────────────────────

// SaleRepo implementación en memoria de SaleRepository.
type SaleRepo struct {
	s    *Store
	inTx bool
}

// Create asigna IDs a la venta y sus líneas.
func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	defer r.s.lock(r.inTx)()
	r.s.nextSaleID++
	sale.ID = r.s.nextSaleID
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now().UTC()
	}
	for i := range sale.Items {
		r.s.nextItemID++
		sale.Items[i].ID = r.s.nextItemID
		sale.Items[i].SaleID = sale.ID
	}
	r.s.sales = append(r.s.sales, cloneSale(*sale))
	return nil
}

// GetByID devuelve una copia de la venta o (nil, nil).
func (r *SaleRepo) GetByID(_ context.Context, id int64) (*entity.Sale, error) {
	defer r.s.lock(r.inTx)()
	for _, sale := range r.s.sales {
		if sale.ID == id {
			c := cloneSale(sale)
			return &c, nil
		}
	}
	return nil, nil
}

// List más recientes primero.
func (r *SaleRepo) List(_ context.Context, limit int) ([]*entity.Sale, error) {
	defer r.s.lock(r.inTx)()
	out := make([]*entity.Sale, 0)
	for i := len(r.s.sales) - 1; i >= 0 && len(out) < limit; i-- {
		c := cloneSale(r.s.sales[i])
		out = append(out, &c)
	}
	return out, nil
}

// ListBetween filtra por created_at en [start, end], más recientes primero.
func (r *SaleRepo) ListBetween(_ context.Context, start, end time.Time) ([]*entity.Sale, error) {
	defer r.s.lock(r.inTx)()
	out := make([]*entity.Sale, 0)
	for i := len(r.s.sales) - 1; i >= 0; i-- {
		sale := r.s.sales[i]
		if sale.CreatedAt.Before(start) || sale.CreatedAt.After(end) {
			continue
		}
		c := cloneSale(sale)
		out = append(out, &c)
	}
	return out, nil
}

func cloneSale(s entity.Sale) entity.Sale {
	s.Items = append([]entity.SaleItem(nil), s.Items...)
	return s
}

// ── Analítica ─────────────────────────────────────────────────────────────────

// AnalyticsRepo implementación en memoria de AnalyticsRepository.
type AnalyticsRepo struct {
	s *Store
}

// GetSalesMetrics agrega ventas en [start, end].
func (r *AnalyticsRepo) GetSalesMetrics(_ context.Context, start, end time.Time) (repository.SalesMetrics, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.metrics(func(sale entity.Sale) bool {
		return !sale.CreatedAt.Before(start) && !sale.CreatedAt.After(end)
	}), nil
}

// GetAllTimeMetrics agrega todas las ventas.
func (r *AnalyticsRepo) GetAllTimeMetrics(_ context.Context) (repository.SalesMetrics, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.metrics(func(entity.Sale) bool { return true }), nil
}

// GetStockLevels ordenado por categoría y nombre.
func (r *AnalyticsRepo) GetStockLevels(_ context.Context) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.s.snapshotProducts()
	sort.SliceStable(out, func(i, j int) bool {
		if c := strings.Compare(out[i].Category, out[j].Category); c != 0 {
			return c < 0
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) metrics(keep func(entity.Sale) bool) repository.SalesMetrics {
	m := repository.SalesMetrics{Revenue: decimal.Zero, Profit: decimal.Zero}
	for _, sale := range s.sales {
		if !keep(sale) {
			continue
		}
		m.Transactions++
		m.Revenue = m.Revenue.Add(sale.TotalAmount)
		m.Profit = m.Profit.Add(sale.Profit)
	}
	return m
}
