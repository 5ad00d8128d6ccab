// Package catalog mantiene en la consola la última copia conocida del catálogo de productos.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/jhoicas/tienda-pos/internal/application/dto"
	"github.com/jhoicas/tienda-pos/internal/console/observer"
	"github.com/jhoicas/tienda-pos/internal/domain/entity"
)

// ErrCatalogUnavailable el backend no pudo entregar el catálogo; la copia anterior sigue vigente.
var ErrCatalogUnavailable = errors.New("catálogo no disponible")

// ProductLister fuente del catálogo (el cliente REST en producción).
type ProductLister interface {
	ListProducts(ctx context.Context) ([]dto.ProductResponse, error)
}

// EventKind tipo de notificación del catálogo.
type EventKind int

const (
	CatalogRefreshed EventKind = iota + 1
	CatalogUnavailable
)

func (k EventKind) String() string {
	switch k {
	case CatalogRefreshed:
		return "catalog_refreshed"
	case CatalogUnavailable:
		return "catalog_unavailable"
	default:
		return "unknown"
	}
}

// Event notificación emitida tras cada intento de Refresh.
type Event struct {
	Kind  EventKind
	Count int   // productos en la copia vigente
	Err   error // solo en CatalogUnavailable
}

type entry struct {
	product  entity.Product
	name     string
	category string
}

// Cache copia en memoria del catálogo. Se reemplaza completa en cada Refresh.
type Cache struct {
	source ProductLister

	mu      sync.RWMutex
	entries []entry
	loaded  bool

	events observer.Registry[Event]
}

// New crea un catálogo vacío que se llenará con Refresh.
func New(source ProductLister) *Cache {
	return &Cache{source: source}
}

// Refresh pide el catálogo completo y reemplaza la copia en un solo paso.
// Si falla, la copia anterior se conserva y el error envuelve ErrCatalogUnavailable.
func (c *Cache) Refresh(ctx context.Context) error {
	list, err := c.source.ListProducts(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
		c.events.Notify(Event{Kind: CatalogUnavailable, Count: c.Len(), Err: err})
		return err
	}

	fold := cases.Fold()
	entries := make([]entry, 0, len(list))
	for _, p := range list {
		entries = append(entries, entry{
			product: entity.Product{
				ID:            p.ID,
				Name:          p.Name,
				Category:      p.Category,
				BuyingPrice:   p.BuyingPrice,
				SellingPrice:  p.SellingPrice,
				StockQuantity: p.StockQuantity,
				CreatedAt:     p.CreatedAt,
			},
			name:     fold.String(p.Name),
			category: fold.String(p.Category),
		})
	}

	c.mu.Lock()
	c.entries = entries
	c.loaded = true
	c.mu.Unlock()

	c.events.Notify(Event{Kind: CatalogRefreshed, Count: len(entries)})
	return nil
}

// Products copia de la instantánea vigente en el orden del backend.
func (c *Cache) Products() []entity.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]entity.Product, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.product
	}
	return out
}

// Filter productos cuyo nombre o categoría contiene term sin distinguir mayúsculas.
// Un término vacío o en blanco devuelve el catálogo completo.
func (c *Cache) Filter(term string) []entity.Product {
	term = strings.TrimSpace(term)
	if term == "" {
		return c.Products()
	}
	needle := cases.Fold().String(term)

	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]entity.Product, 0)
	for _, e := range c.entries {
		if strings.Contains(e.name, needle) || strings.Contains(e.category, needle) {
			out = append(out, e.product)
		}
	}
	return out
}

// Find busca un producto por id en la instantánea vigente.
func (c *Cache) Find(id int64) (entity.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.entries {
		if e.product.ID == id {
			return e.product, true
		}
	}
	return entity.Product{}, false
}

// Len cantidad de productos en la instantánea.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Loaded indica si algún Refresh terminó bien.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Subscribe registra fn para recibir los eventos del catálogo.
func (c *Cache) Subscribe(fn func(Event)) (unsubscribe func()) {
	return c.events.Subscribe(fn)
}
