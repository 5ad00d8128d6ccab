// Package cart implementa el carrito de la caja: líneas, totales y confirmación de la venta.
//
// El carrito no confía en su propio stock: el techo de cada línea es el stock
// visto al agregarla y el backend vuelve a validar todo al confirmar.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-pos/internal/application/dto"
	"github.com/jhoicas/tienda-pos/internal/console/observer"
	"github.com/jhoicas/tienda-pos/internal/domain/entity"
)

var (
	ErrEmptyCart          = errors.New("el carrito está vacío")
	ErrCheckoutInProgress = errors.New("ya hay una venta en curso")
	ErrCheckoutFailed     = errors.New("la venta no se pudo registrar")
)

// Catalog la parte del catálogo que usa el carrito.
type Catalog interface {
	Find(id int64) (entity.Product, bool)
	Refresh(ctx context.Context) error
}

// SaleSubmitter envía la venta al backend.
type SaleSubmitter interface {
	CreateSale(ctx context.Context, req dto.CreateSaleRequest, idempotencyKey string) (*dto.SaleResponse, error)
}

// Line una línea del carrito. StockCeiling es el stock del producto al agregarlo.
type Line struct {
	ProductID    int64
	Name         string
	UnitPrice    decimal.Decimal
	Quantity     int
	StockCeiling int
}

// Total precio unitario por cantidad.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals resumen derivado de las líneas.
type Totals struct {
	Items  int
	Amount decimal.Decimal
}

// EventKind tipo de transición del carrito.
type EventKind int

const (
	LineAdded EventKind = iota + 1
	QuantityChanged
	LineRemoved
	Cleared
	CheckedOut
	CheckoutFailed
)

func (k EventKind) String() string {
	switch k {
	case LineAdded:
		return "line_added"
	case QuantityChanged:
		return "quantity_changed"
	case LineRemoved:
		return "line_removed"
	case Cleared:
		return "cleared"
	case CheckedOut:
		return "checked_out"
	case CheckoutFailed:
		return "checkout_failed"
	default:
		return "unknown"
	}
}

// Event se emite después de cada transición exitosa, ya con el lock liberado.
type Event struct {
	Kind      EventKind
	ProductID int64 // cero en Cleared, CheckedOut y CheckoutFailed
	Lines     []Line
	Totals    Totals
	Sale      *dto.SaleResponse // solo en CheckedOut
	Err       error             // solo en CheckoutFailed
}

// Engine estado del carrito. Seguro para uso concurrente.
type Engine struct {
	catalog Catalog
	backend SaleSubmitter
	newKey  func() string

	mu    sync.Mutex
	lines []Line
	busy  bool
	key   string

	events observer.Registry[Event]
}

// Option ajusta el Engine al construirlo.
type Option func(*Engine)

// WithKeyGenerator reemplaza el generador de claves de idempotencia (tests).
func WithKeyGenerator(fn func() string) Option {
	return func(e *Engine) { e.newKey = fn }
}

// New crea un carrito vacío.
func New(catalog Catalog, backend SaleSubmitter, opts ...Option) *Engine {
	e := &Engine{
		catalog: catalog,
		backend: backend,
		newKey:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(e)
	}
	e.key = e.newKey()
	return e
}

// Add agrega una unidad del producto. Devuelve false si no cambió nada:
// producto desconocido o sin stock, techo alcanzado, o venta en curso.
func (e *Engine) Add(productID int64) bool {
	p, ok := e.catalog.Find(productID)
	if !ok || p.StockQuantity <= 0 {
		return false
	}

	e.mu.Lock()
	if e.busy {
		e.mu.Unlock()
		return false
	}
	kind := LineAdded
	if i := e.indexLocked(productID); i >= 0 {
		if e.lines[i].Quantity+1 > e.lines[i].StockCeiling {
			e.mu.Unlock()
			return false
		}
		e.lines[i].Quantity++
		kind = QuantityChanged
	} else {
		e.lines = append(e.lines, Line{
			ProductID:    p.ID,
			Name:         p.Name,
			UnitPrice:    p.SellingPrice,
			Quantity:     1,
			StockCeiling: p.StockQuantity,
		})
	}
	ev := e.commitLocked(kind, productID)
	e.mu.Unlock()

	e.events.Notify(ev)
	return true
}

// SetQuantityDelta suma delta a la cantidad de la línea. Si el resultado es
// cero o menos la línea se quita; si supera el techo no cambia nada.
func (e *Engine) SetQuantityDelta(productID int64, delta int) bool {
	e.mu.Lock()
	i := e.indexLocked(productID)
	if e.busy || i < 0 || delta == 0 {
		e.mu.Unlock()
		return false
	}
	l := e.lines[i]
	var kind EventKind
	// Se compara contra el margen disponible sin sumar: delta puede venir de
	// la terminal con cualquier valor de int.
	switch {
	case delta < 0 && delta <= -l.Quantity:
		e.removeAtLocked(i)
		kind = LineRemoved
	case delta > 0 && delta > l.StockCeiling-l.Quantity:
		e.mu.Unlock()
		return false
	default:
		e.lines[i].Quantity += delta
		kind = QuantityChanged
	}
	ev := e.commitLocked(kind, productID)
	e.mu.Unlock()

	e.events.Notify(ev)
	return true
}

// Remove quita la línea del producto si existe.
func (e *Engine) Remove(productID int64) bool {
	e.mu.Lock()
	i := e.indexLocked(productID)
	if e.busy || i < 0 {
		e.mu.Unlock()
		return false
	}
	e.removeAtLocked(i)
	ev := e.commitLocked(LineRemoved, productID)
	e.mu.Unlock()

	e.events.Notify(ev)
	return true
}

// Clear vacía el carrito.
func (e *Engine) Clear() bool {
	e.mu.Lock()
	if e.busy || len(e.lines) == 0 {
		e.mu.Unlock()
		return false
	}
	e.lines = nil
	ev := e.commitLocked(Cleared, 0)
	e.mu.Unlock()

	e.events.Notify(ev)
	return true
}

// Checkout envía el carrito al backend. Si la venta se registra, vacía el
// carrito, recarga el catálogo y devuelve la venta tal como la respondió el
// backend. Si falla, el carrito queda exactamente igual y no se reintenta.
func (e *Engine) Checkout(ctx context.Context) (*dto.SaleResponse, error) {
	e.mu.Lock()
	if e.busy {
		e.mu.Unlock()
		return nil, ErrCheckoutInProgress
	}
	if len(e.lines) == 0 {
		e.mu.Unlock()
		return nil, ErrEmptyCart
	}
	req := dto.CreateSaleRequest{Items: make([]dto.SaleItemRequest, 0, len(e.lines))}
	for _, l := range e.lines {
		req.Items = append(req.Items, dto.SaleItemRequest{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	key := e.key
	e.busy = true
	e.mu.Unlock()

	sale, err := e.backend.CreateSale(ctx, req, key)

	e.mu.Lock()
	e.busy = false
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrCheckoutFailed, err)
		ev := e.snapshotLocked(CheckoutFailed, 0)
		ev.Err = err
		e.mu.Unlock()

		e.events.Notify(ev)
		return nil, err
	}
	e.lines = nil
	ev := e.commitLocked(CheckedOut, 0)
	ev.Sale = sale
	e.mu.Unlock()

	e.events.Notify(ev)

	// La venta ya quedó registrada: un catálogo viejo no la invalida.
	// El catálogo avisa a sus suscriptores si no se pudo recargar.
	_ = e.catalog.Refresh(ctx)
	return sale, nil
}

// Lines copia de las líneas en orden de inserción.
func (e *Engine) Lines() []Line {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.copyLinesLocked()
}

// Line devuelve la línea del producto, si existe.
func (e *Engine) Line(productID int64) (Line, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := e.indexLocked(productID); i >= 0 {
		return e.lines[i], true
	}
	return Line{}, false
}

// Totals suma de unidades y de importes de todas las líneas.
func (e *Engine) Totals() Totals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalsLocked()
}

// IsEmpty indica si no hay líneas.
func (e *Engine) IsEmpty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.lines) == 0
}

// Busy indica si hay una venta en vuelo.
func (e *Engine) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy
}

// IdempotencyKey clave que se enviará en el próximo Checkout.
func (e *Engine) IdempotencyKey() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.key
}

// Subscribe registra fn para recibir los eventos del carrito.
// El orden de los eventos solo está garantizado con un único llamador.
func (e *Engine) Subscribe(fn func(Event)) (unsubscribe func()) {
	return e.events.Subscribe(fn)
}

func (e *Engine) indexLocked(productID int64) int {
	for i := range e.lines {
		if e.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (e *Engine) removeAtLocked(i int) {
	e.lines = append(e.lines[:i:i], e.lines[i+1:]...)
	if len(e.lines) == 0 {
		e.lines = nil
	}
}

// commitLocked rota la clave de idempotencia y arma el evento de la transición.
func (e *Engine) commitLocked(kind EventKind, productID int64) Event {
	e.key = e.newKey()
	return e.snapshotLocked(kind, productID)
}

func (e *Engine) snapshotLocked(kind EventKind, productID int64) Event {
	return Event{
		Kind:      kind,
		ProductID: productID,
		Lines:     e.copyLinesLocked(),
		Totals:    e.totalsLocked(),
	}
}

func (e *Engine) copyLinesLocked() []Line {
	out := make([]Line, len(e.lines))
	copy(out, e.lines)
	return out
}

func (e *Engine) totalsLocked() Totals {
	t := Totals{Amount: decimal.Zero}
	for _, l := range e.lines {
		t.Items += l.Quantity
		t.Amount = t.Amount.Add(l.Total())
	}
	return t
}
