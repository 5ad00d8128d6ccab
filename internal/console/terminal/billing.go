package terminal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jhoicas/tienda-pos/internal/console/cart"
	"github.com/jhoicas/tienda-pos/internal/console/catalog"
)

const noChange = "Sin cambios."

func (c *Console) onCartEvent(ev cart.Event) {
	switch ev.Kind {
	case cart.CheckedOut:
		if ev.Sale == nil {
			c.printf("Venta registrada.\n")
			return
		}
		c.printf("Venta registrada.\n  Venta: #%d\n  Total: %s\n  Ganancia: %s\n",
			ev.Sale.ID, c.money(ev.Sale.TotalAmount), c.money(ev.Sale.Profit))
	case cart.CheckoutFailed:
		c.printf("No se pudo registrar la venta: %s\n", cause(ev.Err))
	default:
		c.renderLines(ev.Lines, ev.Totals)
	}
}

func (c *Console) onCatalogEvent(ev catalog.Event) {
	if ev.Kind == catalog.CatalogUnavailable {
		c.log.Warn().Err(ev.Err).Int("cached", ev.Count).Msg("catálogo no disponible")
		c.printf("Catálogo no disponible (%s). Se muestran los datos anteriores (%d productos).\n", cause(ev.Err), ev.Count)
	}
}

// cause devuelve el detalle del error de origen, sin el prefijo que agregan
// el carrito y el catálogo ("%w: %w").
func cause(err error) string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := joined.Unwrap(); len(errs) > 0 {
			return errs[len(errs)-1].Error()
		}
	}
	return err.Error()
}

func (c *Console) renderCatalog() {
	products := c.catalog.Filter(c.filter)
	if c.filter != "" {
		c.printf("Catálogo (filtro: %q)\n", c.filter)
	} else {
		c.printf("Catálogo\n")
	}
	if len(products) == 0 {
		c.printf("  No hay productos.\n")
		return
	}
	rows := make([]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, fmt.Sprintf("%d\t%s\t%s\t%s\t%d", p.ID, p.Name, p.Category, c.money(p.SellingPrice), p.StockQuantity))
	}
	c.table("ID\tPRODUCTO\tCATEGORÍA\tPRECIO\tSTOCK", rows)
}

func (c *Console) renderLines(lines []cart.Line, totals cart.Totals) {
	if len(lines) == 0 {
		c.printf("Carrito vacío.\n")
		return
	}
	rows := make([]string, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, fmt.Sprintf("%d\t%s\t%s\t%d\t%s", l.ProductID, l.Name, c.money(l.UnitPrice), l.Quantity, c.money(l.Total())))
	}
	c.table("ID\tPRODUCTO\tPRECIO\tCANT.\tTOTAL", rows)
	c.printf("Artículos: %d  Total: %s\n", totals.Items, c.money(totals.Amount))
}

func (c *Console) cmdCatalog(context.Context, []string) error {
	if !c.catalog.Loaded() {
		c.printf("El catálogo todavía no se cargó. Use \"recargar\".\n")
		return nil
	}
	c.renderCatalog()
	return nil
}

func (c *Console) cmdSearch(_ context.Context, args []string) error {
	c.filter = strings.Join(args, " ")
	c.renderCatalog()
	return nil
}

func (c *Console) cmdReload(ctx context.Context, _ []string) error {
	if err := c.catalog.Refresh(ctx); err != nil {
		// El evento CatalogUnavailable ya avisó al operador.
		return nil
	}
	c.renderCatalog()
	return nil
}

func (c *Console) cmdAdd(_ context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	if !c.cart.Add(id) {
		c.printf("%s Producto inexistente, sin stock o en el tope disponible.\n", noChange)
	}
	return nil
}

func (c *Console) cmdIncrement(_ context.Context, args []string) error {
	return c.applyDelta(args, 1)
}

func (c *Console) cmdDecrement(_ context.Context, args []string) error {
	return c.applyDelta(args, -1)
}

func (c *Console) cmdDelta(_ context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("uso: cantidad <id> <delta>")
	}
	delta, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("delta inválido: %s", args[1])
	}
	return c.applyDelta(args, delta)
}

func (c *Console) applyDelta(args []string, delta int) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	if !c.cart.SetQuantityDelta(id, delta) {
		c.printf("%s La línea no existe o supera el stock disponible.\n", noChange)
	}
	return nil
}

func (c *Console) cmdRemove(_ context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	if !c.cart.Remove(id) {
		c.printf("%s El producto no está en el carrito.\n", noChange)
	}
	return nil
}

func (c *Console) cmdClear(context.Context, []string) error {
	if !c.cart.Clear() {
		c.printf("%s El carrito ya está vacío.\n", noChange)
	}
	return nil
}

func (c *Console) cmdCart(context.Context, []string) error {
	c.renderLines(c.cart.Lines(), c.cart.Totals())
	return nil
}

func (c *Console) cmdCheckout(ctx context.Context, _ []string) error {
	_, err := c.cart.Checkout(ctx)
	switch {
	case errors.Is(err, cart.ErrEmptyCart):
		c.printf("El carrito está vacío.\n")
	case errors.Is(err, cart.ErrCheckoutInProgress):
		c.printf("Ya hay una venta en curso.\n")
	}
	// Éxito y fallo del backend se informan con los eventos del carrito.
	return nil
}

func (c *Console) cmdReceipt(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	pdf, err := c.backend.DownloadReceipt(ctx, id)
	if err != nil {
		return fmt.Errorf("comprobante de la venta %d: %w", id, err)
	}
	path := filepath.Join(c.opts.ReceiptDir, fmt.Sprintf("venta-%d.pdf", id))
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return fmt.Errorf("guardar comprobante: %w", err)
	}
	c.printf("Comprobante guardado en %s\n", path)
	return nil
}
