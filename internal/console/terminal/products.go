package terminal

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-pos/internal/application/dto"
	"github.com/jhoicas/tienda-pos/internal/domain/entity"
)

var errCancelled = errors.New("operación cancelada")

func (c *Console) cmdProducts(ctx context.Context, _ []string) error {
	if err := c.catalog.Refresh(ctx); err != nil && !c.catalog.Loaded() {
		return nil
	}
	products := c.catalog.Products()
	if len(products) == 0 {
		c.printf("No hay productos.\n")
		return nil
	}
	rows := make([]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, fmt.Sprintf("%d\t%s\t%s\t%s\t%s\t%s\t%s",
			p.ID, p.Name, p.Category, c.money(p.BuyingPrice), c.money(p.SellingPrice), margin(p), c.stockCell(p.StockQuantity)))
	}
	c.table("ID\tPRODUCTO\tCATEGORÍA\tCOMPRA\tVENTA\tMARGEN\tSTOCK", rows)
	return nil
}

func (c *Console) cmdCreateProduct(ctx context.Context, _ []string) error {
	req, err := c.productForm(ctx, entity.Product{})
	if err != nil {
		return err
	}
	p, err := c.backend.CreateProduct(ctx, req)
	if err != nil {
		return fmt.Errorf("crear producto: %w", err)
	}
	c.printf("Producto #%d creado: %s\n", p.ID, p.Name)
	_ = c.catalog.Refresh(ctx)
	return nil
}

func (c *Console) cmdUpdateProduct(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	current, ok := c.catalog.Find(id)
	if !ok {
		return fmt.Errorf("producto %d no está en el catálogo", id)
	}
	req, err := c.productForm(ctx, current)
	if err != nil {
		return err
	}
	p, err := c.backend.UpdateProduct(ctx, id, req)
	if err != nil {
		return fmt.Errorf("actualizar producto: %w", err)
	}
	c.printf("Producto #%d actualizado: %s\n", p.ID, p.Name)
	_ = c.catalog.Refresh(ctx)
	return nil
}

func (c *Console) cmdDeleteProduct(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("#%d", id)
	if p, ok := c.catalog.Find(id); ok {
		name = p.Name
	}
	answer, ok := c.ask(ctx, fmt.Sprintf("¿Eliminar %s? (s/n)", name), "n")
	if !ok || !strings.EqualFold(answer, "s") {
		c.printf("Eliminación cancelada.\n")
		return nil
	}
	if err := c.backend.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("eliminar producto: %w", err)
	}
	c.printf("Producto %s eliminado.\n", name)
	_ = c.catalog.Refresh(ctx)
	return nil
}

// productForm pide los campos del producto; los valores de base se ofrecen como default.
func (c *Console) productForm(ctx context.Context, base entity.Product) (dto.ProductRequest, error) {
	var req dto.ProductRequest
	editing := base.ID != 0
	def := func(s string) string {
		if editing {
			return s
		}
		return ""
	}

	name, ok := c.ask(ctx, "Nombre", def(base.Name))
	if !ok {
		return req, errCancelled
	}
	category, ok := c.ask(ctx, "Categoría", def(base.Category))
	if !ok {
		return req, errCancelled
	}
	buying, err := c.askDecimal(ctx, "Precio de compra", def(base.BuyingPrice.StringFixed(2)))
	if err != nil {
		return req, err
	}
	selling, err := c.askDecimal(ctx, "Precio de venta", def(base.SellingPrice.StringFixed(2)))
	if err != nil {
		return req, err
	}
	stockRaw, ok := c.ask(ctx, "Stock", def(strconv.Itoa(base.StockQuantity)))
	if !ok {
		return req, errCancelled
	}
	stock, err := strconv.Atoi(stockRaw)
	if err != nil {
		return req, fmt.Errorf("stock inválido: %q", stockRaw)
	}

	return dto.ProductRequest{
		Name:          name,
		Category:      category,
		BuyingPrice:   buying,
		SellingPrice:  selling,
		StockQuantity: stock,
	}, nil
}

func (c *Console) askDecimal(ctx context.Context, label, def string) (decimal.Decimal, error) {
	raw, ok := c.ask(ctx, label, def)
	if !ok {
		return decimal.Zero, errCancelled
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s inválido: %q", strings.ToLower(label), raw)
	}
	return d, nil
}
