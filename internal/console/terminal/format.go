package terminal

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-pos/internal/domain/entity"
)

// money formatea un importe con el prefijo de moneda y dos decimales.
func (c *Console) money(d decimal.Decimal) string {
	return c.opts.CurrencyPrefix + d.StringFixed(2)
}

// margin margen sobre el costo con un decimal, ej: "25.0%".
func margin(p entity.Product) string {
	return p.ProfitMargin().StringFixed(1) + "%"
}

// clock hora local en formato 12 h, ej: "03:04 PM".
func (c *Console) clock(t time.Time) string {
	return t.In(c.opts.Location).Format("03:04 PM")
}

// stockCell cantidad con la marca de stock bajo cuando corresponde.
func (c *Console) stockCell(qty int) string {
	if qty < c.opts.LowStock {
		return itoa(qty) + " (bajo)"
	}
	return itoa(qty)
}
