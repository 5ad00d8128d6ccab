package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-pos/internal/application/dto"
	"github.com/jhoicas/tienda-pos/internal/console/catalog"
)

func TestRefresh_ReemplazaLaCopia(t *testing.T) {
	src := &fakeLister{products: sampleProducts()}
	c := catalog.New(src)
	var events []catalog.Event
	c.Subscribe(func(e catalog.Event) { events = append(events, e) })

	require.NoError(t, c.Refresh(context.Background()))

	assert.True(t, c.Loaded())
	assert.Equal(t, 4, c.Len())
	require.Len(t, events, 1)
	assert.Equal(t, catalog.CatalogRefreshed, events[0].Kind)
	assert.Equal(t, 4, events[0].Count)

	src.products = src.products[:1]
	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, 1, c.Len())
	_, ok := c.Find(2)
	assert.False(t, ok)
}

func TestRefresh_FallaConservaCopiaAnterior(t *testing.T) {
	src := &fakeLister{products: sampleProducts()}
	c := catalog.New(src)
	require.NoError(t, c.Refresh(context.Background()))
	before := c.Products()

	var events []catalog.Event
	c.Subscribe(func(e catalog.Event) { events = append(events, e) })
	src.err = errors.New("connection refused")

	err := c.Refresh(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrCatalogUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, before, c.Products())
	require.Len(t, events, 1)
	assert.Equal(t, catalog.CatalogUnavailable, events[0].Kind)
	assert.Equal(t, 4, events[0].Count)
	assert.ErrorIs(t, events[0].Err, catalog.ErrCatalogUnavailable)
}

func TestRefresh_PrimeraCargaFallida(t *testing.T) {
	c := catalog.New(&fakeLister{err: errors.New("timeout")})

	err := c.Refresh(context.Background())

	assert.ErrorIs(t, err, catalog.ErrCatalogUnavailable)
	assert.False(t, c.Loaded())
	assert.Empty(t, c.Products())
}

func TestFilter(t *testing.T) {
	c := loadedCache(t)

	tests := []struct {
		name string
		term string
		want []int64
	}{
		{"vacío devuelve todo en orden", "", []int64{1, 2, 3, 4}},
		{"en blanco devuelve todo", "   ", []int64{1, 2, 3, 4}},
		{"por nombre sin mayúsculas", "ARROZ", []int64{1}},
		{"por categoría", "lácteos", []int64{2, 3}},
		{"plegado unicode", "LÁCTEOS", []int64{2, 3}},
		{"subcadena", "ech", []int64{2}},
		{"sin coincidencias", "detergente", []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make([]int64, 0)
			for _, p := range c.Filter(tt.term) {
				got = append(got, p.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFind(t *testing.T) {
	c := loadedCache(t)

	p, ok := c.Find(3)
	require.True(t, ok)
	assert.Equal(t, "Queso", p.Name)
	assert.True(t, decimal.RequireFromString("12.50").Equal(p.SellingPrice))
	assert.Equal(t, 0, p.StockQuantity)

	_, ok = c.Find(99)
	assert.False(t, ok)
}

func TestProducts_DevuelveCopia(t *testing.T) {
	c := loadedCache(t)

	ps := c.Products()
	ps[0].Name = "modificado"

	p, _ := c.Find(1)
	assert.Equal(t, "Arroz", p.Name)
}

func TestSubscribe_Baja(t *testing.T) {
	c := catalog.New(&fakeLister{products: sampleProducts()})
	calls := 0
	unsubscribe := c.Subscribe(func(catalog.Event) { calls++ })

	require.NoError(t, c.Refresh(context.Background()))
	unsubscribe()
	require.NoError(t, c.Refresh(context.Background()))

	assert.Equal(t, 1, calls)
}

// ─── Helpers de test ──────────────────────────────────────────────────────────

type fakeLister struct {
	products []dto.ProductResponse
	err      error
}

func (f *fakeLister) ListProducts(context.Context) ([]dto.ProductResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]dto.ProductResponse, len(f.products))
	copy(out, f.products)
	return out, nil
}

func sampleProducts() []dto.ProductResponse {
	return []dto.ProductResponse{
		{ID: 1, Name: "Arroz", Category: "Granos", BuyingPrice: decimal.RequireFromString("40"), SellingPrice: decimal.RequireFromString("50"), StockQuantity: 100},
		{ID: 2, Name: "Leche", Category: "Lácteos", BuyingPrice: decimal.RequireFromString("20"), SellingPrice: decimal.RequireFromString("25"), StockQuantity: 3},
		{ID: 3, Name: "Queso", Category: "Lácteos", BuyingPrice: decimal.RequireFromString("10"), SellingPrice: decimal.RequireFromString("12.50"), StockQuantity: 0},
		{ID: 4, Name: "Pan", Category: "Panadería", BuyingPrice: decimal.RequireFromString("15"), SellingPrice: decimal.RequireFromString("20"), StockQuantity: 30},
	}
}

func loadedCache(t *testing.T) *catalog.Cache {
	t.Helper()
	c := catalog.New(&fakeLister{products: sampleProducts()})
	require.NoError(t, c.Refresh(context.Background()))
	return c
}
