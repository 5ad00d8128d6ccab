package billing_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-pos/internal/application/billing"
	"github.com/jhoicas/tienda-pos/internal/application/dto"
	"github.com/jhoicas/tienda-pos/internal/domain"
	"github.com/jhoicas/tienda-pos/internal/domain/entity"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
	"github.com/jhoicas/tienda-pos/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type fakeMetrics struct {
	sales    int
	rejected []string
}

func (m *fakeMetrics) ObserveSale(_, _ decimal.Decimal, _ int) { m.sales++ }
func (m *fakeMetrics) IncRejected(reason string)               { m.rejected = append(m.rejected, reason) }

func seedProduct(t *testing.T, store *memory.Store, name string, buy, sell int64, stock int) *entity.Product {
	t.Helper()
	p := &entity.Product{
		Name:          name,
		Category:      "Abarrotes",
		BuyingPrice:   decimal.NewFromInt(buy),
		SellingPrice:  decimal.NewFromInt(sell),
		StockQuantity: stock,
	}
	require.NoError(t, store.Products().Create(context.Background(), p))
	return p
}

func stockOf(t *testing.T, store *memory.Store, id int64) int {
	t.Helper()
	p, err := store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.StockQuantity
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests CreateSale
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateSale_CalculaTotalesYDescuentaStock(t *testing.T) {
	store := memory.NewStore()
	arroz := seedProduct(t, store, "Arroz Basmati", 80, 100, 50)
	azucar := seedProduct(t, store, "Azúcar", 38, 50, 80)
	metrics := &fakeMetrics{}
	uc := billing.NewCreateSaleUseCase(store, metrics)

	out, err := uc.CreateSale(context.Background(), dto.CreateSaleRequest{Items: []dto.SaleItemRequest{
		{ProductID: arroz.ID, Quantity: 2},
		{ProductID: azucar.ID, Quantity: 3},
	}})
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(350).Equal(out.TotalAmount), "2×100 + 3×50")
	assert.True(t, decimal.NewFromInt(76).Equal(out.Profit), "2×20 + 3×12")
	require.Len(t, out.Items, 2)
	assert.Equal(t, "Arroz Basmati", out.Items[0].ProductName)
	assert.NotZero(t, out.ID)
	assert.Equal(t, 5, out.ItemCount())

	assert.Equal(t, 48, stockOf(t, store, arroz.ID))
	assert.Equal(t, 77, stockOf(t, store, azucar.ID))
	assert.Equal(t, 1, metrics.sales)
}

func TestCreateSale_SinItems(t *testing.T) {
	metrics := &fakeMetrics{}
	uc := billing.NewCreateSaleUseCase(memory.NewStore(), metrics)

	_, err := uc.CreateSale(context.Background(), dto.CreateSaleRequest{})
	assert.ErrorIs(t, err, domain.ErrEmptySale)
	assert.Equal(t, []string{billing.RejectEmpty}, metrics.rejected)
}

func TestCreateSale_ProductoInexistente(t *testing.T) {
	uc := billing.NewCreateSaleUseCase(memory.NewStore(), nil)

	_, err := uc.CreateSale(context.Background(), dto.CreateSaleRequest{Items: []dto.SaleItemRequest{
		{ProductID: 99, Quantity: 1},
	}})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "producto 99 no encontrado")
}

func TestCreateSale_StockInsuficienteNoAplicaNada(t *testing.T) {
	store := memory.NewStore()
	te := seedProduct(t, store, "Té", 120, 150, 10)
	comino := seedProduct(t, store, "Comino", 300, 350, 2)
	metrics := &fakeMetrics{}
	uc := billing.NewCreateSaleUseCase(store, metrics)

	_, err := uc.CreateSale(context.Background(), dto.CreateSaleRequest{Items: []dto.SaleItemRequest{
		{ProductID: te.ID, Quantity: 1},
		{ProductID: comino.ID, Quantity: 3},
	}})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Comino. Disponible: 2")

	assert.Equal(t, 10, stockOf(t, store, te.ID), "rollback: el stock no cambia")
	sales, err := store.Sales().List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, sales)
	assert.Equal(t, []string{billing.RejectInsufficient}, metrics.rejected)
}

func TestCreateSale_AgrupaProductosRepetidos(t *testing.T) {
	store := memory.NewStore()
	sal := seedProduct(t, store, "Sal", 15, 20, 3)
	uc := billing.NewCreateSaleUseCase(store, nil)

	_, err := uc.CreateSale(context.Background(), dto.CreateSaleRequest{Items: []dto.SaleItemRequest{
		{ProductID: sal.ID, Quantity: 2},
		{ProductID: sal.ID, Quantity: 2},
	}})
	require.ErrorIs(t, err, domain.ErrInsufficientStock, "2+2 supera el stock de 3")

	out, err := uc.CreateSale(context.Background(), dto.CreateSaleRequest{Items: []dto.SaleItemRequest{
		{ProductID: sal.ID, Quantity: 1},
		{ProductID: sal.ID, Quantity: 2},
	}})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, 3, out.Items[0].Quantity)
	assert.Equal(t, 0, stockOf(t, store, sal.ID))
}

func TestCreateSale_CantidadInvalida(t *testing.T) {
	uc := billing.NewCreateSaleUseCase(memory.NewStore(), nil)

	_, err := uc.CreateSale(context.Background(), dto.CreateSaleRequest{Items: []dto.SaleItemRequest{
		{ProductID: 1, Quantity: 0},
	}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateSale_CantidadAgrupadaNoDesborda(t *testing.T) {
	store := memory.NewStore()
	arroz := seedProduct(t, store, "Arroz", 60, 80, 10)
	metrics := &fakeMetrics{}
	uc := billing.NewCreateSaleUseCase(store, metrics)

	tests := []struct {
		name  string
		items []dto.SaleItemRequest
	}{
		{"suma que desborda int", []dto.SaleItemRequest{
			{ProductID: arroz.ID, Quantity: math.MaxInt},
			{ProductID: arroz.ID, Quantity: 2},
		}},
		{"línea mayor que INTEGER", []dto.SaleItemRequest{
			{ProductID: arroz.ID, Quantity: math.MaxInt32 + 1},
		}},
		{"suma mayor que INTEGER", []dto.SaleItemRequest{
			{ProductID: arroz.ID, Quantity: math.MaxInt32},
			{ProductID: arroz.ID, Quantity: 1},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := uc.CreateSale(context.Background(), dto.CreateSaleRequest{Items: tt.items})
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Nil(t, out)
			assert.Equal(t, 10, stockOf(t, store, arroz.ID))
		})
	}

	sales, err := store.Sales().List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, sales)
	assert.Equal(t, []string{billing.RejectInvalid, billing.RejectInvalid, billing.RejectInvalid}, metrics.rejected)
}

type failingTx struct{ err error }

func (f failingTx) RunSale(context.Context, func(repository.ProductRepository, repository.SaleRepository) error) error {
	return f.err
}

func TestCreateSale_ErrorDeInfraestructura(t *testing.T) {
	metrics := &fakeMetrics{}
	boom := errors.New("conexión perdida")
	uc := billing.NewCreateSaleUseCase(failingTx{err: boom}, metrics)

	_, err := uc.CreateSale(context.Background(), dto.CreateSaleRequest{Items: []dto.SaleItemRequest{
		{ProductID: 1, Quantity: 1},
	}})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{billing.RejectInternal}, metrics.rejected)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests ListSales / Receipt
// ──────────────────────────────────────────────────────────────────────────────

func TestListSales_MasRecientesPrimeroYLimite(t *testing.T) {
	store := memory.NewStore()
	p := seedProduct(t, store, "Leche", 25, 30, 40)
	create := billing.NewCreateSaleUseCase(store, nil)
	for i := 0; i < 3; i++ {
		_, err := create.CreateSale(context.Background(), dto.CreateSaleRequest{Items: []dto.SaleItemRequest{
			{ProductID: p.ID, Quantity: i + 1},
		}})
		require.NoError(t, err)
	}

	uc := billing.NewListSalesUseCase(store.Sales())
	all, err := uc.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 3, all[0].Items[0].Quantity)

	two, err := uc.List(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)

	missing, err := uc.GetByID(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

type fakeGenerator struct{ got *entity.Sale }

func (g *fakeGenerator) GenerateReceiptPDF(_ context.Context, _ string, sale *entity.Sale) ([]byte, error) {
	g.got = sale
	return []byte("%PDF-1.3"), nil
}

func TestReceipt_VentaExistenteEInexistente(t *testing.T) {
	store := memory.NewStore()
	p := seedProduct(t, store, "Jabón", 25, 35, 70)
	sale, err := billing.NewCreateSaleUseCase(store, nil).CreateSale(context.Background(),
		dto.CreateSaleRequest{Items: []dto.SaleItemRequest{{ProductID: p.ID, Quantity: 1}}})
	require.NoError(t, err)

	gen := &fakeGenerator{}
	uc := billing.NewReceiptUseCase(store.Sales(), gen, "Tienda")

	pdf, name, err := uc.DownloadReceiptPDF(context.Background(), sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(pdf))
	assert.Equal(t, "venta-1.pdf", name)
	require.NotNil(t, gen.got)
	assert.Len(t, gen.got.Items, 1)

	_, _, err = uc.DownloadReceiptPDF(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
