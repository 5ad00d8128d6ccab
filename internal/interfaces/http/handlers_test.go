package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/tienda-pos/internal/application/analytics"
	"github.com/jhoicas/tienda-pos/internal/application/billing"
	"github.com/jhoicas/tienda-pos/internal/application/dto"
	"github.com/jhoicas/tienda-pos/internal/application/usecase"
	"github.com/jhoicas/tienda-pos/internal/domain/entity"
	"github.com/jhoicas/tienda-pos/internal/infrastructure/memory"
	"github.com/jhoicas/tienda-pos/internal/infrastructure/metrics"
	"github.com/jhoicas/tienda-pos/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/tienda-pos/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type testEnv struct {
	app   *fiber.App
	store *memory.Store
	reg   *prometheus.Registry
}

func newTestEnv(t *testing.T, checks map[string]apphttp.HealthCheck) *testEnv {
	t.Helper()
	store := memory.NewStore()
	reg := prometheus.NewRegistry()
	app := apphttp.NewApp(apphttp.RouterDeps{
		AppName:        "Tienda POS",
		ProductUC:      usecase.NewProductUseCase(store.Products()),
		CreateSale:     billing.NewCreateSaleUseCase(store, metrics.NewSaleMetrics(reg)),
		ListSales:      billing.NewListSalesUseCase(store.Sales()),
		Receipt:        billing.NewReceiptUseCase(store.Sales(), pdf.NewMarotoReceiptGenerator("Rs. "), "Tienda POS"),
		DashboardUC:    appanalytics.NewDashboardUseCase(store.Analytics(), store.Sales()),
		ReportUC:       appanalytics.NewReportUseCase(store.Analytics()),
		Idempotency:    memory.NewIdempotencyStore(),
		IdempotencyTTL: 0,
		HTTPMetrics:    metrics.NewHTTPMetrics(reg),
		Gatherer:       reg,
		HealthChecks:   checks,
	})
	return &testEnv{app: app, store: store, reg: reg}
}

func (e *testEnv) seed(t *testing.T, name string, buy, sell string, stock int) *entity.Product {
	t.Helper()
	p := &entity.Product{
		Name:          name,
		Category:      "Abarrotes",
		BuyingPrice:   decimal.RequireFromString(buy),
		SellingPrice:  decimal.RequireFromString(sell),
		StockQuantity: stock,
	}
	require.NoError(t, e.store.Products().Create(context.Background(), p))
	return p
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func decodeError(t *testing.T, raw []byte) dto.ErrorResponse {
	t.Helper()
	var out dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

func TestProducts_CrearYListarOrdenadoPorNombre(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, raw := env.do(t, http.MethodPost, "/api/products",
		`{"name":"Yogur","category":"Lácteos","buying_price":"30.00","selling_price":45,"stock_quantity":12}`, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	var created dto.ProductResponse
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.Positive(t, created.ID)
	assert.True(t, created.SellingPrice.Equal(decimal.NewFromInt(45)))

	env.seed(t, "Arroz", "40", "50", 3)

	resp, raw = env.do(t, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list []dto.ProductResponse
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list, 2)
	assert.Equal(t, "Arroz", list[0].Name)
	assert.Equal(t, "Yogur", list[1].Name)
}

func TestProducts_ValidacionDePrecioNegativo(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, raw := env.do(t, http.MethodPost, "/api/products",
		`{"name":"Pan","category":"Panadería","buying_price":"-1","selling_price":"2","stock_quantity":1}`, nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	e := decodeError(t, raw)
	assert.Equal(t, apphttp.CodeValidation, e.Code)
	assert.Contains(t, e.Detail, "buying_price")
}

func TestProducts_CuerpoInvalido(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, raw := env.do(t, http.MethodPost, "/api/products", `{"name":`, nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apphttp.CodeInvalidBody, decodeError(t, raw).Code)
}

func TestProducts_NoEncontradoEIDInvalido(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, raw := env.do(t, http.MethodGet, "/api/products/999", "", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	e := decodeError(t, raw)
	assert.Equal(t, apphttp.CodeNotFound, e.Code)
	assert.Equal(t, "producto no encontrado", e.Detail)

	resp, raw = env.do(t, http.MethodGet, "/api/products/abc", "", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apphttp.CodeInvalidID, decodeError(t, raw).Code)

	resp, _ = env.do(t, http.MethodPut, "/api/products/999",
		`{"name":"X","category":"Y","buying_price":"1","selling_price":"2","stock_quantity":1}`, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, raw = env.do(t, http.MethodDelete, "/api/products/999", "", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "producto no encontrado", decodeError(t, raw).Detail)
}

func TestProducts_ActualizarYEliminar(t *testing.T) {
	env := newTestEnv(t, nil)
	p := env.seed(t, "Leche", "20", "25", 10)

	resp, raw := env.do(t, http.MethodPut, "/api/products/1",
		`{"name":"Leche entera","category":"Lácteos","buying_price":"21","selling_price":"26.5","stock_quantity":8}`, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	var updated dto.ProductResponse
	require.NoError(t, json.Unmarshal(raw, &updated))
	assert.Equal(t, p.ID, updated.ID)
	assert.Equal(t, "Leche entera", updated.Name)
	assert.Equal(t, 8, updated.StockQuantity)

	resp, _ = env.do(t, http.MethodDelete, "/api/products/1", "", nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/api/products/1", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestProducts_NoSeEliminaConHistorialDeVentas(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seed(t, "Azúcar", "38", "50", 10)

	resp, raw := env.do(t, http.MethodPost, "/api/sales", `{"items":[{"product_id":1,"quantity":1}]}`, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))

	resp, raw = env.do(t, http.MethodDelete, "/api/products/1", "", nil)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	e := decodeError(t, raw)
	assert.Equal(t, apphttp.CodeHasSalesHistory, e.Code)
	assert.Contains(t, e.Detail, "historial de ventas")
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas
// ──────────────────────────────────────────────────────────────────────────────

func TestSales_CrearCalculaTotalesYDescuentaStock(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seed(t, "Arroz", "80", "100", 50)
	env.seed(t, "Azúcar", "38", "50", 80)

	resp, raw := env.do(t, http.MethodPost, "/api/sales",
		`{"items":[{"product_id":1,"quantity":2},{"product_id":2,"quantity":3}]}`, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))

	var sale dto.SaleResponse
	require.NoError(t, json.Unmarshal(raw, &sale))
	assert.Equal(t, int64(1), sale.ID)
	assert.True(t, sale.TotalAmount.Equal(decimal.NewFromInt(350)), sale.TotalAmount.String())
	assert.True(t, sale.Profit.Equal(decimal.NewFromInt(76)), sale.Profit.String())
	require.Len(t, sale.Items, 2)
	assert.Equal(t, 5, sale.ItemCount())

	p, err := env.store.Products().GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 48, p.StockQuantity)
}

func TestSales_Rechazos(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seed(t, "Comino", "10", "15", 2)

	cases := []struct {
		name   string
		body   string
		status int
		code   string
		detail string
	}{
		{"sin items", `{"items":[]}`, fiber.StatusBadRequest, apphttp.CodeEmptySale, "al menos un ítem"},
		{"items ausente", `{}`, fiber.StatusBadRequest, apphttp.CodeEmptySale, "al menos un ítem"},
		{"cantidad cero", `{"items":[{"product_id":1,"quantity":0}]}`, fiber.StatusBadRequest, apphttp.CodeValidation, "items[0].quantity"},
		{"cantidad mayor que INTEGER", `{"items":[{"product_id":1,"quantity":2147483648}]}`, fiber.StatusBadRequest, apphttp.CodeValidation, "items[0].quantity"},
		{"suma que desborda", `{"items":[{"product_id":1,"quantity":2147483647},{"product_id":1,"quantity":1}]}`, fiber.StatusBadRequest, apphttp.CodeValidation, "supera"},
		{"producto inexistente", `{"items":[{"product_id":99,"quantity":1}]}`, fiber.StatusNotFound, apphttp.CodeNotFound, "producto 99 no encontrado"},
		{"stock insuficiente", `{"items":[{"product_id":1,"quantity":3}]}`, fiber.StatusBadRequest, apphttp.CodeInsufficientStock, "stock insuficiente para Comino. Disponible: 2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, raw := env.do(t, http.MethodPost, "/api/sales", tc.body, nil)
			require.Equal(t, tc.status, resp.StatusCode, string(raw))
			e := decodeError(t, raw)
			assert.Equal(t, tc.code, e.Code)
			assert.Contains(t, e.Detail, tc.detail)
		})
	}

	p, err := env.store.Products().GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, p.StockQuantity, "los rechazos no deben tocar el stock")
}

func TestSales_IdempotencyKeyRepiteLaRespuesta(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seed(t, "Arroz", "80", "100", 5)
	body := `{"items":[{"product_id":1,"quantity":2}]}`
	headers := map[string]string{apphttp.HeaderIdempotencyKey: "key-1"}

	resp1, raw1 := env.do(t, http.MethodPost, "/api/sales", body, headers)
	require.Equal(t, fiber.StatusCreated, resp1.StatusCode)

	resp2, raw2 := env.do(t, http.MethodPost, "/api/sales", body, headers)
	require.Equal(t, fiber.StatusCreated, resp2.StatusCode)
	assert.Equal(t, "true", resp2.Header.Get(apphttp.HeaderIdempotentReplay))
	assert.JSONEq(t, string(raw1), string(raw2))

	sales, err := env.store.Sales().List(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, sales, 1, "la repetición no debe registrar otra venta")
	p, _ := env.store.Products().GetByID(context.Background(), 1)
	assert.Equal(t, 3, p.StockQuantity)

	resp3, raw3 := env.do(t, http.MethodPost, "/api/sales", `{"items":[{"product_id":1,"quantity":1}]}`, headers)
	require.Equal(t, fiber.StatusConflict, resp3.StatusCode)
	assert.Equal(t, apphttp.CodeIdempotencyConflict, decodeError(t, raw3).Code)
}

func TestSales_IdempotencyNoGuardaRechazos(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seed(t, "Arroz", "80", "100", 1)
	body := `{"items":[{"product_id":1,"quantity":2}]}`
	headers := map[string]string{apphttp.HeaderIdempotencyKey: "key-2"}

	resp, _ := env.do(t, http.MethodPost, "/api/sales", body, headers)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Se repone stock y se reintenta con la misma clave: debe procesarse de nuevo.
	p, _ := env.store.Products().GetByID(context.Background(), 1)
	p.StockQuantity = 5
	require.NoError(t, env.store.Products().Update(context.Background(), p))

	resp, raw := env.do(t, http.MethodPost, "/api/sales", body, headers)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	assert.Empty(t, resp.Header.Get(apphttp.HeaderIdempotentReplay))
}

func TestSales_ListarYObtener(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seed(t, "Arroz", "80", "100", 50)
	for i := 0; i < 3; i++ {
		resp, _ := env.do(t, http.MethodPost, "/api/sales", `{"items":[{"product_id":1,"quantity":1}]}`, nil)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	resp, raw := env.do(t, http.MethodGet, "/api/sales?limit=2", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list []dto.SaleResponse
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list, 2)
	assert.Equal(t, int64(3), list[0].ID, "más recientes primero")

	resp, raw = env.do(t, http.MethodGet, "/api/sales/2", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var sale dto.SaleResponse
	require.NoError(t, json.Unmarshal(raw, &sale))
	assert.Equal(t, int64(2), sale.ID)

	resp, _ = env.do(t, http.MethodGet, "/api/sales/42", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSales_ComprobantePDF(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seed(t, "Arroz", "80", "100", 50)
	resp, _ := env.do(t, http.MethodPost, "/api/sales", `{"items":[{"product_id":1,"quantity":1}]}`, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, raw := env.do(t, http.MethodGet, "/api/sales/1/receipt", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "venta-1.pdf")
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))

	resp, _ = env.do(t, http.MethodGet, "/api/sales/7/receipt", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Dashboard, reportes, salud y métricas
// ──────────────────────────────────────────────────────────────────────────────

func TestDashboardYReportes(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seed(t, "Arroz", "80", "100", 50)
	resp, _ := env.do(t, http.MethodPost, "/api/sales", `{"items":[{"product_id":1,"quantity":2}]}`, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, raw := env.do(t, http.MethodGet, "/api/dashboard/stats", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var stats dto.DashboardStats
	require.NoError(t, json.Unmarshal(raw, &stats))
	assert.Equal(t, 1, stats.DailyTransactions)
	assert.True(t, stats.DailyRevenue.Equal(decimal.NewFromInt(200)))
	assert.True(t, stats.DailyProfit.Equal(decimal.NewFromInt(40)))

	resp, raw = env.do(t, http.MethodGet, "/api/dashboard/today-transactions", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var today []dto.SaleResponse
	require.NoError(t, json.Unmarshal(raw, &today))
	require.Len(t, today, 1)

	resp, raw = env.do(t, http.MethodGet, "/api/reports/summary", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var summary dto.ReportSummary
	require.NoError(t, json.Unmarshal(raw, &summary))
	assert.Equal(t, 1, summary.TotalTransactions)

	resp, raw = env.do(t, http.MethodGet, "/api/reports/stock", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var stock []dto.StockItem
	require.NoError(t, json.Unmarshal(raw, &stock))
	require.Len(t, stock, 1)
	assert.Equal(t, 48, stock[0].StockQuantity)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, path := range []string{"/api/health", "/health"} {
		resp, raw := env.do(t, http.MethodGet, path, "", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var h dto.HealthResponse
		require.NoError(t, json.Unmarshal(raw, &h))
		assert.Equal(t, "healthy", h.Status)
	}

	failing := newTestEnv(t, map[string]apphttp.HealthCheck{
		"postgres": func(context.Context) error { return errors.New("connection refused") },
		"redis":    func(context.Context) error { return nil },
	})
	resp, raw := failing.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	var h dto.HealthResponse
	require.NoError(t, json.Unmarshal(raw, &h))
	assert.False(t, h.Healthy())
	assert.Equal(t, "postgres no disponible", h.Message)
	assert.Equal(t, map[string]string{"postgres": "connection refused", "redis": "ok"}, h.Checks)
}

func TestRutaInexistente_RespondeErrorJSON(t *testing.T) {
	env := newTestEnv(t, nil)
	resp, raw := env.do(t, http.MethodGet, "/api/nada", "", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, apphttp.CodeNotFound, decodeError(t, raw).Code)
}

func TestRequestID_SeReutilizaOSeGenera(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, _ := env.do(t, http.MethodGet, "/api/health", "", map[string]string{apphttp.HeaderRequestID: "req-123"})
	assert.Equal(t, "req-123", resp.Header.Get(apphttp.HeaderRequestID))

	resp, _ = env.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Len(t, resp.Header.Get(apphttp.HeaderRequestID), 36)
}

func TestMetrics_ExponeContadores(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seed(t, "Arroz", "80", "100", 5)
	env.do(t, http.MethodPost, "/api/sales", `{"items":[{"product_id":1,"quantity":1}]}`, nil)
	env.do(t, http.MethodGet, "/api/products", "", nil)

	resp, raw := env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := string(raw)
	assert.Contains(t, body, "pos_sales_total 1")
	assert.Contains(t, body, `pos_http_requests_total{method="GET",route="/api/products`)
}
