// Package posapi es el cliente HTTP de la consola de caja contra el backend REST (/api).
package posapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jhoicas/tienda-pos/internal/application/dto"
)

const (
	headerRequestID      = "X-Request-ID"
	headerIdempotencyKey = "Idempotency-Key"

	maxResponseBytes = 8 << 20
)

// ErrUnavailable el backend no respondió (red, timeout, cancelación).
var ErrUnavailable = errors.New("backend no disponible")

// APIError respuesta no-2xx del backend.
type APIError struct {
	Status int
	Code   string
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("el backend respondió HTTP %d", e.Status)
}

// IsNotFound indica si err es un 404 del backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client cliente JSON-over-HTTP. Seguro para uso concurrente.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New construye el cliente. baseURL incluye el prefijo /api (ej: http://localhost:8080/api).
// timeout <= 0 deja el cliente sin límite propio; el contexto de cada llamada sigue aplicando.
func New(baseURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

// NewWithHTTPClient permite inyectar el *http.Client (tests, transporte propio).
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: hc}
}

// ── Productos ─────────────────────────────────────────────────────────────────

// ListProducts GET /products.
func (c *Client) ListProducts(ctx context.Context) ([]dto.ProductResponse, error) {
	var out []dto.ProductResponse
	if err := c.do(ctx, http.MethodGet, "/products", nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProduct GET /products/{id}.
func (c *Client) GetProduct(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	var out dto.ProductResponse
	if err := c.do(ctx, http.MethodGet, "/products/"+strconv.FormatInt(id, 10), nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProduct POST /products.
func (c *Client) CreateProduct(ctx context.Context, in dto.ProductRequest) (*dto.ProductResponse, error) {
	var out dto.ProductResponse
	if err := c.do(ctx, http.MethodPost, "/products", in, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProduct PUT /products/{id} (reemplazo completo).
func (c *Client) UpdateProduct(ctx context.Context, id int64, in dto.ProductRequest) (*dto.ProductResponse, error) {
	var out dto.ProductResponse
	if err := c.do(ctx, http.MethodPut, "/products/"+strconv.FormatInt(id, 10), in, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProduct DELETE /products/{id}.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/products/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

// ── Ventas ────────────────────────────────────────────────────────────────────

// CreateSale POST /sales. idempotencyKey vacío = sin cabecera Idempotency-Key.
func (c *Client) CreateSale(ctx context.Context, in dto.CreateSaleRequest, idempotencyKey string) (*dto.SaleResponse, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{headerIdempotencyKey: idempotencyKey}
	}
	var out dto.SaleResponse
	if err := c.do(ctx, http.MethodPost, "/sales", in, &out, headers); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSales GET /sales?limit=N. limit <= 0 usa el valor por defecto del backend.
func (c *Client) ListSales(ctx context.Context, limit int) ([]dto.SaleResponse, error) {
	path := "/sales"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	var out []dto.SaleResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// DownloadReceipt GET /sales/{id}/receipt; devuelve el PDF.
func (c *Client) DownloadReceipt(ctx context.Context, id int64) ([]byte, error) {
	return c.send(ctx, http.MethodGet, "/sales/"+strconv.FormatInt(id, 10)+"/receipt", nil, nil)
}

// ── Dashboard y reportes ──────────────────────────────────────────────────────

// DashboardStats GET /dashboard/stats.
func (c *Client) DashboardStats(ctx context.Context) (*dto.DashboardStats, error) {
	var out dto.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/dashboard/stats", nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// TodayTransactions GET /dashboard/today-transactions.
func (c *Client) TodayTransactions(ctx context.Context) ([]dto.SaleResponse, error) {
	var out []dto.SaleResponse
	if err := c.do(ctx, http.MethodGet, "/dashboard/today-transactions", nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// ReportSummary GET /reports/summary.
func (c *Client) ReportSummary(ctx context.Context) (*dto.ReportSummary, error) {
	var out dto.ReportSummary
	if err := c.do(ctx, http.MethodGet, "/reports/summary", nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// StockReport GET /reports/stock.
func (c *Client) StockReport(ctx context.Context) ([]dto.StockItem, error) {
	var out []dto.StockItem
	if err := c.do(ctx, http.MethodGet, "/reports/stock", nil, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// Health GET /health.
func (c *Client) Health(ctx context.Context) (*dto.HealthResponse, error) {
	var out dto.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// ── Transporte ────────────────────────────────────────────────────────────────

func (c *Client) do(ctx context.Context, method, path string, in, out any, headers map[string]string) error {
	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("posapi: serializar request: %w", err)
		}
	}
	raw, err := c.send(ctx, method, path, body, headers)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("posapi: deserializar respuesta de %s %s: %w", method, path, err)
	}
	return nil
}

// send ejecuta la petición y devuelve el cuerpo de una respuesta 2xx.
func (c *Client) send(ctx context.Context, method, path string, body []byte, headers map[string]string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("posapi: crear HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, path, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: leer respuesta: %w", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeAPIError(resp.StatusCode, raw)
	}
	return raw, nil
}

// errorPayload acepta {code, detail} y la variante {code, message}.
type errorPayload struct {
	Code    string          `json:"code"`
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

// maxRawDetail caracteres de un cuerpo no JSON que se muestran al operador.
const maxRawDetail = 200

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func decodeAPIError(status int, raw []byte) *APIError {
	apiErr := &APIError{Status: status}
	var p errorPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		apiErr.Detail = truncateRunes(strings.TrimSpace(string(raw)), maxRawDetail)
		return apiErr
	}
	apiErr.Code = p.Code
	var detail string
	if len(p.Detail) > 0 && json.Unmarshal(p.Detail, &detail) == nil {
		apiErr.Detail = detail
	} else if len(p.Detail) > 0 && string(p.Detail) != "null" {
		apiErr.Detail = string(p.Detail)
	}
	if apiErr.Detail == "" {
		apiErr.Detail = p.Message
	}
	return apiErr
}
