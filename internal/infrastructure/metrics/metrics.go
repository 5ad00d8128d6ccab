// Package metrics expone las métricas Prometheus del backend (ventas y HTTP).
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-pos/internal/application/billing"
)

const namespace = "pos"

var _ billing.SaleMetrics = (*SaleMetrics)(nil)

// SaleMetrics contadores de ventas confirmadas y rechazadas.
type SaleMetrics struct {
	sales    prometheus.Counter
	revenue  prometheus.Counter
	profit   prometheus.Counter
	items    prometheus.Histogram
	rejected *prometheus.CounterVec
}

// NewSaleMetrics registra las métricas de ventas en reg. Con reg nil devuelve un colector inerte.
func NewSaleMetrics(reg prometheus.Registerer) *SaleMetrics {
	if reg == nil {
		return &SaleMetrics{}
	}
	m := &SaleMetrics{
		sales: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_total",
			Help:      "Ventas confirmadas.",
		}),
		revenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_revenue_total",
			Help:      "Ingresos acumulados de las ventas confirmadas.",
		}),
		profit: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_profit_total",
			Help:      "Ganancia acumulada de las ventas confirmadas.",
		}),
		items: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sale_items",
			Help:      "Unidades por venta.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_rejected_total",
			Help:      "Ventas rechazadas por motivo.",
		}, []string{"reason"}),
	}
	reg.MustRegister(m.sales, m.revenue, m.profit, m.items, m.rejected)
	return m
}

// ObserveSale registra una venta confirmada.
func (m *SaleMetrics) ObserveSale(amount, profit decimal.Decimal, items int) {
	if m == nil || m.sales == nil {
		return
	}
	m.sales.Inc()
	// Counter.Add entra en pánico con valores negativos; una ganancia negativa no se suma.
	if a := amount.InexactFloat64(); a > 0 {
		m.revenue.Add(a)
	}
	if p := profit.InexactFloat64(); p > 0 {
		m.profit.Add(p)
	}
	m.items.Observe(float64(items))
}

// IncRejected cuenta una venta rechazada.
func (m *SaleMetrics) IncRejected(reason string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

// HTTPMetrics contadores y latencias de las peticiones HTTP.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registra las métricas HTTP en reg. Con reg nil devuelve un colector inerte.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP atendidas.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latencia de las peticiones HTTP en segundos.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// Observe registra una petición. route es el patrón de la ruta (/api/products/:id), no la URL.
func (m *HTTPMetrics) Observe(method, route string, status int, elapsed time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	route = normalizeLabel(route)
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
