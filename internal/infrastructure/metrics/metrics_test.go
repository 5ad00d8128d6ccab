package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaleMetrics_ExportaContadores(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSaleMetrics(reg)

	m.ObserveSale(decimal.RequireFromString("150.50"), decimal.RequireFromString("30.25"), 3)
	m.ObserveSale(decimal.RequireFromString("49.50"), decimal.RequireFromString("-5"), 1)
	m.IncRejected("insufficient_stock")
	m.IncRejected("")

	mfs, err := reg.Gather()
	require.NoError(t, err)

	assert.Equal(t, 2.0, counterValue(t, mfs, "pos_sales_total", "", ""))
	assert.InDelta(t, 200.0, counterValue(t, mfs, "pos_sales_revenue_total", "", ""), 0.001)
	assert.InDelta(t, 30.25, counterValue(t, mfs, "pos_sales_profit_total", "", ""), 0.001)
	assert.Equal(t, 1.0, counterValue(t, mfs, "pos_sales_rejected_total", "reason", "insufficient_stock"))
	assert.Equal(t, 1.0, counterValue(t, mfs, "pos_sales_rejected_total", "reason", "unknown"))

	hist := findMetricFamily(mfs, "pos_sale_items")
	require.NotNil(t, hist)
	assert.Equal(t, uint64(2), hist.GetMetric()[0].GetHistogram().GetSampleCount())
	assert.Equal(t, 4.0, hist.GetMetric()[0].GetHistogram().GetSampleSum())
}

func TestHTTPMetrics_ExportaPeticiones(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.Observe("GET", "/api/products", 200, 20*time.Millisecond)
	m.Observe("GET", "/api/products", 200, 10*time.Millisecond)
	m.Observe("POST", "/api/sales", 400, time.Millisecond)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.Equal(t, 2.0, counterValue(t, mfs, "pos_http_requests_total", "route", "/api/products"))
	assert.Equal(t, 1.0, counterValue(t, mfs, "pos_http_requests_total", "status", "400"))
}

func TestMetrics_ReceptorNilEsInerte(t *testing.T) {
	var s *SaleMetrics
	var h *HTTPMetrics
	assert.NotPanics(t, func() {
		s.ObserveSale(decimal.NewFromInt(1), decimal.NewFromInt(1), 1)
		s.IncRejected("x")
		h.Observe("GET", "/", 200, time.Millisecond)
		NewSaleMetrics(nil).IncRejected("x")
		NewHTTPMetrics(nil).Observe("GET", "/", 200, time.Millisecond)
	})
}

// ─── Helpers de test ──────────────────────────────────────────────────────────

func counterValue(t *testing.T, mfs []*dto.MetricFamily, name, label, value string) float64 {
	t.Helper()
	mf := findMetricFamily(mfs, name)
	require.NotNil(t, mf, fmt.Sprintf("métrica %q no encontrada", name))
	for _, metric := range mf.GetMetric() {
		if label == "" || matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue()
		}
	}
	t.Fatalf("métrica %q sin etiqueta %s=%s", name, label, value)
	return 0
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, l := range labels {
		if l.GetName() == name && l.GetValue() == value {
			return true
		}
	}
	return false
}
