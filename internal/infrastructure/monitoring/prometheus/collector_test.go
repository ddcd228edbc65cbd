package prometheus

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/ChemRxn-Core/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	cfg := CollectorConfig{
		Namespace:            "test",
		Subsystem:            "unit",
		EnableGoMetrics:      false,
		EnableProcessMetrics: false,
	}
	c, err := NewMetricsCollector(cfg, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrapeMetrics(t *testing.T, collector MetricsCollector) string {
	handler := collector.Handler()
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewMetricsCollector_ValidConfig(t *testing.T) {
	c := newTestCollector(t)
	assert.NotNil(t, c)
}

func TestNewMetricsCollector_EmptyNamespace(t *testing.T) {
	cfg := CollectorConfig{
		Subsystem: "unit",
	}
	_, err := NewMetricsCollector(cfg, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestNewMetricsCollector_WithProcessMetrics(t *testing.T) {
	cfg := CollectorConfig{
		Namespace:            "test",
		EnableProcessMetrics: true,
	}
	c, err := NewMetricsCollector(cfg, logging.NewNopLogger())
	require.NoError(t, err)
	output := scrapeMetrics(t, c)
	assert.Contains(t, output, "process_cpu_seconds_total")
}

func TestRegisterCounter_Success(t *testing.T) {
	c := newTestCollector(t)
	counter := c.RegisterCounter("requests_total", "Total requests")
	counter.WithLabelValues().Inc()

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, "test_unit_requests_total")
}

func TestRegisterCounter_WithLabels(t *testing.T) {
	c := newTestCollector(t)
	counter := c.RegisterCounter("http_requests", "HTTP requests", "method")
	counter.WithLabelValues("GET").Add(5)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, "test_unit_http_requests{method=\"GET\"}")
}

func TestRegisterCounter_DuplicateReturnsExisting(t *testing.T) {
	c := newTestCollector(t)
	c1 := c.RegisterCounter("dup_counter", "help")
	c2 := c.RegisterCounter("dup_counter", "help")
	require.NotNil(t, c1)
	require.NotNil(t, c2)

	c1.WithLabelValues().Inc()
	c2.WithLabelValues().Inc()

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, "test_unit_dup_counter 2")
}

func TestRegisterGauge(t *testing.T) {
	c := newTestCollector(t)
	gauge := c.RegisterGauge("queue_depth", "Queue depth", "queue")
	gauge.WithLabelValues("alignment").Set(12)
	gauge.WithLabelValues("alignment").Dec()

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, "test_unit_queue_depth{queue=\"alignment\"} 11")
}

func TestRegisterHistogram(t *testing.T) {
	c := newTestCollector(t)
	hist := c.RegisterHistogram("op_duration_seconds", "Op duration", []float64{0.1, 1, 10})
	hist.WithLabelValues().Observe(0.5)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, "test_unit_op_duration_seconds_count 1")
}

func TestRegisterHistogram_NilBucketsUseDefaults(t *testing.T) {
	c := newTestCollector(t)
	hist := c.RegisterHistogram("default_buckets_seconds", "help", nil)
	hist.WithLabelValues().Observe(0.2)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, "test_unit_default_buckets_seconds_bucket")
}

func TestTimer_ObserveDuration(t *testing.T) {
	c := newTestCollector(t)
	hist := c.RegisterHistogram("timed_op_seconds", "help", nil)

	timer := NewTimer(hist.WithLabelValues())
	time.Sleep(time.Millisecond)
	timer.ObserveDuration()

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, "test_unit_timed_op_seconds_count 1")
}

func TestTimer_NilHistogramIsSafe(t *testing.T) {
	timer := &Timer{}
	assert.NotPanics(t, timer.ObserveDuration)
}
