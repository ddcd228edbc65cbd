package prometheus

// AppMetrics holds all application metrics.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Reaction domain
	ReactionsCreatedTotal        CounterVec
	BalanceChecksTotal           CounterVec
	MultiplicityResolutionsTotal CounterVec
	AtomMapDuration              HistogramVec
	AtomMapCacheHitsTotal        CounterVec
	AtomMapCacheMissesTotal      CounterVec
	ReactionsTotal               GaugeVec

	// Infrastructure layer
	DBQueryDuration      HistogramVec
	EventPublishTotal    CounterVec
	EventPublishFailures CounterVec
	GeometryUploadsTotal CounterVec

	// System health
	ErrorsTotal CounterVec
}

// Default buckets.
var (
	DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	// Exhaustive 3-D alignment is slow; buckets stretch into minutes.
	DefaultAlignDurationBuckets = []float64{.5, 1, 5, 15, 30, 60, 120, 300, 600}
	DefaultDBDurationBuckets    = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// NewAppMetrics registers all metrics and returns an AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method", "path")

	// Reaction domain
	m.ReactionsCreatedTotal = collector.RegisterCounter("reactions_created_total", "Reactions created")
	m.BalanceChecksTotal = collector.RegisterCounter("balance_checks_total", "Atom balance checks", "result")
	m.MultiplicityResolutionsTotal = collector.RegisterCounter("multiplicity_resolutions_total", "Surface multiplicity resolutions", "status")
	m.AtomMapDuration = collector.RegisterHistogram("atom_map_duration_seconds", "Atom map computation duration", DefaultAlignDurationBuckets)
	m.AtomMapCacheHitsTotal = collector.RegisterCounter("atom_map_cache_hits_total", "Atom map cache hits")
	m.AtomMapCacheMissesTotal = collector.RegisterCounter("atom_map_cache_misses_total", "Atom map cache misses")
	m.ReactionsTotal = collector.RegisterGauge("reactions_total", "Stored reactions")

	// Infrastructure
	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "operation")
	m.EventPublishTotal = collector.RegisterCounter("event_publish_total", "Domain events published", "topic")
	m.EventPublishFailures = collector.RegisterCounter("event_publish_failures_total", "Domain event publish failures", "topic")
	m.GeometryUploadsTotal = collector.RegisterCounter("geometry_uploads_total", "Geometry blobs archived", "kind")

	// System health
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Errors by code", "code")

	return m
}

// ─────────────────────────────────────────────────────────────────────────────
// ReactionMetrics — the domain-facing metrics sink
// ─────────────────────────────────────────────────────────────────────────────

// ReactionMetrics adapts AppMetrics to the metrics capability the reaction
// domain service expects.  It satisfies reaction.Metrics.
type ReactionMetrics struct {
	app *AppMetrics
}

// NewReactionMetrics builds the domain-facing metrics sink.
func NewReactionMetrics(app *AppMetrics) *ReactionMetrics {
	return &ReactionMetrics{app: app}
}

func (m *ReactionMetrics) ObserveBalanceCheck(balanced bool) {
	result := "balanced"
	if !balanced {
		result = "imbalanced"
	}
	m.app.BalanceChecksTotal.WithLabelValues(result).Inc()
}

func (m *ReactionMetrics) ObserveMultiplicityResolution(status string) {
	m.app.MultiplicityResolutionsTotal.WithLabelValues(status).Inc()
}

func (m *ReactionMetrics) ObserveAtomMapLatency(seconds float64) {
	m.app.AtomMapDuration.WithLabelValues().Observe(seconds)
}

func (m *ReactionMetrics) ObserveReactionCreated() {
	m.app.ReactionsCreatedTotal.WithLabelValues().Inc()
}
