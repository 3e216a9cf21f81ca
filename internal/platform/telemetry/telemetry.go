// Package telemetry provides observability for the monitoring engine using
// only standard library constructs. It exposes metrics (counters, gauges,
// histograms) and a Prometheus text exposition endpoint without importing a
// metrics SDK.
package telemetry

import (
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
)

// Config holds telemetry configuration.
type Config struct {
	ServiceName    string `json:"service_name"`
	ServiceVersion string `json:"service_version"`
	Environment    string `json:"environment"`
	Enabled        *bool  `json:"enabled"` // nil = use default (true)
}

func (c *Config) on() bool {
	if c.Enabled == nil {
		return true
	}
	return *c.Enabled
}

func (c *Config) applyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "pulseward-server"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "0.0.0"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
}

// BoolPtr is a helper to create a *bool for Config fields.
func BoolPtr(b bool) *bool {
	return &b
}

// defaultDurationBuckets are Prometheus-style latency buckets in seconds.
var defaultDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// histogram is a Prometheus-style histogram with fixed bucket boundaries.
type histogram struct {
	boundaries []float64
	counts     []int64
	sum        uint64 // float64 bits, updated via CAS
	count      int64
}

func newHistogram(boundaries []float64) *histogram {
	return &histogram{
		boundaries: boundaries,
		counts:     make([]int64, len(boundaries)),
	}
}

func (h *histogram) Observe(v float64) {
	for i, boundary := range h.boundaries {
		if v <= boundary {
			atomic.AddInt64(&h.counts[i], 1)
			break
		}
	}
	atomic.AddInt64(&h.count, 1)
	atomicAddFloat64(&h.sum, v)
}

func (h *histogram) Count() int64 {
	return atomic.LoadInt64(&h.count)
}

func (h *histogram) Sum() float64 {
	return math.Float64frombits(atomic.LoadUint64(&h.sum))
}

// cumulativeBuckets returns the running totals per bucket, Prometheus style.
func (h *histogram) cumulativeBuckets() []int64 {
	out := make([]int64, len(h.counts))
	var running int64
	for i := range h.counts {
		running += atomic.LoadInt64(&h.counts[i])
		out[i] = running
	}
	return out
}

func atomicAddFloat64(addr *uint64, delta float64) {
	for {
		old := atomic.LoadUint64(addr)
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if atomic.CompareAndSwapUint64(addr, old, next) {
			return
		}
	}
}

type counterStore struct {
	mu       sync.RWMutex
	counters map[string]*int64
}

func newCounterStore() *counterStore {
	return &counterStore{counters: make(map[string]*int64)}
}

func (s *counterStore) inc(key string) {
	s.mu.RLock()
	ctr, ok := s.counters[key]
	s.mu.RUnlock()
	if !ok {
		s.mu.Lock()
		if ctr, ok = s.counters[key]; !ok {
			ctr = new(int64)
			s.counters[key] = ctr
		}
		s.mu.Unlock()
	}
	atomic.AddInt64(ctr, 1)
}

func (s *counterStore) get(key string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ctr, ok := s.counters[key]; ok {
		return atomic.LoadInt64(ctr)
	}
	return 0
}

func (s *counterStore) snapshot() map[string]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int64, len(s.counters))
	for k, v := range s.counters {
		out[k] = atomic.LoadInt64(v)
	}
	return out
}

type gaugeStore struct {
	mu     sync.RWMutex
	gauges map[string]*int64
}

func newGaugeStore() *gaugeStore {
	return &gaugeStore{gauges: make(map[string]*int64)}
}

func (s *gaugeStore) gauge(name string) *int64 {
	s.mu.RLock()
	g, ok := s.gauges[name]
	s.mu.RUnlock()
	if ok {
		return g
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok = s.gauges[name]; ok {
		return g
	}
	g = new(int64)
	s.gauges[name] = g
	return g
}

func (s *gaugeStore) set(name string, val int64)   { atomic.StoreInt64(s.gauge(name), val) }
func (s *gaugeStore) add(name string, delta int64) { atomic.AddInt64(s.gauge(name), delta) }
func (s *gaugeStore) get(name string) int64        { return atomic.LoadInt64(s.gauge(name)) }

// Provider owns all metric state for the process.
type Provider struct {
	cfg      Config
	counters *counterStore
	gauges   *gaugeStore

	histMu     sync.RWMutex
	histograms map[string]*histogram
}

// NewProvider creates a telemetry provider with defaults applied.
func NewProvider(cfg Config) *Provider {
	cfg.applyDefaults()
	return &Provider{
		cfg:        cfg,
		counters:   newCounterStore(),
		gauges:     newGaugeStore(),
		histograms: make(map[string]*histogram),
	}
}

func (p *Provider) getOrCreateHistogram(name string, boundaries []float64) *histogram {
	p.histMu.RLock()
	h, ok := p.histograms[name]
	p.histMu.RUnlock()
	if ok {
		return h
	}
	p.histMu.Lock()
	defer p.histMu.Unlock()
	if h, ok = p.histograms[name]; ok {
		return h
	}
	h = newHistogram(boundaries)
	p.histograms[name] = h
	return h
}

// AlertCounter increments the alert counter for a severity and source.
func (p *Provider) AlertCounter(severity, source string) {
	if !p.cfg.on() {
		return
	}
	p.counters.inc("alerts.raised|" + severity + "|" + source)
}

// EvaluationCounter increments the completed-evaluation counter per triage
// outcome.
func (p *Provider) EvaluationCounter(triageLevel string) {
	if !p.cfg.on() {
		return
	}
	p.counters.inc("evaluations.completed|" + triageLevel)
}

// CheckinCounter increments the completed check-in counter per flow.
func (p *Provider) CheckinCounter(flow string) {
	if !p.cfg.on() {
		return
	}
	p.counters.inc("checkins.completed|" + flow)
}

// GetCounter returns a raw counter value, mostly for tests.
func (p *Provider) GetCounter(key string) int64 {
	return p.counters.get(key)
}

// SetDBPoolActive records the active database pool connection count.
func (p *Provider) SetDBPoolActive(n int64) { p.gauges.set("db.pool.active_connections", n) }

// SetDBPoolIdle records the idle database pool connection count.
func (p *Provider) SetDBPoolIdle(n int64) { p.gauges.set("db.pool.idle_connections", n) }

// SetWSClients records the number of connected dashboard clients.
func (p *Provider) SetWSClients(n int64) { p.gauges.set("ws.clients", n) }

// MetricsMiddleware returns an Echo middleware that records HTTP server
// metrics.
func (p *Provider) MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !p.cfg.on() {
				return next(c)
			}

			p.gauges.add("http.server.active_requests", 1)
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			p.gauges.add("http.server.active_requests", -1)

			route := c.Path()
			if route == "" {
				route = c.Request().URL.Path
			}

			p.getOrCreateHistogram("http.server.request.duration", defaultDurationBuckets).Observe(duration)
			p.counters.inc(fmt.Sprintf("http.requests|%s|%s|%d", c.Request().Method, route, c.Response().Status))

			return err
		}
	}
}

// PrometheusHandler returns an Echo handler that serves metrics in
// Prometheus text exposition format at /metrics.
func (p *Provider) PrometheusHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		var b strings.Builder

		p.histMu.RLock()
		durationHist := p.histograms["http.server.request.duration"]
		p.histMu.RUnlock()

		b.WriteString("# HELP http_server_request_duration_seconds Duration of HTTP requests in seconds.\n")
		b.WriteString("# TYPE http_server_request_duration_seconds histogram\n")
		if durationHist != nil {
			writeHistogram(&b, "http_server_request_duration_seconds", durationHist, defaultDurationBuckets)
		}
		b.WriteByte('\n')

		b.WriteString("# HELP http_server_active_requests Number of active HTTP requests.\n")
		b.WriteString("# TYPE http_server_active_requests gauge\n")
		fmt.Fprintf(&b, "http_server_active_requests %d\n\n", p.gauges.get("http.server.active_requests"))

		counters := p.counters.snapshot()
		writeLabeledCounter(&b, counters, "http.requests", "http_requests_total",
			"Total HTTP requests by method, route, and status.",
			[]string{"method", "route", "status_code"})
		writeLabeledCounter(&b, counters, "alerts.raised", "alerts_raised_total",
			"Total alerts raised by severity and source.",
			[]string{"severity", "source"})
		writeLabeledCounter(&b, counters, "evaluations.completed", "evaluations_completed_total",
			"Total patient evaluations completed by resulting triage level.",
			[]string{"triage_level"})
		writeLabeledCounter(&b, counters, "checkins.completed", "checkins_completed_total",
			"Total check-in sessions completed by flow.",
			[]string{"flow"})

		gauges := []struct {
			promName string
			name     string
			help     string
		}{
			{"db_pool_active_connections", "db.pool.active_connections", "Number of active database pool connections."},
			{"db_pool_idle_connections", "db.pool.idle_connections", "Number of idle database pool connections."},
			{"ws_clients", "ws.clients", "Number of connected dashboard WebSocket clients."},
		}
		for _, g := range gauges {
			fmt.Fprintf(&b, "# HELP %s %s\n", g.promName, g.help)
			fmt.Fprintf(&b, "# TYPE %s gauge\n", g.promName)
			fmt.Fprintf(&b, "%s %d\n\n", g.promName, p.gauges.get(g.name))
		}

		return c.String(http.StatusOK, b.String())
	}
}

func writeHistogram(b *strings.Builder, name string, h *histogram, boundaries []float64) {
	cum := h.cumulativeBuckets()
	total := h.Count()
	for i, boundary := range boundaries {
		fmt.Fprintf(b, "%s_bucket{le=\"%g\"} %d\n", name, boundary, cum[i])
	}
	fmt.Fprintf(b, "%s_bucket{le=\"+Inf\"} %d\n", name, total)
	fmt.Fprintf(b, "%s_sum %g\n", name, h.Sum())
	fmt.Fprintf(b, "%s_count %d\n", name, total)
}

// writeLabeledCounter renders every counter under the given prefix with its
// pipe-separated key segments mapped onto the label names.
func writeLabeledCounter(b *strings.Builder, counters map[string]int64, prefix, promName, help string, labels []string) {
	fmt.Fprintf(b, "# HELP %s %s\n", promName, help)
	fmt.Fprintf(b, "# TYPE %s counter\n", promName)

	keys := make([]string, 0)
	for key := range counters {
		if strings.HasPrefix(key, prefix+"|") {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		parts := strings.Split(key[len(prefix)+1:], "|")
		if len(parts) != len(labels) {
			continue
		}
		pairs := make([]string, len(labels))
		for i, label := range labels {
			pairs[i] = fmt.Sprintf("%s=%q", label, parts[i])
		}
		fmt.Fprintf(b, "%s{%s} %d\n", promName, strings.Join(pairs, ","), counters[key])
	}
	b.WriteByte('\n')
}
