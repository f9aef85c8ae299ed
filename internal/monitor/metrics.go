package monitor

import (
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// GateMetrics tracks gate performance: how long submissions take end to
// end, how long executors hold the line, and how the outcomes split.
type GateMetrics struct {
	// Latency histograms
	SubmitLatency   *LatencyHistogram
	ExecutorLatency *LatencyHistogram
	DBLatency       *LatencyHistogram
	APILatency      *LatencyHistogram

	// Counters
	submissions uint64
	dispatched  uint64
	blocked     uint64
	invalid     uint64
	errors      uint64
	apiRequests uint64
	apiErrors   uint64
}

// LatencyHistogram tracks latency samples with a sliding window. Stats
// are computed lazily and cached until new samples arrive.
type LatencyHistogram struct {
	mu          sync.Mutex
	samples     []float64
	maxSize     int
	dirty       bool
	cachedStats LatencyStats
}

// NewGateMetrics creates a metrics instance.
func NewGateMetrics() *GateMetrics {
	return &GateMetrics{
		SubmitLatency:   NewLatencyHistogram(1000),
		ExecutorLatency: NewLatencyHistogram(1000),
		DBLatency:       NewLatencyHistogram(1000),
		APILatency:      NewLatencyHistogram(1000),
	}
}

// NewLatencyHistogram creates a sliding window histogram.
func NewLatencyHistogram(size int) *LatencyHistogram {
	if size <= 0 {
		size = 1000
	}
	return &LatencyHistogram{
		samples: make([]float64, 0, size),
		maxSize: size,
		dirty:   true,
	}
}

// Record adds a latency sample in milliseconds.
func (h *LatencyHistogram) Record(latencyMs float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.samples) >= h.maxSize {
		// Shift window: remove oldest
		h.samples = h.samples[1:]
	}
	h.samples = append(h.samples, latencyMs)
	h.dirty = true
}

// RecordDuration converts duration to ms and records.
func (h *LatencyHistogram) RecordDuration(d time.Duration) {
	h.Record(float64(d.Nanoseconds()) / 1e6)
}

// Stats returns min, max, avg, p50, p95, p99. Only recomputes when
// samples have changed.
func (h *LatencyHistogram) Stats() LatencyStats {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.dirty && h.cachedStats.Count > 0 {
		return h.cachedStats
	}

	n := len(h.samples)
	if n == 0 {
		return LatencyStats{}
	}

	sorted := make([]float64, n)
	copy(sorted, h.samples)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	h.cachedStats = LatencyStats{
		Min:   sorted[0],
		Max:   sorted[n-1],
		Avg:   sum / float64(n),
		P50:   sorted[n/2],
		P95:   sorted[int(float64(n)*0.95)],
		P99:   sorted[int(float64(n)*0.99)],
		Count: n,
	}
	h.dirty = false

	return h.cachedStats
}

// LatencyStats holds computed latency statistics.
type LatencyStats struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	Count int     `json:"count"`
}

// IncrementSubmissions counts one submission entering the gate.
func (m *GateMetrics) IncrementSubmissions() {
	atomic.AddUint64(&m.submissions, 1)
}

// IncrementDispatched counts a submission that reached its executor.
func (m *GateMetrics) IncrementDispatched() {
	atomic.AddUint64(&m.dispatched, 1)
}

// IncrementBlocked counts a submission stopped at a gate.
func (m *GateMetrics) IncrementBlocked() {
	atomic.AddUint64(&m.blocked, 1)
}

// IncrementInvalid counts a submission rejected by validation.
func (m *GateMetrics) IncrementInvalid() {
	atomic.AddUint64(&m.invalid, 1)
}

// IncrementErrors counts a submission that ended in ERROR.
func (m *GateMetrics) IncrementErrors() {
	atomic.AddUint64(&m.errors, 1)
}

// IncrementAPI counts one HTTP request.
func (m *GateMetrics) IncrementAPI() {
	atomic.AddUint64(&m.apiRequests, 1)
}

// IncrementAPIErrors counts one HTTP request answered >= 400.
func (m *GateMetrics) IncrementAPIErrors() {
	atomic.AddUint64(&m.apiErrors, 1)
}

// MetricsSnapshot is a point-in-time view for the ops surface.
type MetricsSnapshot struct {
	SubmitLatency   LatencyStats `json:"submit_latency"`
	ExecutorLatency LatencyStats `json:"executor_latency"`
	DBLatency       LatencyStats `json:"db_latency"`
	APILatency      LatencyStats `json:"api_latency"`
	Submissions     uint64       `json:"submissions"`
	Dispatched      uint64       `json:"dispatched"`
	Blocked         uint64       `json:"blocked"`
	Invalid         uint64       `json:"invalid"`
	Errors          uint64       `json:"errors"`
	APIRequests     uint64       `json:"api_requests"`
	APIErrors       uint64       `json:"api_errors"`
	GoroutineCount  int          `json:"goroutine_count"`
	HeapAlloc       uint64       `json:"heap_alloc_bytes"`
	HeapSys         uint64       `json:"heap_sys_bytes"`
	Timestamp       time.Time    `json:"timestamp"`
}

// GetSnapshot returns a point-in-time metrics snapshot.
func (m *GateMetrics) GetSnapshot() MetricsSnapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return MetricsSnapshot{
		SubmitLatency:   m.SubmitLatency.Stats(),
		ExecutorLatency: m.ExecutorLatency.Stats(),
		DBLatency:       m.DBLatency.Stats(),
		APILatency:      m.APILatency.Stats(),
		Submissions:     atomic.LoadUint64(&m.submissions),
		Dispatched:      atomic.LoadUint64(&m.dispatched),
		Blocked:         atomic.LoadUint64(&m.blocked),
		Invalid:         atomic.LoadUint64(&m.invalid),
		Errors:          atomic.LoadUint64(&m.errors),
		APIRequests:     atomic.LoadUint64(&m.apiRequests),
		APIErrors:       atomic.LoadUint64(&m.apiErrors),
		GoroutineCount:  runtime.NumGoroutine(),
		HeapAlloc:       memStats.HeapAlloc,
		HeapSys:         memStats.HeapSys,
		Timestamp:       time.Now(),
	}
}

// Timer helps measure operation duration.
type Timer struct {
	start     time.Time
	histogram *LatencyHistogram
}

// NewTimer creates a timer that records to the given histogram.
func NewTimer(h *LatencyHistogram) *Timer {
	return &Timer{
		start:     time.Now(),
		histogram: h,
	}
}

// Stop records elapsed time to histogram.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	if t.histogram != nil {
		t.histogram.RecordDuration(elapsed)
	}
	return elapsed
}
