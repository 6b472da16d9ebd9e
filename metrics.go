package goSession

import "sync/atomic"

// MetricID identifies a specific counter in the in-process metrics system.
type MetricID uint16

const (
	// MetricSignInSuccess is an exported constant or variable used by the session engine.
	MetricSignInSuccess MetricID = iota
	// MetricSignInFailure is an exported constant or variable used by the session engine.
	MetricSignInFailure
	// MetricSignInRateLimited is an exported constant or variable used by the session engine.
	MetricSignInRateLimited
	// MetricSignUpSuccess is an exported constant or variable used by the session engine.
	MetricSignUpSuccess
	// MetricSignUpDuplicate is an exported constant or variable used by the session engine.
	MetricSignUpDuplicate
	// MetricSignUpFailure is an exported constant or variable used by the session engine.
	MetricSignUpFailure
	// MetricRefreshSuccess is an exported constant or variable used by the session engine.
	MetricRefreshSuccess
	// MetricRefreshFailure is an exported constant or variable used by the session engine.
	MetricRefreshFailure
	// MetricRefreshRateLimited is an exported constant or variable used by the session engine.
	MetricRefreshRateLimited
	// MetricRevokeSuccess is an exported constant or variable used by the session engine.
	MetricRevokeSuccess
	// MetricRevokeFailure is an exported constant or variable used by the session engine.
	MetricRevokeFailure
	// MetricRateLimitHit is an exported constant or variable used by the session engine.
	MetricRateLimitHit

	metricIDCount
)

// Counters are cache-line padded so hot-path increments on different IDs do not
// contend.
type paddedCounter struct {
	value uint64
	_     [56]byte
}

// Metrics holds lock-free counters. When disabled, all operations are no-ops.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics creates a [Metrics] instance configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Enabled reports whether counters are recording.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc atomically increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value returns the current value of the counter for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot returns a deep copy of all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}

	s := MetricsSnapshot{Counters: make(map[MetricID]uint64, int(metricIDCount))}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}
