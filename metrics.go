package staticd

import (
	"sync/atomic"
	"time"

	"github.com/ehrlich-b/go-staticd/internal/interfaces"
)

// Observer is the pluggable metrics-collection boundary the reactor
// and response pipeline report through. It is internal/interfaces'
// Observer re-exported here so callers only need to import the root
// package to implement or consume it.
type Observer = interfaces.Observer

// NoOpObserver is a no-op implementation of Observer.
type NoOpObserver struct{}

func (NoOpObserver) ObserveRequest(string, uint64) {}
func (NoOpObserver) ObserveBytesSent(uint64)       {}
func (NoOpObserver) ObserveConnectionOpened()      {}
func (NoOpObserver) ObserveConnectionClosed()      {}

// LatencyBuckets defines the request-latency histogram buckets in
// nanoseconds, covering 1us to 10s with logarithmic spacing.
var LatencyBuckets = []uint64{
	1_000,
	10_000,
	100_000,
	1_000_000,
	10_000_000,
	100_000_000,
	1_000_000_000,
	10_000_000_000,
}

const numLatencyBuckets = 8

// Metrics tracks performance and operational statistics for a server.
type Metrics struct {
	RequestsOK            atomic.Uint64
	RequestsBadRequest    atomic.Uint64
	RequestsForbidden     atomic.Uint64
	RequestsNotFound      atomic.Uint64
	RequestsInternalError atomic.Uint64

	BytesSent atomic.Uint64

	ConnectionsOpened atomic.Uint64
	ConnectionsClosed atomic.Uint64

	TotalLatencyNs atomic.Uint64
	OpCount        atomic.Uint64

	// Latency histogram buckets (cumulative counts): bucket[i] holds
	// the count of requests with latency <= LatencyBuckets[i].
	LatencyHistogramBuckets [numLatencyBuckets]atomic.Uint64

	StartTime atomic.Int64
	StopTime  atomic.Int64
}

// NewMetrics creates a new metrics instance with StartTime set to now.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

// RecordRequest records one completed request's verdict and latency.
func (m *Metrics) RecordRequest(verdict string, latencyNs uint64) {
	switch verdict {
	case "GetRequest", "FileRequest":
		m.RequestsOK.Add(1)
	case "BadRequest":
		m.RequestsBadRequest.Add(1)
	case "Forbidden":
		m.RequestsForbidden.Add(1)
	case "NoResource":
		m.RequestsNotFound.Add(1)
	default:
		m.RequestsInternalError.Add(1)
	}
	m.recordLatency(latencyNs)
}

func (m *Metrics) recordLatency(latencyNs uint64) {
	m.TotalLatencyNs.Add(latencyNs)
	m.OpCount.Add(1)
	for i, bucket := range LatencyBuckets {
		if latencyNs <= bucket {
			m.LatencyHistogramBuckets[i].Add(1)
		}
	}
}

// Stop marks the server as stopped.
func (m *Metrics) Stop() {
	m.StopTime.Store(time.Now().UnixNano())
}

// MetricsSnapshot is a point-in-time copy of Metrics's counters plus
// derived statistics.
type MetricsSnapshot struct {
	RequestsOK            uint64
	RequestsBadRequest    uint64
	RequestsForbidden     uint64
	RequestsNotFound      uint64
	RequestsInternalError uint64

	BytesSent uint64

	ActiveConnections int64
	TotalRequests     uint64

	AvgLatencyNs uint64
	UptimeNs     uint64

	LatencyP50Ns  uint64
	LatencyP99Ns  uint64
	LatencyP999Ns uint64

	LatencyHistogram [numLatencyBuckets]uint64

	RequestsPerSecond float64
	ErrorRate         float64
}

// Snapshot creates a point-in-time snapshot of metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		RequestsOK:            m.RequestsOK.Load(),
		RequestsBadRequest:    m.RequestsBadRequest.Load(),
		RequestsForbidden:     m.RequestsForbidden.Load(),
		RequestsNotFound:      m.RequestsNotFound.Load(),
		RequestsInternalError: m.RequestsInternalError.Load(),
		BytesSent:             m.BytesSent.Load(),
	}

	snap.TotalRequests = snap.RequestsOK + snap.RequestsBadRequest + snap.RequestsForbidden +
		snap.RequestsNotFound + snap.RequestsInternalError
	snap.ActiveConnections = int64(m.ConnectionsOpened.Load()) - int64(m.ConnectionsClosed.Load())

	opCount := m.OpCount.Load()
	if opCount > 0 {
		snap.AvgLatencyNs = m.TotalLatencyNs.Load() / opCount
	}

	startTime := m.StartTime.Load()
	stopTime := m.StopTime.Load()
	if stopTime > 0 {
		snap.UptimeNs = uint64(stopTime - startTime)
	} else {
		snap.UptimeNs = uint64(time.Now().UnixNano() - startTime)
	}
	if snap.UptimeNs > 0 {
		snap.RequestsPerSecond = float64(snap.TotalRequests) / (float64(snap.UptimeNs) / 1e9)
	}

	errs := snap.RequestsBadRequest + snap.RequestsForbidden + snap.RequestsNotFound + snap.RequestsInternalError
	if snap.TotalRequests > 0 {
		snap.ErrorRate = float64(errs) / float64(snap.TotalRequests) * 100.0
	}

	for i := 0; i < numLatencyBuckets; i++ {
		snap.LatencyHistogram[i] = m.LatencyHistogramBuckets[i].Load()
	}

	if opCount > 0 {
		snap.LatencyP50Ns = m.calculatePercentile(0.50)
		snap.LatencyP99Ns = m.calculatePercentile(0.99)
		snap.LatencyP999Ns = m.calculatePercentile(0.999)
	}

	return snap
}

// calculatePercentile estimates the latency at the given percentile
// (0.0-1.0) using linear interpolation between histogram buckets.
func (m *Metrics) calculatePercentile(percentile float64) uint64 {
	totalOps := m.OpCount.Load()
	if totalOps == 0 {
		return 0
	}
	targetCount := uint64(float64(totalOps) * percentile)

	prevBucket := uint64(0)
	for i, bucket := range LatencyBuckets {
		bucketCount := m.LatencyHistogramBuckets[i].Load()
		if bucketCount >= targetCount {
			prevCount := uint64(0)
			if i > 0 {
				prevCount = m.LatencyHistogramBuckets[i-1].Load()
			}
			if bucketCount == prevCount {
				return bucket
			}
			fraction := float64(targetCount-prevCount) / float64(bucketCount-prevCount)
			return prevBucket + uint64(fraction*float64(bucket-prevBucket))
		}
		prevBucket = bucket
	}
	return LatencyBuckets[numLatencyBuckets-1]
}

// Reset resets all counters (useful for testing).
func (m *Metrics) Reset() {
	m.RequestsOK.Store(0)
	m.RequestsBadRequest.Store(0)
	m.RequestsForbidden.Store(0)
	m.RequestsNotFound.Store(0)
	m.RequestsInternalError.Store(0)
	m.BytesSent.Store(0)
	m.ConnectionsOpened.Store(0)
	m.ConnectionsClosed.Store(0)
	m.TotalLatencyNs.Store(0)
	m.OpCount.Store(0)
	for i := 0; i < numLatencyBuckets; i++ {
		m.LatencyHistogramBuckets[i].Store(0)
	}
	m.StartTime.Store(time.Now().UnixNano())
	m.StopTime.Store(0)
}

// MetricsObserver adapts Metrics to the Observer interface the
// reactor reports through.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver creates an observer that records to m.
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) ObserveRequest(verdict string, latencyNs uint64) {
	o.metrics.RecordRequest(verdict, latencyNs)
}

func (o *MetricsObserver) ObserveBytesSent(n uint64) {
	o.metrics.BytesSent.Add(n)
}

func (o *MetricsObserver) ObserveConnectionOpened() {
	o.metrics.ConnectionsOpened.Add(1)
}

func (o *MetricsObserver) ObserveConnectionClosed() {
	o.metrics.ConnectionsClosed.Add(1)
}

var _ Observer = (*MetricsObserver)(nil)
