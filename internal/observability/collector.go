// Package observability provides metrics collection and tracing for CLI operations.
package observability

import (
	"fmt"
	"sync"
	"time"
)

// SessionMetrics aggregates metrics for an entire CLI session.
type SessionMetrics struct {
	StartTime       time.Time
	EndTime         time.Time
	TotalRequests   int
	FailedRequests  int
	TotalOperations int
	FailedOps       int
	TotalRetries    int
	TotalLatency    time.Duration
}

// SessionCollector accumulates metrics across a CLI session.
// It is safe for concurrent use and keeps counters only.
type SessionCollector struct {
	mu sync.Mutex

	startTime       time.Time
	totalRequests   int
	failedRequests  int
	totalOperations int
	failedOps       int
	totalRetries    int
	totalLatency    time.Duration
}

// NewSessionCollector creates a new SessionCollector.
func NewSessionCollector() *SessionCollector {
	return &SessionCollector{
		startTime: time.Now(),
	}
}

// RecordRequest records one HTTP attempt.
func (c *SessionCollector) RecordRequest(_ RequestInfo, result RequestResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalRequests++
	c.totalLatency += result.Duration
	if result.Error != nil || result.StatusCode >= 400 {
		c.failedRequests++
	}
}

// RecordOperation records one completed intent.
func (c *SessionCollector) RecordOperation(_ OperationInfo, err error, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalOperations++
	if err != nil {
		c.failedOps++
	}
}

// RecordRetry records a retry event.
func (c *SessionCollector) RecordRetry() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalRetries++
}

// Summary returns aggregated metrics for the session.
func (c *SessionCollector) Summary() SessionMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	return SessionMetrics{
		StartTime:       c.startTime,
		EndTime:         time.Now(),
		TotalRequests:   c.totalRequests,
		FailedRequests:  c.failedRequests,
		TotalOperations: c.totalOperations,
		FailedOps:       c.failedOps,
		TotalRetries:    c.totalRetries,
		TotalLatency:    c.totalLatency,
	}
}

// Reset clears all collected metrics and resets the start time.
func (c *SessionCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.startTime = time.Now()
	c.totalRequests = 0
	c.failedRequests = 0
	c.totalOperations = 0
	c.failedOps = 0
	c.totalRetries = 0
	c.totalLatency = 0
}

// ToMap converts the metrics into the shape stored under meta["stats"].
func (m SessionMetrics) ToMap() map[string]any {
	return map[string]any{
		"requests":        m.TotalRequests,
		"failed_requests": m.FailedRequests,
		"operations":      m.TotalOperations,
		"failed_ops":      m.FailedOps,
		"retries":         m.TotalRetries,
		"latency_ms":      m.TotalLatency.Milliseconds(),
		"duration_ms":     m.EndTime.Sub(m.StartTime).Milliseconds(),
	}
}

// SessionMetricsFromMap is the inverse of ToMap. It accepts numbers decoded
// from JSON (float64) as well as native ints.
func SessionMetricsFromMap(stats map[string]any) SessionMetrics {
	num := func(key string) int64 {
		switch v := stats[key].(type) {
		case int:
			return int64(v)
		case int64:
			return v
		case float64:
			return int64(v)
		default:
			return 0
		}
	}
	end := time.Unix(0, 0)
	return SessionMetrics{
		StartTime:       end.Add(-time.Duration(num("duration_ms")) * time.Millisecond),
		EndTime:         end,
		TotalRequests:   int(num("requests")),
		FailedRequests:  int(num("failed_requests")),
		TotalOperations: int(num("operations")),
		FailedOps:       int(num("failed_ops")),
		TotalRetries:    int(num("retries")),
		TotalLatency:    time.Duration(num("latency_ms")) * time.Millisecond,
	}
}

// FormatParts renders the non-zero metrics as short labels,
// e.g. ["2 ops", "3 requests (1 failed)", "1 retry", "120ms"].
func (m SessionMetrics) FormatParts() []string {
	var parts []string
	if m.TotalOperations > 0 {
		s := plural(m.TotalOperations, "op", "ops")
		if m.FailedOps > 0 {
			s += fmt.Sprintf(" (%d failed)", m.FailedOps)
		}
		parts = append(parts, s)
	}
	if m.TotalRequests > 0 {
		s := plural(m.TotalRequests, "request", "requests")
		if m.FailedRequests > 0 {
			s += fmt.Sprintf(" (%d failed)", m.FailedRequests)
		}
		parts = append(parts, s)
	}
	if m.TotalRetries > 0 {
		parts = append(parts, plural(m.TotalRetries, "retry", "retries"))
	}
	if d := m.EndTime.Sub(m.StartTime); d > 0 && len(parts) > 0 {
		parts = append(parts, fmt.Sprintf("%dms", d.Milliseconds()))
	}
	return parts
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
