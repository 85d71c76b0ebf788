package observability

import (
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"
)

// TraceWriter prints one line per operation and per HTTP attempt, stamped
// with the time since the session started.
type TraceWriter struct {
	mu    sync.Mutex
	w     io.Writer
	start time.Time
}

// NewTraceWriterTo creates a TraceWriter that writes to w.
func NewTraceWriterTo(w io.Writer) *TraceWriter {
	return &TraceWriter{w: w, start: time.Now()}
}

func (t *TraceWriter) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	stamp := fmt.Sprintf("[%.3fs] ", time.Since(t.start).Seconds())
	fmt.Fprintf(t.w, stamp+format+"\n", args...)
}

// WriteOperationStart writes e.g. "[0.002s] Calling Toggle #12 (write)".
func (t *TraceWriter) WriteOperationStart(op OperationInfo) {
	t.printf("Calling %s", opLabel(op))
}

// WriteOperationEnd writes e.g. "[0.120s] Completed Toggle #12 (write) (118ms)".
func (t *TraceWriter) WriteOperationEnd(op OperationInfo, err error, duration time.Duration) {
	if err != nil {
		t.printf("Failed %s: %v", opLabel(op), err)
		return
	}
	t.printf("Completed %s (%dms)", opLabel(op), duration.Milliseconds())
}

// WriteRequestStart writes e.g. "[0.003s]   -> PUT /todos/12 [request-id]".
// Attempts after the first are tagged so retries are visible.
func (t *TraceWriter) WriteRequestStart(info RequestInfo) {
	line := fmt.Sprintf("  -> %s %s", info.Method, scrubURL(info.URL))
	if info.Attempt > 1 {
		line += fmt.Sprintf(" (attempt %d)", info.Attempt)
	}
	if info.RequestID != "" {
		line += " [" + info.RequestID + "]"
	}
	t.printf("%s", line)
}

// WriteRequestEnd writes e.g. "[0.050s]   <- 200 (45ms)".
func (t *TraceWriter) WriteRequestEnd(info RequestInfo, result RequestResult) {
	if result.Error != nil {
		t.printf("  <- ERROR: %v", result.Error)
		return
	}
	t.printf("  <- %d (%dms)", result.StatusCode, result.Duration.Milliseconds())
}

// WriteRetry writes e.g. "[0.300s]   RETRY #2: connection reset".
func (t *TraceWriter) WriteRetry(info RequestInfo, attempt int, err error) {
	t.printf("  RETRY #%d: %v", attempt, err)
}

func opLabel(op OperationInfo) string {
	label := op.Operation
	if op.ResourceID != 0 {
		label = fmt.Sprintf("%s #%d", op.Operation, op.ResourceID)
	}
	if op.IsMutation {
		label += " (write)"
	}
	return label
}

// scrubURL hides a password embedded in the server URL.
func scrubURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "[unparseable URL]"
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "REDACTED")
		return u.String()
	}
	return rawURL
}
