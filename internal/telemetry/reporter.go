package telemetry

import (
	"sort"
	"sync"

	"github.com/dshills/langbridge/internal/bridge"
	"github.com/dshills/langbridge/internal/logging"
)

// Log counts failures and writes them to a logger at debug level. The
// bridge already logs each failure at error level.
type Log struct {
	mu     sync.Mutex
	counts map[string]int
	log    *logging.Logger
}

// NewLog creates a log reporter.
func NewLog(log *logging.Logger) *Log {
	if log == nil {
		log = logging.Null()
	}
	return &Log{
		counts: make(map[string]int),
		log:    log.WithComponent("telemetry"),
	}
}

// ReportProviderError records f.
func (l *Log) ReportProviderError(f bridge.ProviderFailure) {
	l.mu.Lock()
	l.counts[f.Extension.ID]++
	n := l.counts[f.Extension.ID]
	l.mu.Unlock()

	l.log.WithField("request", f.RequestID).
		Debug("failure %d of %s in %s after %dms", n, f.Extension, f.Method, f.Duration.Milliseconds())
}

// ExtensionCount is the number of failures of one extension.
type ExtensionCount struct {
	ExtensionID string
	Failures    int
}

// Counts returns failures per extension, most failures first.
func (l *Log) Counts() []ExtensionCount {
	l.mu.Lock()
	defer l.mu.Unlock()

	result := make([]ExtensionCount, 0, len(l.counts))
	for id, n := range l.counts {
		result = append(result, ExtensionCount{ExtensionID: id, Failures: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Failures != result[j].Failures {
			return result[i].Failures > result[j].Failures
		}
		return result[i].ExtensionID < result[j].ExtensionID
	})
	return result
}

// Multi fans a failure out to several reporters.
type Multi []bridge.TelemetryReporter

// ReportProviderError forwards f to every reporter.
func (m Multi) ReportProviderError(f bridge.ProviderFailure) {
	for _, r := range m {
		r.ReportProviderError(f)
	}
}
