package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/danmuck/soltrace/logline"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	ModeRaw   = "raw"
	ModeTyped = "typed"

	ResultOK    = "ok"
	ResultError = "error"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "soltrace",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "soltrace",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	linesClassified = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "soltrace",
			Subsystem: "classifier",
			Name:      "lines_total",
			Help:      "Classified log lines by kind.",
		},
		[]string{"kind"},
	)
	batches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "soltrace",
			Subsystem: "tree",
			Name:      "batches_total",
			Help:      "Reconstructed log batches by mode, result and failure reason.",
		},
		[]string{"mode", "result", "reason"},
	)
	framesBuilt = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "soltrace",
			Subsystem: "tree",
			Name:      "frames_total",
			Help:      "Frames produced by successful reconstructions.",
		},
		[]string{"mode"},
	)
	batchLines = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "soltrace",
			Subsystem: "tree",
			Name:      "batch_lines",
			Help:      "Lines per reconstructed batch.",
			Buckets:   prometheus.ExponentialBuckets(4, 2, 10),
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, linesClassified, batches, framesBuilt, batchLines)
		for _, kind := range logline.Kinds() {
			linesClassified.WithLabelValues(kind.String())
		}
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// ObserveLines counts classified lines by kind.
func ObserveLines(lines []logline.Line) {
	RegisterMetrics()
	var counts [len(kindLabels)]int
	for _, line := range lines {
		if int(line.Kind) < len(counts) {
			counts[line.Kind]++
		}
	}
	for kind, n := range counts {
		if n > 0 {
			linesClassified.WithLabelValues(kindLabels[kind]).Add(float64(n))
		}
	}
}

// ObserveBatch records one reconstruction. reason is empty on success.
func ObserveBatch(mode string, lines, frames int, reason string) {
	RegisterMetrics()
	batchLines.Observe(float64(lines))
	if reason != "" {
		batches.WithLabelValues(mode, ResultError, reason).Inc()
		return
	}
	batches.WithLabelValues(mode, ResultOK, "").Inc()
	framesBuilt.WithLabelValues(mode).Add(float64(frames))
}

var kindLabels = [...]string{
	logline.KindOther:        logline.KindOther.String(),
	logline.KindInvoke:       logline.KindInvoke.String(),
	logline.KindSuccess:      logline.KindSuccess.String(),
	logline.KindFailed:       logline.KindFailed.String(),
	logline.KindLog:          logline.KindLog.String(),
	logline.KindData:         logline.KindData.String(),
	logline.KindReturn:       logline.KindReturn.String(),
	logline.KindComputeUnits: logline.KindComputeUnits.String(),
}
