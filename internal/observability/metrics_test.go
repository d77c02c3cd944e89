package observability

import (
	"testing"
	"time"

	"github.com/danmuck/soltrace/internal/testutil/testlog"
	"github.com/danmuck/soltrace/logline"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("soltrace", "POST", "/v1/tree", 200, 12*time.Millisecond)
	ObserveBatch(ModeRaw, 4, 1, "")
	ObserveBatch(ModeTyped, 2, 0, "invalid_payload")

	testlog.Logf(t, "observability/metrics: registration idempotent and recording paths executed")
}

func TestObserveLinesCountsByKind(t *testing.T) {
	RegisterMetrics()
	beforeLog := testutil.ToFloat64(linesClassified.WithLabelValues("log"))
	beforeInvoke := testutil.ToFloat64(linesClassified.WithLabelValues("invoke"))

	ObserveLines(logline.ClassifyAll([]string{
		"Program 11111111111111111111111111111111 invoke [1]",
		"Program log: a",
		"Program log: b",
	}))

	if got := testutil.ToFloat64(linesClassified.WithLabelValues("log")) - beforeLog; got != 2 {
		t.Fatalf("expected 2 log lines, got %v", got)
	}
	if got := testutil.ToFloat64(linesClassified.WithLabelValues("invoke")) - beforeInvoke; got != 1 {
		t.Fatalf("expected 1 invoke line, got %v", got)
	}
}

func TestObserveBatchSplitsResults(t *testing.T) {
	RegisterMetrics()
	okBefore := testutil.ToFloat64(batches.WithLabelValues(ModeRaw, ResultOK, ""))
	errBefore := testutil.ToFloat64(batches.WithLabelValues(ModeRaw, ResultError, "unclosed_invocation"))
	framesBefore := testutil.ToFloat64(framesBuilt.WithLabelValues(ModeRaw))

	ObserveBatch(ModeRaw, 10, 3, "")
	ObserveBatch(ModeRaw, 5, 0, "unclosed_invocation")

	if got := testutil.ToFloat64(batches.WithLabelValues(ModeRaw, ResultOK, "")) - okBefore; got != 1 {
		t.Fatalf("expected 1 ok batch, got %v", got)
	}
	if got := testutil.ToFloat64(batches.WithLabelValues(ModeRaw, ResultError, "unclosed_invocation")) - errBefore; got != 1 {
		t.Fatalf("expected 1 failed batch, got %v", got)
	}
	if got := testutil.ToFloat64(framesBuilt.WithLabelValues(ModeRaw)) - framesBefore; got != 3 {
		t.Fatalf("expected 3 frames, got %v", got)
	}
}
