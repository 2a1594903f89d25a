package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestGet_ReturnsSingleton(t *testing.T) {
	a := Get()
	b := Get()
	if a != b {
		t.Errorf("Get() returned distinct instances, want the same singleton")
	}
}

func TestRecordDecision_IncrementsByOutcome(t *testing.T) {
	m := Get()

	before := testutil.ToFloat64(m.decisions.WithLabelValues("allowed", "lockdown_allow_list"))
	m.RecordDecision(true, "lockdown_allow_list")
	after := testutil.ToFloat64(m.decisions.WithLabelValues("allowed", "lockdown_allow_list"))

	if after != before+1 {
		t.Errorf("decisions counter = %v, want %v", after, before+1)
	}
}

func TestRecordExecution_BucketsByOutcome(t *testing.T) {
	m := Get()

	beforeTimeout := testutil.ToFloat64(m.executions.WithLabelValues("timeout"))
	m.RecordExecution(true, 0)
	if got := testutil.ToFloat64(m.executions.WithLabelValues("timeout")); got != beforeTimeout+1 {
		t.Errorf("timeout counter = %v, want %v", got, beforeTimeout+1)
	}

	beforeSuccess := testutil.ToFloat64(m.executions.WithLabelValues("success"))
	m.RecordExecution(false, 0)
	if got := testutil.ToFloat64(m.executions.WithLabelValues("success")); got != beforeSuccess+1 {
		t.Errorf("success counter = %v, want %v", got, beforeSuccess+1)
	}

	beforeNonzero := testutil.ToFloat64(m.executions.WithLabelValues("nonzero_exit"))
	m.RecordExecution(false, 1)
	if got := testutil.ToFloat64(m.executions.WithLabelValues("nonzero_exit")); got != beforeNonzero+1 {
		t.Errorf("nonzero_exit counter = %v, want %v", got, beforeNonzero+1)
	}
}

func TestObserveAuditLatency_DoesNotPanic(t *testing.T) {
	m := Get()
	m.ObserveAuditLatency(150 * time.Millisecond)
}

func TestSanitizeLabel_BoundsLengthAndDefaultsEmpty(t *testing.T) {
	if got := sanitizeLabel(""); got != "unknown" {
		t.Errorf("sanitizeLabel(\"\") = %q, want %q", got, "unknown")
	}
	long := make([]byte, maxLabelLen+20)
	for i := range long {
		long[i] = 'a'
	}
	if got := sanitizeLabel(string(long)); len(got) != maxLabelLen {
		t.Errorf("sanitizeLabel() length = %d, want %d", len(got), maxLabelLen)
	}
}
