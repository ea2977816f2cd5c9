package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/cwsl/rtlsensor/internal/protocol"
)

// TestMetrics exercises the whole lifecycle in one test function: promauto
// registers collectors into the default registry, and registering the
// same metric name twice panics, so only one *Metrics may ever be
// constructed per test binary run.
func TestMetrics(t *testing.T) {
	m := New()

	m.Publish(protocol.Reading{Kind: protocol.Rubicson})
	m.Publish(protocol.Reading{Kind: protocol.Rubicson})
	m.Publish(protocol.Reading{Kind: protocol.Prologue})

	if got := testutil.ToFloat64(m.decodesTotal.WithLabelValues("rubicson")); got != 2 {
		t.Errorf("rubicson decodes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.decodesTotal.WithLabelValues("prologue")); got != 1 {
		t.Errorf("prologue decodes = %v, want 1", got)
	}

	m.ObserveBlock(0)
	m.ObserveBlock(3)
	if got := testutil.ToFloat64(m.blocksTotal); got != 2 {
		t.Errorf("blocks total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.overflowsTotal); got != 3 {
		t.Errorf("overflows total = %v, want 3", got)
	}

	m.SetLevel(12345)
	if got := testutil.ToFloat64(m.envelopeLevel); got != 12345 {
		t.Errorf("envelope level = %v, want 12345", got)
	}
}
