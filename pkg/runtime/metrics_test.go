// Copyright 2025 MA-ISA Protocol

package runtime

import (
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCountActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("new metrics: %v", err)
	}

	r := New(seed(1), NewFilePersistence(filepath.Join(t.TempDir(), "device.state")), WithMetrics(m))

	if _, err := r.RecordEvent(0, []byte("payload")); err != nil {
		t.Fatal(err)
	}
	if _, err := r.RecordSale([]byte("sale")); err != nil {
		t.Fatal(err)
	}

	if got := testutil.ToFloat64(m.EventsRecorded.WithLabelValues("0")); got != 2 {
		t.Errorf("dimension 0 events = %f, want 2", got)
	}
	if got := testutil.ToFloat64(m.EventsRecorded.WithLabelValues("1")); got != 1 {
		t.Errorf("dimension 1 events = %f, want 1", got)
	}

	trusted := r.StateVector()
	if _, err := r.RecoverFromTrustedState(&trusted, "noop heal"); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(m.RecoveriesApplied); got != 1 {
		t.Errorf("recoveries = %f, want 1", got)
	}
}

func TestMetricsRegisterTwiceFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewMetrics(reg); err != nil {
		t.Fatal(err)
	}
	if _, err := NewMetrics(reg); err == nil {
		t.Error("duplicate registration must fail")
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	r := New(seed(1), NewFilePersistence(filepath.Join(t.TempDir(), "device.state")))
	if _, err := r.RecordEvent(0, []byte("payload")); err != nil {
		t.Fatalf("runtime without metrics must still record: %v", err)
	}
}
