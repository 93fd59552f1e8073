package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCacheLookup(t *testing.T) {
	m := New()
	m.CacheLookup("status", true)
	m.CacheLookup("status", false)
	m.CacheLookup("status", false)

	if got := testutil.ToFloat64(m.cacheLookups.WithLabelValues("status", "miss")); got != 2 {
		t.Fatalf("misses = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.cacheLookups.WithLabelValues("status", "hit")); got != 1 {
		t.Fatalf("hits = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.CacheLookup("x", true)
	m.FetchFailed("x")
	m.ObserveRequest("GET", "/", 200, time.Millisecond)
	if m.Handler() == nil {
		t.Fatal("nil Handler")
	}
}
