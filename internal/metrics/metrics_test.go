package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSiteMetricsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.CartMutation("add")
	m.CartMutation("add")
	m.Booking("call", "reserved")
	m.Checkout("card", "ok")
	m.Waitlist("sent")
	m.LiquidFrame()

	if got := testutil.ToFloat64(m.cartMutations.WithLabelValues("add")); got != 2 {
		t.Fatalf("cart add = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.liquidFrames); got != 1 {
		t.Fatalf("frames = %v, want 1", got)
	}
}

func TestSiteMetricsNilSafe(t *testing.T) {
	var m *SiteMetrics
	m.CartMutation("add")
	m.Booking("call", "reserved")
	m.Checkout("card", "ok")
	m.Waitlist("sent")
	m.LiquidFrame()
}
