package metrics

import "github.com/prometheus/client_golang/prometheus"

// SiteMetrics counts cart, booking, checkout, waitlist and animation activity.
type SiteMetrics struct {
	cartMutations *prometheus.CounterVec
	bookings      *prometheus.CounterVec
	checkouts     *prometheus.CounterVec
	waitlist      *prometheus.CounterVec
	liquidFrames  prometheus.Counter
}

func New(reg prometheus.Registerer) *SiteMetrics {
	m := &SiteMetrics{
		cartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gasper",
			Name:      "cart_mutations_total",
			Help:      "Cart mutations by operation",
		}, []string{"op"}),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gasper",
			Name:      "bookings_total",
			Help:      "Booking reservations by flow and result",
		}, []string{"flow", "result"}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gasper",
			Name:      "checkout_total",
			Help:      "Checkout attempts by payment method and result",
		}, []string{"method", "result"}),
		waitlist: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gasper",
			Name:      "waitlist_total",
			Help:      "Waitlist submissions by result",
		}, []string{"result"}),
		liquidFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gasper",
			Name:      "liquid_frames_total",
			Help:      "Background simulation steps",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.cartMutations, m.bookings, m.checkouts, m.waitlist, m.liquidFrames)
	return m
}

func (m *SiteMetrics) CartMutation(op string) {
	if m == nil {
		return
	}
	m.cartMutations.WithLabelValues(op).Inc()
}

func (m *SiteMetrics) Booking(flow, result string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(flow, result).Inc()
}

func (m *SiteMetrics) Checkout(method, result string) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(method, result).Inc()
}

func (m *SiteMetrics) Waitlist(result string) {
	if m == nil {
		return
	}
	m.waitlist.WithLabelValues(result).Inc()
}

func (m *SiteMetrics) LiquidFrame() {
	if m == nil {
		return
	}
	m.liquidFrames.Inc()
}
