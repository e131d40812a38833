package metrics

import "github.com/prometheus/client_golang/prometheus"

// CheckoutMetrics counts the storefront funnel's key outcomes.
type CheckoutMetrics struct {
	ordersConfirmed      *prometheus.CounterVec
	reservationConflicts prometheus.Counter
	draftsExpired        prometheus.Counter
}

// NewCheckoutMetrics registers the funnel metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	ordersConfirmed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_confirmed_total",
		Help: "Orders confirmed, by payment method.",
	}, []string{"payment_method"})
	reservationConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_reservation_conflicts_total",
		Help: "Stock reservations rejected for insufficient availability.",
	})
	draftsExpired := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_drafts_expired_total",
		Help: "Checkout drafts marked expired by the sweeper.",
	})
	reg.MustRegister(ordersConfirmed, reservationConflicts, draftsExpired)
	return &CheckoutMetrics{
		ordersConfirmed:      ordersConfirmed,
		reservationConflicts: reservationConflicts,
		draftsExpired:        draftsExpired,
	}
}

// IncOrderConfirmed increments the confirmed-order counter.
func (c *CheckoutMetrics) IncOrderConfirmed(paymentMethod string) {
	if c == nil || c.ordersConfirmed == nil {
		return
	}
	c.ordersConfirmed.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
}

// IncReservationConflict increments the conflict counter.
func (c *CheckoutMetrics) IncReservationConflict() {
	if c == nil || c.reservationConflicts == nil {
		return
	}
	c.reservationConflicts.Inc()
}

// AddDraftsExpired adds the number of drafts swept in one pass.
func (c *CheckoutMetrics) AddDraftsExpired(count int) {
	if c == nil || c.draftsExpired == nil || count <= 0 {
		return
	}
	c.draftsExpired.Add(float64(count))
}
