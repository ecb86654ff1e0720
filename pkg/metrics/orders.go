package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics counts order lifecycle events. All methods are nil-safe.
type OrderMetrics struct {
	placed        prometheus.Counter
	statusChanged *prometheus.CounterVec
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	placed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders accepted for the venue.",
	})
	statusChanged := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_status_changed_total",
		Help: "Order status transitions applied by staff.",
	}, []string{"status"})
	reg.MustRegister(placed, statusChanged)
	return &OrderMetrics{placed: placed, statusChanged: statusChanged}
}

// IncPlaced counts an accepted order.
func (o *OrderMetrics) IncPlaced() {
	if o == nil || o.placed == nil {
		return
	}
	o.placed.Inc()
}

// IncStatusChanged counts one applied transition into the given status.
func (o *OrderMetrics) IncStatusChanged(status string) {
	if o == nil || o.statusChanged == nil {
		return
	}
	o.statusChanged.WithLabelValues(normalizeLabel(status)).Inc()
}
