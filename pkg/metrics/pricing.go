package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PricingMetrics records engine recompute timings. All methods are nil-safe
// so callers can run without a registry.
type PricingMetrics struct {
	duration *prometheus.HistogramVec
}

// NewPricingMetrics registers the pricing metrics on the provided registerer.
func NewPricingMetrics(reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		return &PricingMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pricing_recompute_seconds",
		Help:    "Duration of cart pricing recomputations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"trigger"})
	reg.MustRegister(duration)
	return &PricingMetrics{duration: duration}
}

// ObserveRecompute records one resolve-and-price pass for the named trigger.
func (p *PricingMetrics) ObserveRecompute(trigger string, duration time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(normalizeLabel(trigger)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
