package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestPricingMetricsExportsHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	pricing := NewPricingMetrics(reg)
	pricing.ObserveRecompute("add_item", 12*time.Millisecond)
	pricing.ObserveRecompute("", 5*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchHistogramSum(mfs, "pricing_recompute_seconds", "trigger", "add_item"); err != nil {
		t.Fatalf("fetch recompute: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
	if _, err := fetchHistogramSum(mfs, "pricing_recompute_seconds", "trigger", "unknown"); err != nil {
		t.Fatalf("expected empty trigger to normalize: %v", err)
	}
}

func TestOrderMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	orders := NewOrderMetrics(reg)
	orders.IncPlaced()
	orders.IncPlaced()
	orders.IncStatusChanged("preparing")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	placed := findMetricFamily(mfs, "orders_placed_total")
	if placed == nil || len(placed.GetMetric()) == 0 {
		t.Fatalf("orders_placed_total not exported")
	}
	if got := placed.GetMetric()[0].GetCounter().GetValue(); got != 2 {
		t.Fatalf("expected placed=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "orders_status_changed_total", "status", "preparing"); err != nil {
		t.Fatalf("fetch status changed: %v", err)
	} else if got != 1 {
		t.Fatalf("expected status_changed=1, got %f", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var pricing *PricingMetrics
	var orders *OrderMetrics
	pricing.ObserveRecompute("add_item", time.Millisecond)
	orders.IncPlaced()
	orders.IncStatusChanged("ready")

	unregistered := NewPricingMetrics(nil)
	unregistered.ObserveRecompute("add_item", time.Millisecond)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
