package obs

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PricingMetrics groups Prometheus collectors for a reporting run.
type PricingMetrics struct {
	RentalsPriced prometheus.Counter
	Modifications prometheus.Counter
	Actions       *prometheus.CounterVec
	ActionAmounts *prometheus.CounterVec
	Failures      *prometheus.CounterVec
	RunDuration   prometheus.Histogram
}

// NewPricingMetrics registers and returns pricing collectors.
func NewPricingMetrics(namespace string, reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &PricingMetrics{
		RentalsPriced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rentals_priced_total",
			Help:      "Rentals priced by the rentals report.",
		}),
		Modifications: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rental_modifications_total",
			Help:      "Amended rentals reconciled by the modifications report.",
		}),
		Actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_actions_total",
			Help:      "Payment actions emitted per actor and direction.",
		}, []string{"who", "type"}),
		ActionAmounts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_amount_minor_units_total",
			Help:      "Sum of payment action amounts in minor units per actor and direction.",
		}, []string{"who", "type"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_failures_total",
			Help:      "Reporting runs aborted by an error, per error kind.",
		}, []string{"kind"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_duration_ms",
			Help:      "Report generation latency in milliseconds.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
	}
	mustRegisterCollector(reg, m.RentalsPriced, func(c prometheus.Collector) {
		if existing, ok := c.(prometheus.Counter); ok {
			m.RentalsPriced = existing
		}
	})
	mustRegisterCollector(reg, m.Modifications, func(c prometheus.Collector) {
		if existing, ok := c.(prometheus.Counter); ok {
			m.Modifications = existing
		}
	})
	mustRegisterCollector(reg, m.Actions, func(c prometheus.Collector) {
		if existing, ok := c.(*prometheus.CounterVec); ok {
			m.Actions = existing
		}
	})
	mustRegisterCollector(reg, m.ActionAmounts, func(c prometheus.Collector) {
		if existing, ok := c.(*prometheus.CounterVec); ok {
			m.ActionAmounts = existing
		}
	})
	mustRegisterCollector(reg, m.Failures, func(c prometheus.Collector) {
		if existing, ok := c.(*prometheus.CounterVec); ok {
			m.Failures = existing
		}
	})
	mustRegisterCollector(reg, m.RunDuration, func(c prometheus.Collector) {
		if existing, ok := c.(prometheus.Histogram); ok {
			m.RunDuration = existing
		}
	})
	return m
}

// ObserveRentals counts rentals priced by a rentals report.
func (m *PricingMetrics) ObserveRentals(n int) {
	if m == nil {
		return
	}
	m.RentalsPriced.Add(float64(n))
}

// ObserveModifications counts amended rentals reconciled by a modifications report.
func (m *PricingMetrics) ObserveModifications(n int) {
	if m == nil {
		return
	}
	m.Modifications.Add(float64(n))
}

// ObserveAction records one payment action for who in the given direction.
func (m *PricingMetrics) ObserveAction(who, direction string, amount int64) {
	if m == nil {
		return
	}
	m.Actions.WithLabelValues(who, direction).Inc()
	m.ActionAmounts.WithLabelValues(who, direction).Add(float64(amount))
}

// ObserveDuration records how long report generation took.
func (m *PricingMetrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(DurationMillis(d))
}

// ObserveFailure counts an aborted run under kind.
func (m *PricingMetrics) ObserveFailure(kind string) {
	if m == nil || kind == "" {
		return
	}
	m.Failures.WithLabelValues(kind).Inc()
}

// FlushTextfile writes every metric gathered by g to path in the node exporter
// textfile format.
func FlushTextfile(path string, g prometheus.Gatherer) error {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// DurationMillis converts a duration to milliseconds for metric observation.
func DurationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register pricing metric: %w", err))
	}
}
