package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK         = "ok"
	OutcomeIneligible = "ineligible"
	OutcomeInvalid    = "invalid"
)

// CalculationObserver exports grade calculation metrics. A nil observer
// records nothing.
type CalculationObserver struct {
	calculations *prometheus.CounterVec
	finalGrade   prometheus.Histogram
}

// NewCalculationObserver registers the calculation collectors on reg.
func NewCalculationObserver(namespace string, reg prometheus.Registerer) (*CalculationObserver, error) {
	if namespace == "" {
		namespace = "gradecalc"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &CalculationObserver{
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Grade calculations by outcome.",
		}, []string{"outcome"}),
		finalGrade: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "final_grade",
			Help:      "Distribution of computed final grades.",
			Buckets:   prometheus.LinearBuckets(0, 2, 11),
		}),
	}
	collectors := []prometheus.Collector{o.calculations, o.finalGrade}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, fmt.Errorf("register calculation metric: %w", err)
			}
			collectors[i] = are.ExistingCollector
		}
	}
	if cv, ok := collectors[0].(*prometheus.CounterVec); ok {
		o.calculations = cv
	}
	if h, ok := collectors[1].(prometheus.Histogram); ok {
		o.finalGrade = h
	}
	return o, nil
}

// RecordSuccess counts a finished calculation and observes its final grade.
func (o *CalculationObserver) RecordSuccess(finalGrade float64, eligible bool) {
	if o == nil {
		return
	}
	outcome := OutcomeOK
	if !eligible {
		outcome = OutcomeIneligible
	}
	o.calculations.WithLabelValues(outcome).Inc()
	o.finalGrade.Observe(finalGrade)
}

// RecordInvalid counts a calculation rejected by validation.
func (o *CalculationObserver) RecordInvalid() {
	if o == nil {
		return
	}
	o.calculations.WithLabelValues(OutcomeInvalid).Inc()
}
