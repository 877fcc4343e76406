package update

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	prometheus.MustRegister(stepSubmissionsMetric, updatesSubmittedMetric)
}

var stepSubmissionsMetric = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "scr",
	Subsystem: "wizard",
	Name:      "step_submissions_total",
	Help:      "Total wizard step submissions by step and result",
}, []string{"step", "result"})

var updatesSubmittedMetric = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "scr",
	Subsystem: "monthly_updates",
	Name:      "submitted_total",
	Help:      "Total monthly updates submitted",
})

const (
	resultSaved   = "saved"
	resultInvalid = "invalid"
)
