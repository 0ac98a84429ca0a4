package forms

import "github.com/prometheus/client_golang/prometheus"

var submissions = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "theboolean_form_submissions_total",
	Help: "Public form submissions by form and result (accepted, invalid, limited, error).",
}, []string{"form", "result"})

func init() {
	prometheus.MustRegister(submissions)
}
