package webhook

import "github.com/prometheus/client_golang/prometheus"

var deliveries = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "theboolean_webhook_deliveries_total",
	Help: "Webhook POSTs by topic and result (ok, rejected, error).",
}, []string{"topic", "result"})

func init() {
	prometheus.MustRegister(deliveries)
}
