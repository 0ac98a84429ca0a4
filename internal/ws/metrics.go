package ws

import "github.com/prometheus/client_golang/prometheus"

var (
	wsClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "theboolean_ws_clients",
		Help: "Connected live preview WebSocket sessions.",
	})
	wsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "theboolean_ws_dropped_messages_total",
		Help: "Queued messages evicted because a session fell behind.",
	})
)

func init() {
	prometheus.MustRegister(wsClients, wsDropped)
}
