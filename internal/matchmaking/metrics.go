package matchmaking

import (
	"github.com/prometheus/client_golang/prometheus"
)

var sessionsCreated = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "matchmaking_sessions_created_total",
		Help: "Total sessions created by the matchmaking consumer",
	},
)

func init() {
	prometheus.MustRegister(sessionsCreated)
}
