package ws

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	activeRooms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "game_rooms_active",
			Help: "Number of live game rooms",
		},
	)
	wordsFound = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "game_words_found_total",
			Help: "Total valid words scored across all sessions",
		},
	)
)

func init() {
	prometheus.MustRegister(activeRooms)
	prometheus.MustRegister(wordsFound)
}
