package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	GamesStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "khsm_games_started_total",
			Help: "Total games started",
		},
	)
	GamesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "khsm_games_finished_total",
			Help: "Total games finished, by status",
		},
		[]string{"status"},
	)
	HelpsUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "khsm_helps_used_total",
			Help: "Total lifelines used, by kind",
		},
		[]string{"kind"},
	)
	PrizesPaid = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "khsm_prizes_paid_total",
			Help: "Sum of prizes credited to players",
		},
	)
)

func init() {
	prometheus.MustRegister(GamesStarted)
	prometheus.MustRegister(GamesFinished)
	prometheus.MustRegister(HelpsUsed)
	prometheus.MustRegister(PrizesPaid)
}
