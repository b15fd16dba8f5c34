package web

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TracksPlayed counts tracks the bot started streaming.
	TracksPlayed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tunelink",
		Name:      "tracks_played_total",
		Help:      "Number of tracks started.",
	})

	// CommandsHandled counts executed interactions by command name.
	CommandsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tunelink",
		Name:      "commands_handled_total",
		Help:      "Number of interactions handled, labelled by command.",
	}, []string{"command"})

	// IdleDisconnects counts sessions torn down by the inactivity timer.
	IdleDisconnects = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tunelink",
		Name:      "idle_disconnects_total",
		Help:      "Number of voice sessions closed for inactivity.",
	})
)

var sessionGaugeOnce sync.Once

func registerSessionGauge(active func() int) {
	sessionGaugeOnce.Do(func() {
		promauto.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "tunelink",
			Name:      "active_sessions",
			Help:      "Number of live voice sessions.",
		}, func() float64 {
			return float64(active())
		})
	})
}
