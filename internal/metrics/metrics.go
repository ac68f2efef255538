// Package metrics exposes Prometheus counters for gameplay and storage.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tropical_actions_total",
			Help: "Action card clicks by action id and outcome (applied, insufficient_funds, failed).",
		},
		[]string{"action", "outcome"},
	)

	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tropical_turns_total",
			Help: "Advanced turns by rolled event (crisis, boom, quiet).",
		},
		[]string{"event"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tropical_store_errors_total",
			Help: "Failed save slot operations by operation.",
		},
		[]string{"op"},
	)

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tropical_sessions_loaded",
		Help: "Sessions currently held in memory.",
	})

	SessionEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tropical_session_evictions_total",
			Help: "Sessions dropped from memory by reason (idle, capacity).",
		},
		[]string{"reason"},
	)

	ZoneFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tropical_zone_fallbacks_total",
		Help: "Times the zone document could not be loaded and the fallback zone was used.",
	})
)
