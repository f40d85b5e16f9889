package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Cycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scalper_cycles_total",
			Help: "Strategy cycles by symbol and outcome (ok, skipped, error).",
		},
		[]string{"symbol", "result"},
	)

	Votes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scalper_votes_total",
			Help: "Multi-timeframe decisions by symbol and vote.",
		},
		[]string{"symbol", "vote"},
	)

	TimeframeScore = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scalper_timeframe_score",
			Help: "Last multi-timeframe StochRSI score per symbol.",
		},
		[]string{"symbol"},
	)

	Regions = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scalper_regions",
			Help: "Block-order regions found in the last refresh.",
		},
		[]string{"symbol", "side"},
	)

	OrdersSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scalper_orders_submitted_total",
			Help: "Orders sent to the broker by symbol, kind and result.",
		},
		[]string{"symbol", "kind", "result"},
	)

	PositionsWatched = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scalper_positions_watched",
			Help: "Positions currently under lifecycle supervision.",
		},
		[]string{"symbol", "side"},
	)

	Ratchets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scalper_ratchets_total",
			Help: "Stop-loss/take-profit ratchet modifications.",
		},
		[]string{"symbol", "side"},
	)

	MarginRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scalper_margin_rejections_total",
			Help: "Entries skipped by the free-margin gate.",
		},
		[]string{"symbol"},
	)
)

func init() {
	prometheus.MustRegister(
		Cycles, Votes, TimeframeScore, Regions,
		OrdersSubmitted, PositionsWatched, Ratchets, MarginRejections,
	)
}
