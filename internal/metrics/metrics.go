package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "elo_ladder"

type Metrics struct {
	MatchesRecorded *prometheus.CounterVec
	MatchesUndone   prometheus.Counter
	ImportOutcomes  *prometheus.CounterVec
	LeaderboardTime prometheus.Histogram
}

func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		MatchesRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_recorded_total",
			Help:      "Matches written to the ledger, by source.",
		}, []string{"source", "multiplier"}),
		MatchesUndone: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_undone_total",
			Help:      "Matches removed from the ledger by reversal.",
		}),
		ImportOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_descriptors_total",
			Help:      "Imported match descriptors, by classification.",
		}, []string{"outcome"}),
		LeaderboardTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "leaderboard_build_seconds",
			Help:      "Time spent deriving a leaderboard.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.MatchesRecorded, m.MatchesUndone, m.ImportOutcomes, m.LeaderboardTime)
	return m
}
