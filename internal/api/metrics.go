package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"gosubgroup/domain/run"
	"gosubgroup/domain/subgroup"
)

var (
	discoveryRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gosubgroup_discovery_runs_total",
		Help: "Total discovery runs by strategy and final status",
	}, []string{"strategy", "status"})

	discoveryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gosubgroup_discovery_duration_seconds",
		Help:    "Wall time of a discovery run, search and summary included",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
	}, []string{"strategy"})

	searchLevels = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gosubgroup_search_levels_total",
		Help: "Total beam search levels started",
	})

	searchSeeds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gosubgroup_search_seeds_expanded_total",
		Help: "Total seeds expanded by the beam search",
	})

	searchBeamSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gosubgroup_search_beam_size",
		Help:    "Beam size at the end of each level",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})
)

// Metrics feeds Prometheus from the search and from finished runs. It is
// safe for concurrent use.
type Metrics struct{}

func (Metrics) LevelStarted(level int, seeds int) {
	searchLevels.Inc()
}

func (Metrics) SeedStarted(level int, seed subgroup.Description, seedQuality float64) {
	searchSeeds.Inc()
}

func (Metrics) LevelFinished(level int, beamSize int, resultSize int) {
	searchBeamSize.Observe(float64(beamSize))
}

func (Metrics) RunFinished(strategy string, status run.Status, elapsed time.Duration) {
	discoveryRuns.WithLabelValues(strategy, string(status)).Inc()
	discoveryDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
}
