package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/trebuchet-org/weekvote/internal/domain/models"
	"github.com/trebuchet-org/weekvote/internal/usecase"
)

const namespace = "weekvote"

// Engine records finalization runs in Prometheus
type Engine struct {
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	lastRun       prometheus.Gauge
	proposals     *prometheus.CounterVec
	rewards       *prometheus.CounterVec
	winners       prometheus.Counter
	lastWinnerRun prometheus.Gauge
}

var _ usecase.EngineMetrics = (*Engine)(nil)

// NewEngine registers the engine metrics on reg
func NewEngine(reg prometheus.Registerer) *Engine {
	factory := promauto.With(reg)
	return &Engine{
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "finalization_runs_total",
				Help:      "Finalization runs by whether work was left for a later run",
			},
			[]string{"needs_retry"},
		),
		runDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "finalization_run_duration_seconds",
				Help:      "Wall time of one finalization run",
				Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
			},
		),
		lastRun: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "finalization_last_run_timestamp_seconds",
				Help:      "Unix time the last finalization run finished",
			},
		),
		proposals: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "proposals_processed_total",
				Help:      "Expired proposals processed by outcome",
			},
			[]string{"outcome"},
		),
		rewards: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rewards_processed_total",
				Help:      "Reward payouts processed by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		winners: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "weekly_winners_total",
				Help:      "Weekly winners marked",
			},
		),
		lastWinnerRun: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "weekly_winner_last_marked_timestamp_seconds",
				Help:      "Unix time a weekly winner was last marked",
			},
		),
	}
}

func (m *Engine) ObserveRun(duration time.Duration, needsRetry bool) {
	label := "false"
	if needsRetry {
		label = "true"
	}
	m.runs.WithLabelValues(label).Inc()
	m.runDuration.Observe(duration.Seconds())
	m.lastRun.SetToCurrentTime()
}

func (m *Engine) ProposalOutcome(status usecase.OutcomeStatus) {
	m.proposals.WithLabelValues(string(status)).Inc()
}

func (m *Engine) RewardOutcome(kind models.RewardKind, status usecase.OutcomeStatus) {
	m.rewards.WithLabelValues(string(kind), string(status)).Inc()
}

func (m *Engine) WinnerSelected(string) {
	m.winners.Inc()
	m.lastWinnerRun.SetToCurrentTime()
}
