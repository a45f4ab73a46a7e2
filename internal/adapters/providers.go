package adapters

import (
	"log/slog"
	"time"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/trebuchet-org/weekvote/internal/adapters/ledger"
	"github.com/trebuchet-org/weekvote/internal/adapters/metrics"
	"github.com/trebuchet-org/weekvote/internal/adapters/scheduler"
	"github.com/trebuchet-org/weekvote/internal/adapters/store"
	"github.com/trebuchet-org/weekvote/internal/domain/config"
	"github.com/trebuchet-org/weekvote/internal/usecase"
)

// ProvideClock provides the wall clock in UTC
func ProvideClock() usecase.Clock {
	return func() time.Time { return time.Now().UTC() }
}

// ProvideStore opens the record store and closes it on cleanup
func ProvideStore(cfg *config.RuntimeConfig, log *slog.Logger) (*store.Store, func(), error) {
	s, err := store.NewStore(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := s.Close(); err != nil {
			log.Warn("failed to close store", "error", err)
		}
	}
	return s, cleanup, nil
}

// ProvideRegistry provides a Prometheus registry with the Go runtime and
// process collectors
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// StoreSet provides the sqlite-backed stores
var StoreSet = wire.NewSet(
	ProvideStore,
	wire.Bind(new(usecase.ProposalStore), new(*store.Store)),
	wire.Bind(new(usecase.VoteStore), new(*store.Store)),
	wire.Bind(new(usecase.RewardStore), new(*store.Store)),
	wire.Bind(new(usecase.ItemStore), new(*store.Store)),
	wire.Bind(new(usecase.Transactor), new(*store.Store)),
)

// LedgerSet provides the go-ethereum ledger client
var LedgerSet = wire.NewSet(
	ledger.NewClient,
	wire.Bind(new(usecase.LedgerClient), new(*ledger.Client)),
)

// MetricsSet provides Prometheus-backed engine metrics
var MetricsSet = wire.NewSet(
	ProvideRegistry,
	wire.Bind(new(prometheus.Registerer), new(*prometheus.Registry)),
	wire.Bind(new(prometheus.Gatherer), new(*prometheus.Registry)),
	metrics.NewEngine,
	wire.Bind(new(usecase.EngineMetrics), new(*metrics.Engine)),
)

// SchedulerSet provides the recurring finalization trigger
var SchedulerSet = wire.NewSet(
	scheduler.New,
	wire.Bind(new(scheduler.Finalizer), new(*usecase.FinalizeWeek)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	ProvideClock,
	StoreSet,
	LedgerSet,
	MetricsSet,
	SchedulerSet,
)
