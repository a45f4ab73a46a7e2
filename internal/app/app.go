package app

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/trebuchet-org/weekvote/internal/adapters/scheduler"
	"github.com/trebuchet-org/weekvote/internal/domain/config"
	"github.com/trebuchet-org/weekvote/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Log    *slog.Logger

	// Use cases
	FinalizeWeek        *usecase.FinalizeWeek
	DistributeRewards   *usecase.DistributeRewards
	CastVote            *usecase.CastVote
	CreateProposal      *usecase.CreateProposal
	ListActiveProposals *usecase.ListActiveProposals
	ShowProposal        *usecase.ShowProposal
	ShowWeeklyWinner    *usecase.ShowWeeklyWinner
	ListRewards         *usecase.ListRewards
	AddItem             *usecase.AddItem

	// Long-running trigger and the metrics it exposes
	Scheduler *scheduler.Scheduler
	Gatherer  prometheus.Gatherer

	Clock usecase.Clock
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	finalizeWeek *usecase.FinalizeWeek,
	distributeRewards *usecase.DistributeRewards,
	castVote *usecase.CastVote,
	createProposal *usecase.CreateProposal,
	listActiveProposals *usecase.ListActiveProposals,
	showProposal *usecase.ShowProposal,
	showWeeklyWinner *usecase.ShowWeeklyWinner,
	listRewards *usecase.ListRewards,
	addItem *usecase.AddItem,
	sched *scheduler.Scheduler,
	gatherer prometheus.Gatherer,
	clock usecase.Clock,
) (*App, error) {
	return &App{
		Config:              cfg,
		Log:                 log,
		FinalizeWeek:        finalizeWeek,
		DistributeRewards:   distributeRewards,
		CastVote:            castVote,
		CreateProposal:      createProposal,
		ListActiveProposals: listActiveProposals,
		ShowProposal:        showProposal,
		ShowWeeklyWinner:    showWeeklyWinner,
		ListRewards:         listRewards,
		AddItem:             addItem,
		Scheduler:           sched,
		Gatherer:            gatherer,
		Clock:               clock,
	}, nil
}
