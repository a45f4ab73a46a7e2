//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/weekvote/internal/adapters"
	"github.com/trebuchet-org/weekvote/internal/config"
	"github.com/trebuchet-org/weekvote/internal/logging"
	"github.com/trebuchet-org/weekvote/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper, sink usecase.ProgressSink) (*App, func(), error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewDistributeRewards,
		usecase.NewFinalizeWeek,
		usecase.NewCastVote,
		usecase.NewCreateProposal,
		usecase.NewListActiveProposals,
		usecase.NewShowProposal,
		usecase.NewShowWeeklyWinner,
		usecase.NewListRewards,
		usecase.NewAddItem,

		// App
		NewApp,
	)
	return nil, nil, nil
}
