package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/weekvote/internal/adapters/progress"
	"github.com/trebuchet-org/weekvote/internal/app"
	"github.com/trebuchet-org/weekvote/internal/config"
	"github.com/trebuchet-org/weekvote/internal/logging"
	"github.com/trebuchet-org/weekvote/internal/usecase"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// session holds what PersistentPreRunE opened for the running command
type session struct {
	cleanup func()
	stop    func()
}

func (s *session) close() {
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
	if s.cleanup != nil {
		s.cleanup()
		s.cleanup = nil
	}
}

// skipApp lists commands that run without a wired app
var skipApp = map[string]bool{
	"version":    true,
	"help":       true,
	"completion": true,
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd, _ := newRootCmd()
	return cmd
}

// Execute runs the command line and releases the store and the spinner
// whether the command succeeded or not
func Execute(ctx context.Context) error {
	cmd, s := newRootCmd()
	defer s.close()
	return cmd.ExecuteContext(ctx)
}

func newRootCmd() (*cobra.Command, *session) {
	s := &session{}

	rootCmd := &cobra.Command{
		Use:   "weekvote",
		Short: "Weekly proposal voting and finalization engine",
		Long: `weekvote records votes on item proposals, closes expired proposals on the
voting contract, crowns the weekly winner and pays the configured token rewards
to its voters and author.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipApp[cmd.Name()] {
				return nil
			}

			v := config.SetupViper(cmd)

			var sink usecase.ProgressSink
			if cmd.Name() == "schedule" {
				sink = progress.NewLogSink(logging.New(v.GetBool("debug")))
			} else {
				interactive := !v.GetBool("non_interactive") && !v.GetBool("debug") && !color.NoColor
				spinner := progress.NewSpinnerSink(cmd.ErrOrStderr(), interactive)
				s.stop = spinner.Stop
				sink = spinner
			}

			appInstance, cleanup, err := app.InitApp(v, sink)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			s.cleanup = cleanup

			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			s.close()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable spinners")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().String("config", "", "Path to weekvote.toml (searched upwards from the working directory by default)")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory holding the record store")
	rootCmd.PersistentFlags().String("rpc-url", "", "Ledger RPC endpoint")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "engine",
		Title: "Engine Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "voting",
		Title: "Voting Commands",
	})

	for _, c := range []*cobra.Command{NewFinalizeCmd(), NewScheduleCmd(), NewRewardsCmd()} {
		c.GroupID = "engine"
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{NewProposalsCmd(), NewVoteCmd(), NewWinnerCmd(), NewItemsCmd()} {
		c.GroupID = "voting"
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd, s
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}
