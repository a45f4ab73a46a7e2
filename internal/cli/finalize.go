package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/weekvote/internal/cli/render"
	"github.com/trebuchet-org/weekvote/internal/usecase"
)

// NewFinalizeCmd creates the finalize command
func NewFinalizeCmd() *cobra.Command {
	var week string

	cmd := &cobra.Command{
		Use:   "finalize",
		Short: "Run the finalization engine once",
		Long: `Close every expired proposal on the voting contract, select the week's winner
and distribute its rewards.

The run is idempotent: anything already settled is skipped, so running it again
after a partial failure only retries what is left.`,
		Example: `  # Settle the current week
  weekvote finalize

  # Retry the payouts of an earlier week
  weekvote finalize --week 2025-W07`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			report, err := app.FinalizeWeek.Run(cmd.Context(), app.Clock(), usecase.FinalizeOptions{Week: week})
			if err != nil {
				return err
			}

			return render.NewFinalizeRenderer(cmd.OutOrStdout(), app.Config.Output).RenderReport(report)
		},
	}

	cmd.Flags().StringVar(&week, "week", "", "Week whose winner is settled (YYYY-Www, defaults to the current week)")

	return cmd
}
