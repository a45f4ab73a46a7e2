package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/weekvote/internal/cli/render"
)

// NewRewardsCmd creates the rewards command group
func NewRewardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewards",
		Short: "Inspect and distribute weekly rewards",
	}

	cmd.AddCommand(newRewardsDistributeCmd())
	cmd.AddCommand(newRewardsListCmd())

	return cmd
}

func newRewardsDistributeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "distribute <week>",
		Short: "Pay the rewards of a settled week",
		Long: `Pay every voter of the week's winner and its author. Recipients already paid
are skipped, so the command can be repeated until nothing is left.`,
		Example: `  weekvote rewards distribute 2025-W07`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			report, err := app.DistributeRewards.Distribute(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return render.NewFinalizeRenderer(cmd.OutOrStdout(), app.Config.Output).RenderDistribution(report)
		},
	}
}

func newRewardsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list [week]",
		Aliases: []string{"ls"},
		Short:   "List the payouts recorded for a week",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			var week string
			if len(args) == 1 {
				week = args[0]
			}

			result, err := app.ListRewards.Run(cmd.Context(), week)
			if err != nil {
				return err
			}

			return render.NewRewardsRenderer(cmd.OutOrStdout(), app.Config.Output).Render(result)
		},
	}
}
