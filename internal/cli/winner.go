package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/weekvote/internal/cli/render"
)

// NewWinnerCmd creates the winner command
func NewWinnerCmd() *cobra.Command {
	var week string

	cmd := &cobra.Command{
		Use:   "winner",
		Short: "Show the winner of a week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ShowWeeklyWinner.Run(cmd.Context(), week)
			if err != nil {
				return err
			}

			return render.NewProposalsRenderer(cmd.OutOrStdout(), app.Config.Output).RenderWinner(result)
		},
	}

	cmd.Flags().StringVar(&week, "week", "", "Week to show (YYYY-Www, defaults to the current week)")

	return cmd
}
