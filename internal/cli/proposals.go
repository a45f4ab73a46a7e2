package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/weekvote/internal/cli/render"
)

// NewProposalsCmd creates the proposals command group
func NewProposalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "proposals",
		Aliases: []string{"proposal"},
		Short:   "List, inspect and open proposals",
	}

	cmd.AddCommand(newProposalsListCmd())
	cmd.AddCommand(newProposalsShowCmd())
	cmd.AddCommand(newProposalsCreateCmd())

	return cmd
}

func newProposalsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List proposals still open for votes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ListActiveProposals.Run(cmd.Context())
			if err != nil {
				return err
			}

			return render.NewProposalsRenderer(cmd.OutOrStdout(), app.Config.Output).RenderList(result)
		},
	}
}

func newProposalsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <proposalId>",
		Short: "Show a proposal with its voters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			id, err := parseID("proposal id", args[0])
			if err != nil {
				return err
			}

			detail, err := app.ShowProposal.Run(cmd.Context(), id)
			if err != nil {
				return err
			}

			return render.NewProposalsRenderer(cmd.OutOrStdout(), app.Config.Output).RenderDetail(detail)
		},
	}
}

func newProposalsCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <tokenId>",
		Short: "Open a proposal for an item on the voting contract",
		Long: `Open a proposal for the item minted as tokenId. The voting window lasts
proposal.duration (one week by default) and the proposal belongs to the week in
which it was created.`,
		Example: `  weekvote proposals create 42`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			tokenID, err := parseID("token id", args[0])
			if err != nil {
				return err
			}

			result, err := app.CreateProposal.Run(cmd.Context(), tokenID)
			if err != nil {
				return err
			}

			return render.NewProposalsRenderer(cmd.OutOrStdout(), app.Config.Output).RenderCreated(result)
		},
	}
}

func parseID(name, s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return id, nil
}
