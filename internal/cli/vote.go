package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/weekvote/internal/cli/render"
	"github.com/trebuchet-org/weekvote/internal/usecase"
)

// NewVoteCmd creates the vote command
func NewVoteCmd() *cobra.Command {
	var voter, txHash string

	cmd := &cobra.Command{
		Use:   "vote <proposalId>",
		Short: "Record a vote sent from a voter's wallet",
		Long: `Record a vote that the voter already sent to the voting contract. The
transaction must have succeeded on the ledger and each address votes once per
proposal.`,
		Example: `  weekvote vote 12 --voter 0xabc... --tx 0x123...`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			id, err := parseID("proposal id", args[0])
			if err != nil {
				return err
			}

			result, err := app.CastVote.Run(cmd.Context(), usecase.CastVoteParams{
				ProposalID: id,
				Voter:      voter,
				TxHash:     txHash,
			})
			if err != nil {
				return err
			}

			return render.NewProposalsRenderer(cmd.OutOrStdout(), app.Config.Output).RenderVote(result)
		},
	}

	cmd.Flags().StringVar(&voter, "voter", "", "Address that sent the vote")
	cmd.Flags().StringVar(&txHash, "tx", "", "Hash of the vote transaction")
	_ = cmd.MarkFlagRequired("voter")
	_ = cmd.MarkFlagRequired("tx")

	return cmd
}
