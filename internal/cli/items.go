package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/weekvote/internal/cli/render"
	"github.com/trebuchet-org/weekvote/internal/usecase"
)

// NewItemsCmd creates the items command group
func NewItemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Seed the item records proposals point at",
	}

	cmd.AddCommand(newItemsAddCmd())

	return cmd
}

func newItemsAddCmd() *cobra.Command {
	var params usecase.AddItemParams

	cmd := &cobra.Command{
		Use:     "add <tokenId>",
		Short:   "Import a minted item",
		Example: `  weekvote items add 7 --title Shakshuka --author 0xabc...`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params.TokenID, err = parseID("token id", args[0])
			if err != nil {
				return err
			}

			item, err := app.AddItem.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			return render.NewProposalsRenderer(cmd.OutOrStdout(), app.Config.Output).RenderItem(item)
		},
	}

	cmd.Flags().StringVar(&params.Title, "title", "", "Item title")
	cmd.Flags().StringVar(&params.Author, "author", "", "Author address, receives the author reward")
	cmd.Flags().StringVar(&params.MetadataURI, "metadata-uri", "", "Metadata URI of the minted token")

	return cmd
}
