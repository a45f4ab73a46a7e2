package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/weekvote/internal/config"
	"github.com/trebuchet-org/weekvote/internal/usecase"
)

// RewardsRenderer renders a week's payout markers
type RewardsRenderer struct {
	out    io.Writer
	format string
}

// NewRewardsRenderer creates a new rewards renderer
func NewRewardsRenderer(out io.Writer, format string) *RewardsRenderer {
	return &RewardsRenderer{out: out, format: format}
}

// Render renders the rewards of one week
func (r *RewardsRenderer) Render(result *usecase.ListRewardsResult) error {
	if r.format != FormatTable {
		return WriteStructured(r.out, r.format, result)
	}
	if len(result.Rewards) == 0 {
		fmt.Fprintf(r.out, "No rewards recorded for %s\n", result.Week)
		return nil
	}

	t := newTable()
	t.AppendHeader(table.Row{"KIND", "RECIPIENT", "AMOUNT", "STATUS", "ATTEMPTS", "TX"})
	for _, rw := range result.Rewards {
		tx := "-"
		if rw.TxHash != "" {
			tx = shortHash(rw.TxHash)
		}
		t.AppendRow(table.Row{rw.Kind, rw.Recipient, config.FormatTokenAmount(rw.Amount), rw.Status, rw.Attempts, tx})
	}
	fmt.Fprintln(r.out, headerStyle.Sprintf("Rewards of %s", result.Week))
	fmt.Fprintln(r.out, t.Render())
	fmt.Fprintf(r.out, "Paid: %s tokens\n", config.FormatTokenAmount(result.Total()))
	return nil
}

var _ Renderer[*usecase.ListRewardsResult] = (*RewardsRenderer)(nil)
