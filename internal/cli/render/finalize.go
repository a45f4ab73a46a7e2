package render

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/trebuchet-org/weekvote/internal/config"
	"github.com/trebuchet-org/weekvote/internal/domain/models"
	"github.com/trebuchet-org/weekvote/internal/usecase"
)

// FinalizeRenderer renders finalization and distribution reports
type FinalizeRenderer struct {
	out    io.Writer
	format string
}

// NewFinalizeRenderer creates a new finalize renderer
func NewFinalizeRenderer(out io.Writer, format string) *FinalizeRenderer {
	return &FinalizeRenderer{out: out, format: format}
}

type proposalOutcomeView struct {
	ProposalID uint64 `json:"proposalId"`
	Status     string `json:"status"`
	TxHash     string `json:"txHash,omitempty"`
	Error      string `json:"error,omitempty"`
}

type rewardOutcomeView struct {
	Week      string `json:"week"`
	Recipient string `json:"recipient"`
	Kind      string `json:"kind"`
	Amount    string `json:"amount"`
	Status    string `json:"status"`
	TxHash    string `json:"txHash,omitempty"`
	Error     string `json:"error,omitempty"`
}

type distributionView struct {
	Week       string              `json:"week"`
	WinnerID   *uint64             `json:"winnerProposalId,omitempty"`
	Outcomes   []rewardOutcomeView `json:"outcomes"`
	NeedsRetry bool                `json:"needsRetry"`
}

type finalizeView struct {
	RunID             string                `json:"runId"`
	Week              string                `json:"week"`
	StartedAt         time.Time             `json:"startedAt"`
	DurationMs        int64                 `json:"durationMs"`
	Proposals         []proposalOutcomeView `json:"proposals"`
	Winner            *models.Proposal      `json:"winner,omitempty"`
	WinnerNewlyMarked bool                  `json:"winnerNewlyMarked"`
	Rewards           *distributionView     `json:"rewards,omitempty"`
	Interrupted       string                `json:"interrupted,omitempty"`
	NeedsRetry        bool                  `json:"needsRetry"`
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func newDistributionView(r *usecase.DistributionReport) *distributionView {
	if r == nil {
		return nil
	}
	view := &distributionView{
		Week:       r.Week,
		Outcomes:   make([]rewardOutcomeView, 0, len(r.Outcomes)),
		NeedsRetry: r.NeedsRetry(),
	}
	if r.Winner != nil {
		id := r.Winner.ProposalID
		view.WinnerID = &id
	}
	for _, o := range r.Outcomes {
		view.Outcomes = append(view.Outcomes, rewardOutcomeView{
			Week:      o.Key.Week,
			Recipient: o.Key.Recipient,
			Kind:      string(o.Key.Kind),
			Amount:    config.FormatTokenAmount(o.Amount),
			Status:    string(o.Status),
			TxHash:    o.TxHash,
			Error:     errString(o.Err),
		})
	}
	return view
}

func newFinalizeView(r *usecase.FinalizeReport) *finalizeView {
	view := &finalizeView{
		RunID:             r.RunID,
		Week:              r.Week,
		StartedAt:         r.StartedAt,
		DurationMs:        r.Duration.Milliseconds(),
		Proposals:         make([]proposalOutcomeView, 0, len(r.Proposals)),
		Winner:            r.Winner,
		WinnerNewlyMarked: r.WinnerNewlyMarked,
		Rewards:           newDistributionView(r.Rewards),
		Interrupted:       errString(r.Interrupted),
		NeedsRetry:        r.NeedsRetry(),
	}
	for _, p := range r.Proposals {
		view.Proposals = append(view.Proposals, proposalOutcomeView{
			ProposalID: p.ProposalID,
			Status:     string(p.Status),
			TxHash:     p.TxHash,
			Error:      errString(p.Err),
		})
	}
	return view
}

// RenderReport renders one engine run
func (r *FinalizeRenderer) RenderReport(report *usecase.FinalizeReport) error {
	if r.format != FormatTable {
		return WriteStructured(r.out, r.format, newFinalizeView(report))
	}

	fmt.Fprintln(r.out, headerStyle.Sprintf("Finalization of %s", report.Week))
	fmt.Fprintln(r.out, faintStyle.Sprintf("run %s, %s", report.RunID, report.Duration.Round(time.Millisecond)))
	fmt.Fprintln(r.out)

	if len(report.Proposals) == 0 {
		fmt.Fprintln(r.out, "No expired proposals")
	} else {
		fmt.Fprintln(r.out, headerStyle.Sprint("Proposals"))
		for _, p := range report.Proposals {
			fmt.Fprintf(r.out, "  #%-6d %s%s\n", p.ProposalID, statusLabel(p.Status), detail(p.TxHash, p.Err))
		}
	}
	fmt.Fprintln(r.out)

	if report.Winner == nil {
		fmt.Fprintln(r.out, "No winner this week")
	} else {
		marker := ""
		if !report.WinnerNewlyMarked {
			marker = faintStyle.Sprint(" (already marked)")
		}
		fmt.Fprintf(r.out, "🏆 Winner: %s, token %d with %d votes%s\n",
			winnerStyle.Sprintf("proposal #%d", report.Winner.ProposalID),
			report.Winner.TokenID, report.Winner.VoteCount, marker)
	}

	if report.Rewards != nil && len(report.Rewards.Outcomes) > 0 {
		fmt.Fprintln(r.out)
		r.renderOutcomes(report.Rewards)
	}

	fmt.Fprintln(r.out)
	if report.Interrupted != nil {
		fmt.Fprintln(r.out, FormatWarning(report.Interrupted.Error()))
	}
	r.renderFooter(report.NeedsRetry())
	return nil
}

// RenderDistribution renders a standalone reward distribution
func (r *FinalizeRenderer) RenderDistribution(report *usecase.DistributionReport) error {
	if r.format != FormatTable {
		return WriteStructured(r.out, r.format, newDistributionView(report))
	}
	if report.Winner == nil {
		fmt.Fprintf(r.out, "No winner for %s, nothing to distribute\n", report.Week)
		return nil
	}
	r.renderOutcomes(report)
	fmt.Fprintln(r.out)
	r.renderFooter(report.NeedsRetry())
	return nil
}

func (r *FinalizeRenderer) renderOutcomes(report *usecase.DistributionReport) {
	fmt.Fprintln(r.out, headerStyle.Sprint("Rewards"))
	for _, o := range report.Outcomes {
		recipient := o.Key.Recipient
		if recipient == "" {
			recipient = "-"
		}
		fmt.Fprintf(r.out, "  %-6s  %-42s  %8s  %s%s\n",
			o.Key.Kind, addressStyle.Sprint(recipient), config.FormatTokenAmount(o.Amount),
			statusLabel(o.Status), detail(o.TxHash, o.Err))
	}
}

func (r *FinalizeRenderer) renderFooter(needsRetry bool) {
	if needsRetry {
		fmt.Fprintln(r.out, FormatWarning("Some items were deferred; the next run retries them"))
		return
	}
	fmt.Fprintln(r.out, FormatSuccess("Week settled"))
}

func statusLabel(s usecase.OutcomeStatus) string {
	var c *color.Color
	switch s {
	case usecase.OutcomeFinalized, usecase.OutcomePaid, usecase.OutcomeReconciled:
		c = okStyle
	case usecase.OutcomeDeferred:
		c = warnStyle
	case usecase.OutcomeRejected, usecase.OutcomeFailed:
		c = errStyle
	default:
		c = faintStyle
	}
	return c.Sprintf("%-10s", s)
}

func detail(txHash string, err error) string {
	switch {
	case err != nil:
		return "  " + faintStyle.Sprint(err.Error())
	case txHash != "":
		return "  " + faintStyle.Sprint("tx "+shortHash(txHash))
	default:
		return ""
	}
}
