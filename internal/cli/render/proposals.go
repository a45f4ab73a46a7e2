package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/weekvote/internal/domain/models"
	"github.com/trebuchet-org/weekvote/internal/usecase"
)

// ProposalsRenderer renders proposals
type ProposalsRenderer struct {
	out    io.Writer
	format string
}

// NewProposalsRenderer creates a new proposals renderer
func NewProposalsRenderer(out io.Writer, format string) *ProposalsRenderer {
	return &ProposalsRenderer{out: out, format: format}
}

// RenderList renders the active proposals
func (r *ProposalsRenderer) RenderList(result *usecase.ListActiveProposalsResult) error {
	if r.format != FormatTable {
		return WriteStructured(r.out, r.format, result)
	}
	if len(result.Proposals) == 0 {
		fmt.Fprintln(r.out, "No active proposals")
		return nil
	}

	t := newTable()
	t.AppendHeader(table.Row{"ID", "TOKEN", "TITLE", "AUTHOR", "VOTES", "WEEK", "ENDS"})
	for _, view := range result.Proposals {
		title, author := "-", "-"
		if view.Item != nil {
			title = view.Item.Title
			author = shortHash(view.Item.Author)
		}
		p := view.Proposal
		t.AppendRow(table.Row{p.ProposalID, p.TokenID, title, author, p.VoteCount, p.Week, formatTime(p.EndTime)})
	}
	fmt.Fprintln(r.out, t.Render())
	return nil
}

// RenderDetail renders a single proposal with its voters
func (r *ProposalsRenderer) RenderDetail(detail *usecase.ProposalDetail) error {
	if r.format != FormatTable {
		return WriteStructured(r.out, r.format, detail)
	}

	p := detail.Proposal
	fmt.Fprintln(r.out, headerStyle.Sprintf("Proposal #%d", p.ProposalID))
	fmt.Fprintf(r.out, "  Token:     %d\n", p.TokenID)
	if detail.Item != nil {
		fmt.Fprintf(r.out, "  Title:     %s\n", detail.Item.Title)
		fmt.Fprintf(r.out, "  Author:    %s\n", addressStyle.Sprint(detail.Item.Author))
	}
	fmt.Fprintf(r.out, "  Week:      %s\n", p.Week)
	fmt.Fprintf(r.out, "  Status:    %s\n", proposalStatus(p))
	fmt.Fprintf(r.out, "  Votes:     %d\n", p.VoteCount)
	fmt.Fprintf(r.out, "  Ends:      %s\n", formatTime(p.EndTime))
	if p.FinalizedAt != nil {
		fmt.Fprintf(r.out, "  Finalized: %s\n", formatTime(*p.FinalizedAt))
	}
	if p.SettlementTxHash != "" {
		fmt.Fprintf(r.out, "  Tx:        %s\n", faintStyle.Sprint(p.SettlementTxHash))
	}

	if len(detail.Votes) == 0 {
		return nil
	}
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, headerStyle.Sprint("Voters"))
	for _, v := range detail.Votes {
		fmt.Fprintf(r.out, "  %s  %s\n", addressStyle.Sprint(v.Voter), faintStyle.Sprint(formatTime(v.CreatedAt)))
	}
	return nil
}

// RenderCreated renders a freshly created proposal
func (r *ProposalsRenderer) RenderCreated(result *usecase.CreateProposalResult) error {
	if r.format != FormatTable {
		return WriteStructured(r.out, r.format, result)
	}
	p := result.Proposal
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Created proposal #%d for token %d", p.ProposalID, p.TokenID)))
	fmt.Fprintf(r.out, "  Week: %s\n  Ends: %s\n  Tx:   %s\n", p.Week, formatTime(p.EndTime), p.SettlementTxHash)
	return nil
}

// RenderVote renders a registered vote
func (r *ProposalsRenderer) RenderVote(result *usecase.CastVoteResult) error {
	if r.format != FormatTable {
		return WriteStructured(r.out, r.format, result)
	}
	v := result.Vote
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Vote by %s on proposal #%d recorded", v.Voter, v.ProposalID)))
	return nil
}

// RenderItem renders a stored item
func (r *ProposalsRenderer) RenderItem(item *models.Item) error {
	if r.format != FormatTable {
		return WriteStructured(r.out, r.format, item)
	}
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Item %d %q by %s saved", item.TokenID, item.Title, item.Author)))
	return nil
}

// RenderWinner renders a week's winner
func (r *ProposalsRenderer) RenderWinner(result *usecase.WeeklyWinnerResult) error {
	if r.format != FormatTable {
		return WriteStructured(r.out, r.format, result)
	}
	if !result.Found {
		fmt.Fprintf(r.out, "No winner for %s yet\n", result.Week)
		return nil
	}

	p := result.Proposal
	fmt.Fprintf(r.out, "🏆 Winner of %s: %s\n", result.Week, winnerStyle.Sprintf("proposal #%d", p.ProposalID))
	if result.Item != nil {
		fmt.Fprintf(r.out, "  %s by %s\n", result.Item.Title, addressStyle.Sprint(result.Item.Author))
	}
	fmt.Fprintf(r.out, "  Token %d with %d votes\n", p.TokenID, p.VoteCount)
	return nil
}

func proposalStatus(p *models.Proposal) string {
	var parts []string
	if p.Active {
		parts = append(parts, okStyle.Sprint("active"))
	} else {
		parts = append(parts, faintStyle.Sprint("finalized"))
	}
	if p.IsWinner {
		parts = append(parts, winnerStyle.Sprint("winner"))
	}
	return strings.Join(parts, ", ")
}
