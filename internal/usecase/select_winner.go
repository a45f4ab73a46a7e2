package usecase

import "github.com/trebuchet-org/weekvote/internal/domain/models"

// SelectWinner returns the settled proposal with the most votes, or nil when
// no proposal received a vote. Ties go to the lowest proposal id.
//
// Inputs are expected to share one week and be inactive; active proposals and
// proposals from a different week than the first settled one are ignored.
func SelectWinner(proposals []*models.Proposal) *models.Proposal {
	var (
		winner *models.Proposal
		week   string
	)
	for _, p := range proposals {
		if p == nil || p.Active {
			continue
		}
		if week == "" {
			week = p.Week
		} else if p.Week != week {
			continue
		}
		if p.VoteCount == 0 {
			continue
		}
		if winner == nil ||
			p.VoteCount > winner.VoteCount ||
			(p.VoteCount == winner.VoteCount && p.ProposalID < winner.ProposalID) {
			winner = p
		}
	}
	return winner
}
