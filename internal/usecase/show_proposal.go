package usecase

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/trebuchet-org/weekvote/internal/domain/models"
)

// ProposalDetail is a proposal with its item, votes and voter list
type ProposalDetail struct {
	Proposal *models.Proposal `json:"proposal"`
	Item     *models.Item     `json:"item"`
	Votes    []*models.Vote   `json:"votes"`
	Voters   []string         `json:"voterAddresses"`
}

// ShowProposal is the use case for showing one proposal
type ShowProposal struct {
	proposals ProposalStore
	votes     VoteStore
	items     ItemStore
}

// NewShowProposal creates a new ShowProposal use case
func NewShowProposal(proposals ProposalStore, votes VoteStore, items ItemStore) *ShowProposal {
	return &ShowProposal{
		proposals: proposals,
		votes:     votes,
		items:     items,
	}
}

// Run returns the proposal detail or an error wrapping domain.ErrNotFound
func (uc *ShowProposal) Run(ctx context.Context, proposalID uint64) (*ProposalDetail, error) {
	proposal, err := uc.proposals.GetByProposalID(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("proposal %d: %w", proposalID, err)
	}

	item, err := lookupItem(ctx, uc.items, proposal.TokenID)
	if err != nil {
		return nil, err
	}

	votes, err := uc.votes.ListByProposal(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load votes of proposal %d: %w", proposalID, err)
	}

	return &ProposalDetail{
		Proposal: proposal,
		Item:     item,
		Votes:    votes,
		Voters: lo.Map(votes, func(v *models.Vote, _ int) string {
			return v.Voter
		}),
	}, nil
}
