package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/trebuchet-org/weekvote/internal/domain"
	"github.com/trebuchet-org/weekvote/internal/domain/models"
)

// ProposalView is a proposal joined with the item it refers to. Item is nil
// when the item record is missing.
type ProposalView struct {
	Proposal *models.Proposal `json:"proposal"`
	Item     *models.Item     `json:"item"`
}

// ListActiveProposalsResult contains the open proposals, newest first
type ListActiveProposalsResult struct {
	Proposals []*ProposalView `json:"proposals"`
}

// ListActiveProposals is the use case for listing proposals still open for votes
type ListActiveProposals struct {
	proposals ProposalStore
	items     ItemStore
	clock     Clock
}

// NewListActiveProposals creates a new ListActiveProposals use case
func NewListActiveProposals(proposals ProposalStore, items ItemStore, clock Clock) *ListActiveProposals {
	return &ListActiveProposals{
		proposals: proposals,
		items:     items,
		clock:     clock,
	}
}

// Run executes the list use case
func (uc *ListActiveProposals) Run(ctx context.Context) (*ListActiveProposalsResult, error) {
	proposals, err := uc.proposals.ListActive(ctx, uc.clock())
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}

	result := &ListActiveProposalsResult{Proposals: make([]*ProposalView, 0, len(proposals))}
	for _, p := range proposals {
		item, err := lookupItem(ctx, uc.items, p.TokenID)
		if err != nil {
			return nil, err
		}
		result.Proposals = append(result.Proposals, &ProposalView{Proposal: p, Item: item})
	}
	return result, nil
}

// lookupItem returns nil without error when the item is unknown
func lookupItem(ctx context.Context, items ItemStore, tokenID uint64) (*models.Item, error) {
	item, err := items.GetItem(ctx, tokenID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load item %d: %w", tokenID, err)
	}
	return item, nil
}
