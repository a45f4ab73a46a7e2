package usecase

import (
	"context"
	"fmt"

	"github.com/trebuchet-org/weekvote/internal/domain"
	"github.com/trebuchet-org/weekvote/internal/domain/models"
)

// WeeklyWinnerResult is the winner projection of a week. Found is false when
// no winner has been settled yet.
type WeeklyWinnerResult struct {
	Week     string           `json:"week"`
	Found    bool             `json:"found"`
	Proposal *models.Proposal `json:"proposal,omitempty"`
	Item     *models.Item     `json:"item,omitempty"`
}

// ShowWeeklyWinner is the use case for showing a week's winner
type ShowWeeklyWinner struct {
	proposals ProposalStore
	items     ItemStore
	clock     Clock
}

// NewShowWeeklyWinner creates a new ShowWeeklyWinner use case
func NewShowWeeklyWinner(proposals ProposalStore, items ItemStore, clock Clock) *ShowWeeklyWinner {
	return &ShowWeeklyWinner{
		proposals: proposals,
		items:     items,
		clock:     clock,
	}
}

// Run returns the winner of week, or of the current week when week is empty
func (uc *ShowWeeklyWinner) Run(ctx context.Context, week string) (*WeeklyWinnerResult, error) {
	if week == "" {
		week = domain.WeekOf(uc.clock())
	} else if _, err := domain.ParseWeek(week); err != nil {
		return nil, err
	}

	winners, err := uc.proposals.FindByWeek(ctx, week, domain.ProposalFilter{Winner: domain.Bool(true)})
	if err != nil {
		return nil, fmt.Errorf("failed to load winner of %s: %w", week, err)
	}
	result := &WeeklyWinnerResult{Week: week}
	if len(winners) == 0 {
		return result, nil
	}

	item, err := lookupItem(ctx, uc.items, winners[0].TokenID)
	if err != nil {
		return nil, err
	}
	result.Found = true
	result.Proposal = winners[0]
	result.Item = item
	return result, nil
}
