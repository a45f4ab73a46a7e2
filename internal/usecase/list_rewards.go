package usecase

import (
	"context"
	"fmt"
	"math/big"

	"github.com/trebuchet-org/weekvote/internal/domain"
	"github.com/trebuchet-org/weekvote/internal/domain/models"
)

// ListRewardsResult holds a week's payout markers
type ListRewardsResult struct {
	Week    string           `json:"week"`
	Rewards []*models.Reward `json:"rewards"`
}

// Total returns the sum paid so far
func (r *ListRewardsResult) Total() *big.Int {
	total := new(big.Int)
	for _, reward := range r.Rewards {
		if reward.Status == models.RewardStatusPaid && reward.Amount != nil {
			total.Add(total, reward.Amount)
		}
	}
	return total
}

// ListRewards is the use case for inspecting a week's payouts
type ListRewards struct {
	rewards RewardStore
	clock   Clock
}

// NewListRewards creates a new ListRewards use case
func NewListRewards(rewards RewardStore, clock Clock) *ListRewards {
	return &ListRewards{rewards: rewards, clock: clock}
}

// Run lists the payout markers of week, or of the current week when empty
func (uc *ListRewards) Run(ctx context.Context, week string) (*ListRewardsResult, error) {
	if week == "" {
		week = domain.WeekOf(uc.clock())
	} else if _, err := domain.ParseWeek(week); err != nil {
		return nil, err
	}

	rewards, err := uc.rewards.ListRewards(ctx, week)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards of %s: %w", week, err)
	}
	return &ListRewardsResult{Week: week, Rewards: rewards}, nil
}
