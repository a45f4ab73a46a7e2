package store

import (
	"context"
	"fmt"
	"time"

	"github.com/trebuchet-org/weekvote/internal/domain"
	"github.com/trebuchet-org/weekvote/internal/domain/models"
	"github.com/trebuchet-org/weekvote/internal/usecase"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ usecase.RewardStore = (*Store)(nil)

func keyWhere(db *gorm.DB, key models.RewardKey) *gorm.DB {
	return db.Model(&rewardRow{}).
		Where("week = ? AND recipient = ? AND kind = ?", key.Week, key.Recipient, string(key.Kind))
}

// GetReward returns the marker of key or domain.ErrNotFound
func (s *Store) GetReward(ctx context.Context, key models.RewardKey) (*models.Reward, error) {
	var row rewardRow
	err := s.conn(ctx).
		Where("week = ? AND recipient = ? AND kind = ?", key.Week, key.Recipient, string(key.Kind)).
		First(&row).Error
	if err != nil {
		return nil, notFound(err)
	}
	return row.model(), nil
}

// ClaimReward inserts a pending marker, or moves a failed one back to pending.
// Exactly one concurrent caller wins; the others get domain.ErrAlreadyClaimed.
func (s *Store) ClaimReward(ctx context.Context, reward *models.Reward) error {
	now := reward.UpdatedAt.UTC()
	if now.IsZero() {
		now = time.Now().UTC()
	}
	amount := "0"
	if reward.Amount != nil {
		amount = reward.Amount.String()
	}
	row := &rewardRow{
		Week:       reward.Week,
		Recipient:  reward.Recipient,
		Kind:       string(reward.Kind),
		ProposalID: reward.ProposalID,
		Amount:     amount,
		Status:     string(models.RewardStatusPending),
		Attempts:   1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	result := s.conn(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "week"}, {Name: "recipient"}, {Name: "kind"}},
		DoUpdates: clause.Assignments(map[string]any{
			"status":      string(models.RewardStatusPending),
			"tx_hash":     "",
			"proposal_id": reward.ProposalID,
			"amount":      amount,
			"attempts":    gorm.Expr("rewards.attempts + 1"),
			"updated_at":  now,
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Eq{Column: clause.Column{Table: "rewards", Name: "status"}, Value: string(models.RewardStatusFailed)},
		}},
	}).Create(row)
	if result.Error != nil {
		return fmt.Errorf("failed to claim reward: %w", classify(result.Error))
	}
	if result.RowsAffected == 0 {
		return domain.ErrAlreadyClaimed
	}
	return nil
}

// SetRewardTxHash records the broadcast transfer of a pending payout
func (s *Store) SetRewardTxHash(ctx context.Context, key models.RewardKey, txHash string) error {
	return s.updateReward(ctx, key, "status = ?", string(models.RewardStatusPending), map[string]any{
		"tx_hash": txHash,
	})
}

// MarkRewardPaid settles a payout
func (s *Store) MarkRewardPaid(ctx context.Context, key models.RewardKey, txHash string, at time.Time) error {
	return s.updateReward(ctx, key, "", nil, map[string]any{
		"status":     string(models.RewardStatusPaid),
		"tx_hash":    txHash,
		"paid_at":    at.UTC(),
		"last_error": "",
	})
}

// MarkRewardFailed records a failed transfer so the next run can reclaim it.
// A paid marker is never downgraded.
func (s *Store) MarkRewardFailed(ctx context.Context, key models.RewardKey, reason string) error {
	return s.updateReward(ctx, key, "status <> ?", string(models.RewardStatusPaid), map[string]any{
		"status":     string(models.RewardStatusFailed),
		"last_error": reason,
	})
}

func (s *Store) updateReward(ctx context.Context, key models.RewardKey, cond string, arg any, values map[string]any) error {
	query := keyWhere(s.conn(ctx), key)
	if cond != "" {
		query = query.Where(cond, arg)
	}
	result := query.Updates(values)
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("reward %s/%s/%s: %w", key.Week, key.Kind, key.Recipient, domain.ErrNotFound)
	}
	return nil
}

// ListRewards returns every marker of week
func (s *Store) ListRewards(ctx context.Context, week string) ([]*models.Reward, error) {
	var rows []rewardRow
	if err := s.conn(ctx).Where("week = ?", week).Order("kind, recipient").Find(&rows).Error; err != nil {
		return nil, classify(err)
	}
	out := make([]*models.Reward, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].model())
	}
	return out, nil
}
