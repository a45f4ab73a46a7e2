package store

import (
	"context"
	"fmt"

	"github.com/trebuchet-org/weekvote/internal/domain"
	"github.com/trebuchet-org/weekvote/internal/domain/models"
	"github.com/trebuchet-org/weekvote/internal/usecase"
	"gorm.io/gorm/clause"
)

var _ usecase.ItemStore = (*Store)(nil)

// GetItem returns the item minted as tokenID or domain.ErrNotFound
func (s *Store) GetItem(ctx context.Context, tokenID uint64) (*models.Item, error) {
	var row itemRow
	if err := s.conn(ctx).First(&row, "token_id = ?", tokenID).Error; err != nil {
		return nil, notFound(err)
	}
	return row.model(), nil
}

// SaveItem inserts or replaces an item record
func (s *Store) SaveItem(ctx context.Context, item *models.Item) error {
	row := &itemRow{
		TokenID:        item.TokenID,
		Title:          item.Title,
		Author:         item.Author,
		MetadataURI:    item.MetadataURI,
		IsWeeklyWinner: item.IsWeeklyWinner,
		CreatedAt:      item.CreatedAt.UTC(),
	}
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token_id"}},
		UpdateAll: true,
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to save item %d: %w", item.TokenID, classify(err))
	}
	return nil
}

// MarkWeeklyWinner flags an item as a weekly winner. Repeating it is harmless.
func (s *Store) MarkWeeklyWinner(ctx context.Context, tokenID uint64) error {
	result := s.conn(ctx).Model(&itemRow{}).
		Where("token_id = ?", tokenID).
		Update("is_weekly_winner", true)
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("item %d: %w", tokenID, domain.ErrNotFound)
	}
	return nil
}
