package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/trebuchet-org/weekvote/internal/domain"
	"github.com/trebuchet-org/weekvote/internal/domain/models"
	"github.com/trebuchet-org/weekvote/internal/usecase"
	"gorm.io/gorm"
)

var _ usecase.ProposalStore = (*Store)(nil)

// CreateProposal inserts a new proposal record
func (s *Store) CreateProposal(ctx context.Context, proposal *models.Proposal) error {
	if err := s.conn(ctx).Create(newProposalRow(proposal)).Error; err != nil {
		return fmt.Errorf("failed to insert proposal %d: %w", proposal.ProposalID, classify(err))
	}
	return nil
}

// GetByProposalID returns one proposal or domain.ErrNotFound
func (s *Store) GetByProposalID(ctx context.Context, proposalID uint64) (*models.Proposal, error) {
	var row proposalRow
	if err := s.conn(ctx).First(&row, "proposal_id = ?", proposalID).Error; err != nil {
		return nil, notFound(err)
	}
	return row.model(), nil
}

// FindExpiringActive returns active proposals whose window closed at or before now
func (s *Store) FindExpiringActive(ctx context.Context, now time.Time) ([]*models.Proposal, error) {
	return s.findProposals(s.conn(ctx).
		Where("active = ? AND end_time <= ?", true, now.UTC()).
		Order("proposal_id"))
}

// FindByWeek returns the proposals of week matching filter, by ascending id
func (s *Store) FindByWeek(ctx context.Context, week string, filter domain.ProposalFilter) ([]*models.Proposal, error) {
	query := s.conn(ctx).Where("week = ?", week)
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	if filter.Winner != nil {
		query = query.Where("is_winner = ?", *filter.Winner)
	}
	return s.findProposals(query.Order("proposal_id"))
}

// ListActive returns proposals still open for votes at now, newest first
func (s *Store) ListActive(ctx context.Context, now time.Time) ([]*models.Proposal, error) {
	return s.findProposals(s.conn(ctx).
		Where("active = ? AND end_time > ?", true, now.UTC()).
		Order("created_at DESC, proposal_id DESC"))
}

func (s *Store) findProposals(query *gorm.DB) ([]*models.Proposal, error) {
	var rows []proposalRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, classify(err)
	}
	out := make([]*models.Proposal, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].model())
	}
	return out, nil
}

// IncrementVoteCount adds one vote to an active proposal in a single statement
func (s *Store) IncrementVoteCount(ctx context.Context, proposalID uint64) error {
	result := s.conn(ctx).Model(&proposalRow{}).
		Where("proposal_id = ? AND active = ?", proposalID, true).
		UpdateColumn("vote_count", gorm.Expr("vote_count + ?", 1))
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrProposalInactive
	}
	return nil
}

// SetInactiveAndFinalized closes a proposal. Closing an already closed
// proposal is a no-op that keeps the first finalization time.
func (s *Store) SetInactiveAndFinalized(ctx context.Context, proposalID uint64, at time.Time) error {
	result := s.conn(ctx).Model(&proposalRow{}).
		Where("proposal_id = ? AND active = ?", proposalID, true).
		Updates(map[string]any{
			"active":       false,
			"finalized_at": at.UTC(),
		})
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := s.GetByProposalID(ctx, proposalID); err != nil {
			return err
		}
	}
	return nil
}

// SetWinner marks proposalID as its week's winner unless another proposal of
// that week already is.
func (s *Store) SetWinner(ctx context.Context, proposalID uint64) error {
	result := s.conn(ctx).Exec(`
		UPDATE proposals SET is_winner = ?
		WHERE proposal_id = ?
		  AND NOT EXISTS (
		    SELECT 1 FROM proposals other
		    WHERE other.week = proposals.week
		      AND other.is_winner = ?
		      AND other.proposal_id <> proposals.proposal_id
		  )`, true, proposalID, true)
	if result.Error != nil {
		err := classify(result.Error)
		if isUniqueViolation(err) {
			return domain.ErrWinnerAlreadySet
		}
		return err
	}
	if result.RowsAffected > 0 {
		return nil
	}

	p, err := s.GetByProposalID(ctx, proposalID)
	if err != nil {
		return err
	}
	if p.IsWinner {
		return nil
	}
	return domain.ErrWinnerAlreadySet
}

func isUniqueViolation(err error) bool {
	if err == nil || errors.Is(err, domain.ErrStorageConflict) {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
