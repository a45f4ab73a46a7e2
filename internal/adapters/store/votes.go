package store

import (
	"context"
	"fmt"

	"github.com/trebuchet-org/weekvote/internal/domain"
	"github.com/trebuchet-org/weekvote/internal/domain/models"
	"github.com/trebuchet-org/weekvote/internal/usecase"
	"gorm.io/gorm/clause"
)

var _ usecase.VoteStore = (*Store)(nil)

// InsertIfAbsent stores the vote unless the voter already voted on the proposal
func (s *Store) InsertIfAbsent(ctx context.Context, vote *models.Vote) error {
	row := &voteRow{
		ProposalID: vote.ProposalID,
		Voter:      vote.Voter,
		TokenID:    vote.TokenID,
		TxHash:     vote.TxHash,
		Week:       vote.Week,
		CreatedAt:  vote.CreatedAt.UTC(),
	}
	result := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "proposal_id"}, {Name: "voter"}},
		DoNothing: true,
	}).Create(row)
	if result.Error != nil {
		return fmt.Errorf("failed to insert vote: %w", classify(result.Error))
	}
	if result.RowsAffected == 0 {
		return domain.DuplicateVoteError{ProposalID: vote.ProposalID, Voter: vote.Voter}
	}
	return nil
}

// ListByProposal returns the votes of a proposal in insertion order
func (s *Store) ListByProposal(ctx context.Context, proposalID uint64) ([]*models.Vote, error) {
	var rows []voteRow
	if err := s.conn(ctx).Where("proposal_id = ?", proposalID).Order("id").Find(&rows).Error; err != nil {
		return nil, classify(err)
	}
	out := make([]*models.Vote, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].model())
	}
	return out, nil
}
