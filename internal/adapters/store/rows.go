package store

import (
	"math/big"
	"time"

	"github.com/trebuchet-org/weekvote/internal/domain/models"
)

type proposalRow struct {
	ProposalID       uint64    `gorm:"primaryKey;autoIncrement:false"`
	TokenID          uint64    `gorm:"not null;index"`
	Week             string    `gorm:"not null;index"`
	VoteCount        uint64    `gorm:"not null"`
	Active           bool      `gorm:"not null;index"`
	EndTime          time.Time `gorm:"not null;index"`
	IsWinner         bool      `gorm:"not null"`
	SettlementTxHash string
	CreatedAt        time.Time
	FinalizedAt      *time.Time
}

func (proposalRow) TableName() string { return "proposals" }

func newProposalRow(p *models.Proposal) *proposalRow {
	return &proposalRow{
		ProposalID:       p.ProposalID,
		TokenID:          p.TokenID,
		Week:             p.Week,
		VoteCount:        p.VoteCount,
		Active:           p.Active,
		EndTime:          p.EndTime.UTC(),
		IsWinner:         p.IsWinner,
		SettlementTxHash: p.SettlementTxHash,
		CreatedAt:        p.CreatedAt.UTC(),
		FinalizedAt:      utcPtr(p.FinalizedAt),
	}
}

func (r *proposalRow) model() *models.Proposal {
	return &models.Proposal{
		ProposalID:       r.ProposalID,
		TokenID:          r.TokenID,
		Week:             r.Week,
		VoteCount:        r.VoteCount,
		Active:           r.Active,
		EndTime:          r.EndTime.UTC(),
		IsWinner:         r.IsWinner,
		SettlementTxHash: r.SettlementTxHash,
		CreatedAt:        r.CreatedAt.UTC(),
		FinalizedAt:      utcPtr(r.FinalizedAt),
	}
}

type voteRow struct {
	ID         uint64    `gorm:"primaryKey"`
	ProposalID uint64    `gorm:"not null;uniqueIndex:idx_votes_proposal_voter"`
	Voter      string    `gorm:"not null;uniqueIndex:idx_votes_proposal_voter"`
	TokenID    uint64    `gorm:"not null"`
	TxHash     string    `gorm:"not null"`
	Week       string    `gorm:"not null;index"`
	CreatedAt  time.Time
}

func (voteRow) TableName() string { return "votes" }

func (r *voteRow) model() *models.Vote {
	return &models.Vote{
		ProposalID: r.ProposalID,
		Voter:      r.Voter,
		TokenID:    r.TokenID,
		TxHash:     r.TxHash,
		Week:       r.Week,
		CreatedAt:  r.CreatedAt.UTC(),
	}
}

type rewardRow struct {
	Week       string `gorm:"primaryKey"`
	Recipient  string `gorm:"primaryKey"`
	Kind       string `gorm:"primaryKey"`
	ProposalID uint64 `gorm:"not null"`
	// Amount is the base-unit amount as a decimal string
	Amount    string `gorm:"not null"`
	Status    string `gorm:"not null;index"`
	TxHash    string
	Attempts  int `gorm:"not null"`
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
	PaidAt    *time.Time
}

func (rewardRow) TableName() string { return "rewards" }

func (r *rewardRow) model() *models.Reward {
	amount, ok := new(big.Int).SetString(r.Amount, 10)
	if !ok {
		amount = new(big.Int)
	}
	return &models.Reward{
		RewardKey: models.RewardKey{
			Week:      r.Week,
			Recipient: r.Recipient,
			Kind:      models.RewardKind(r.Kind),
		},
		ProposalID: r.ProposalID,
		Amount:     amount,
		Status:     models.RewardStatus(r.Status),
		TxHash:     r.TxHash,
		Attempts:   r.Attempts,
		LastError:  r.LastError,
		CreatedAt:  r.CreatedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
		PaidAt:     utcPtr(r.PaidAt),
	}
}

type itemRow struct {
	TokenID        uint64 `gorm:"primaryKey;autoIncrement:false"`
	Title          string
	Author         string `gorm:"not null"`
	MetadataURI    string
	IsWeeklyWinner bool `gorm:"not null"`
	CreatedAt      time.Time
}

func (itemRow) TableName() string { return "items" }

func (r *itemRow) model() *models.Item {
	return &models.Item{
		TokenID:        r.TokenID,
		Title:          r.Title,
		Author:         r.Author,
		MetadataURI:    r.MetadataURI,
		IsWeeklyWinner: r.IsWeeklyWinner,
		CreatedAt:      r.CreatedAt.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
