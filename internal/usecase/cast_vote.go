package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/weekvote/internal/domain"
	"github.com/trebuchet-org/weekvote/internal/domain/config"
	"github.com/trebuchet-org/weekvote/internal/domain/models"
)

var txHashPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// CastVoteParams contains parameters for registering a vote. The voter has
// already sent the vote transaction from their own wallet.
type CastVoteParams struct {
	ProposalID uint64
	Voter      string
	TxHash     string
}

// CastVoteResult contains the stored vote
type CastVoteResult struct {
	Vote *models.Vote `json:"vote"`
}

// CastVote records a voter's vote and bumps the proposal's counter
type CastVote struct {
	config    *config.RuntimeConfig
	proposals ProposalStore
	votes     VoteStore
	tx        Transactor
	clock     Clock
	log       *slog.Logger
}

// NewCastVote creates a new CastVote use case
func NewCastVote(
	cfg *config.RuntimeConfig,
	proposals ProposalStore,
	votes VoteStore,
	tx Transactor,
	clock Clock,
	log *slog.Logger,
) *CastVote {
	return &CastVote{
		config:    cfg,
		proposals: proposals,
		votes:     votes,
		tx:        tx,
		clock:     clock,
		log:       log.With("component", "CastVote"),
	}
}

// Run validates and stores the vote. The insert and the counter increment
// commit together, so a proposal's count always equals its stored votes.
func (uc *CastVote) Run(ctx context.Context, params CastVoteParams) (*CastVoteResult, error) {
	if !common.IsHexAddress(params.Voter) {
		return nil, domain.ValidationError{Field: "voter", Reason: fmt.Sprintf("%q is not an address", params.Voter)}
	}
	if !txHashPattern.MatchString(params.TxHash) {
		return nil, domain.ValidationError{Field: "txHash", Reason: fmt.Sprintf("%q is not a transaction hash", params.TxHash)}
	}
	voter := strings.ToLower(params.Voter)

	var vote *models.Vote
	err := retryOnConflict(ctx, uc.config.RetryAttempts, func() error {
		return uc.tx.RunInTx(ctx, func(ctx context.Context) error {
			proposal, err := uc.proposals.GetByProposalID(ctx, params.ProposalID)
			if err != nil {
				return fmt.Errorf("proposal %d: %w", params.ProposalID, err)
			}
			// Closed windows wait for finalization but take no more votes.
			if !proposal.Active || proposal.Expired(uc.clock()) {
				return fmt.Errorf("proposal %d: %w", params.ProposalID, domain.ErrProposalInactive)
			}

			vote = &models.Vote{
				ProposalID: proposal.ProposalID,
				Voter:      voter,
				TokenID:    proposal.TokenID,
				TxHash:     params.TxHash,
				Week:       proposal.Week,
				CreatedAt:  uc.clock(),
			}
			if err := uc.votes.InsertIfAbsent(ctx, vote); err != nil {
				return err
			}
			if err := uc.proposals.IncrementVoteCount(ctx, proposal.ProposalID); err != nil {
				return fmt.Errorf("proposal %d: %w", params.ProposalID, err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info("vote registered", "proposal_id", vote.ProposalID, "voter", vote.Voter)
	return &CastVoteResult{Vote: vote}, nil
}
