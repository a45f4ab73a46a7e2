package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/trebuchet-org/weekvote/internal/domain"
	"github.com/trebuchet-org/weekvote/internal/domain/config"
	"github.com/trebuchet-org/weekvote/internal/domain/models"
)

// DistributeRewards pays every voter of a week's winner plus the winning author
type DistributeRewards struct {
	config    *config.RuntimeConfig
	proposals ProposalStore
	votes     VoteStore
	items     ItemStore
	rewards   RewardStore
	ledger    LedgerClient
	metrics   EngineMetrics
	clock     Clock
	log       *slog.Logger
}

// NewDistributeRewards creates a new DistributeRewards use case
func NewDistributeRewards(
	cfg *config.RuntimeConfig,
	proposals ProposalStore,
	votes VoteStore,
	items ItemStore,
	rewards RewardStore,
	ledger LedgerClient,
	metrics EngineMetrics,
	clock Clock,
	log *slog.Logger,
) *DistributeRewards {
	return &DistributeRewards{
		config:    cfg,
		proposals: proposals,
		votes:     votes,
		items:     items,
		rewards:   rewards,
		ledger:    ledger,
		metrics:   metrics,
		clock:     clock,
		log:       log.With("component", "RewardDistributor"),
	}
}

// RewardOutcome is the result of one payout attempt
type RewardOutcome struct {
	Key    models.RewardKey
	Amount *big.Int
	Status OutcomeStatus
	TxHash string
	Err    error
}

// DistributionReport summarizes a distribution pass for one week
type DistributionReport struct {
	Week     string
	Winner   *models.Proposal
	Outcomes []RewardOutcome
}

// Count returns how many payouts ended with status
func (r *DistributionReport) Count(status OutcomeStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// NeedsRetry reports whether any payout is left for a later invocation
func (r *DistributionReport) NeedsRetry() bool {
	for _, o := range r.Outcomes {
		if o.Status.NeedsRetry() {
			return true
		}
	}
	return false
}

type payout struct {
	key        models.RewardKey
	proposalID uint64
	amount     *big.Int
}

// Distribute pays the rewards of week. It is a no-op when the week has no
// winner and safe to call repeatedly: recipients already paid are skipped.
func (uc *DistributeRewards) Distribute(ctx context.Context, week string) (*DistributionReport, error) {
	report := &DistributionReport{Week: week}

	winners, err := uc.proposals.FindByWeek(ctx, week, domain.ProposalFilter{Winner: domain.Bool(true)})
	if err != nil {
		return nil, fmt.Errorf("failed to load winner of %s: %w", week, err)
	}
	if len(winners) == 0 {
		uc.log.Info("no winner to reward", "week", week)
		return report, nil
	}
	winner := winners[0]
	report.Winner = winner

	votes, err := uc.votes.ListByProposal(ctx, winner.ProposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load votes of proposal %d: %w", winner.ProposalID, err)
	}

	payouts := make([]payout, 0, len(votes)+1)
	for _, vote := range votes {
		payouts = append(payouts, payout{
			key:        models.RewardKey{Week: week, Recipient: vote.Voter, Kind: models.RewardKindVoter},
			proposalID: winner.ProposalID,
			amount:     uc.config.Rewards.PerVoter,
		})
	}

	item, err := uc.items.GetItem(ctx, winner.TokenID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		uc.log.Warn("winning item not found, author reward skipped", "week", week, "token_id", winner.TokenID)
	case err != nil:
		uc.log.Error("failed to load winning item", "week", week, "token_id", winner.TokenID, "error", err)
		report.Outcomes = append(report.Outcomes, RewardOutcome{
			Key:    models.RewardKey{Week: week, Kind: models.RewardKindAuthor},
			Amount: uc.config.Rewards.Author,
			Status: OutcomeDeferred,
			Err:    err,
		})
	default:
		payouts = append(payouts, payout{
			key:        models.RewardKey{Week: week, Recipient: item.Author, Kind: models.RewardKindAuthor},
			proposalID: winner.ProposalID,
			amount:     uc.config.Rewards.Author,
		})
	}

	uc.log.Info("distributing rewards", "week", week, "proposal_id", winner.ProposalID, "payouts", len(payouts))

	outcomes := fanOut(ctx, uc.config.Workers, payouts, uc.pay)
	for _, o := range outcomes {
		uc.metrics.RewardOutcome(o.Key.Kind, o.Status)
	}
	report.Outcomes = append(report.Outcomes, outcomes...)
	return report, nil
}

// pay settles a single payout. Every exit path leaves the reward marker in a
// state the next invocation can resume from.
func (uc *DistributeRewards) pay(ctx context.Context, p payout) RewardOutcome {
	log := uc.log.With("week", p.key.Week, "recipient", p.key.Recipient, "kind", p.key.Kind)
	out := RewardOutcome{Key: p.key, Amount: p.amount}

	existing, err := uc.rewards.GetReward(ctx, p.key)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		log.Error("failed to read reward marker", "error", err)
		return deferred(out, err)
	case existing.Status == models.RewardStatusPaid:
		out.Status = OutcomeSkipped
		out.TxHash = existing.TxHash
		return out
	case existing.Status == models.RewardStatusPending:
		if existing.TxHash == "" {
			log.Warn("reward claimed without a broadcast transaction, leaving for review")
			return deferred(out, fmt.Errorf("reward pending without transaction: %w", domain.ErrAlreadyClaimed))
		}
		out.TxHash = existing.TxHash
		settled, err := uc.reconcile(ctx, log, existing)
		if err != nil || settled {
			if err != nil {
				return deferred(out, err)
			}
			out.Status = OutcomeReconciled
			return out
		}
	}

	now := uc.clock()
	claim := &models.Reward{
		RewardKey:  p.key,
		ProposalID: p.proposalID,
		Amount:     p.amount,
		Status:     models.RewardStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.rewards.ClaimReward(ctx, claim); err != nil {
		if errors.Is(err, domain.ErrAlreadyClaimed) {
			log.Debug("reward claimed by another run")
			out.Status = OutcomeSkipped
			return out
		}
		log.Error("failed to claim reward", "error", err)
		return deferred(out, err)
	}

	receipt, err := uc.ledger.Transfer(ctx, p.key.Recipient, p.amount)

	rctx, cancel := recordCtx(ctx)
	defer cancel()

	if err != nil {
		if domain.IsUnconfirmed(err) {
			var le *domain.LedgerError
			if errors.As(err, &le) && le.TxHash != "" {
				out.TxHash = le.TxHash
				if serr := uc.rewards.SetRewardTxHash(rctx, p.key, le.TxHash); serr != nil {
					log.Error("failed to record pending transfer", "tx", le.TxHash, "error", serr)
				}
			}
			log.Warn("reward transfer unconfirmed, will reconcile", "tx", out.TxHash, "error", err)
			return deferred(out, err)
		}
		log.Error("reward transfer failed", "retriable", domain.IsRetriable(err), "error", err)
		if serr := uc.rewards.MarkRewardFailed(rctx, p.key, err.Error()); serr != nil {
			log.Error("failed to record failed transfer", "error", serr)
		}
		out.Status = OutcomeFailed
		out.Err = err
		return out
	}

	out.TxHash = receipt.TxHash
	out.Status = OutcomePaid
	if err := uc.rewards.MarkRewardPaid(rctx, p.key, receipt.TxHash, uc.clock()); err != nil {
		// The transfer landed; keep the hash so the next run reconciles instead of paying twice.
		log.Error("reward paid but marker not updated", "tx", receipt.TxHash, "error", err)
		if serr := uc.rewards.SetRewardTxHash(rctx, p.key, receipt.TxHash); serr != nil {
			log.Error("failed to record transfer hash", "tx", receipt.TxHash, "error", serr)
		}
		out.Err = err
		return out
	}
	log.Info("reward paid", "tx", receipt.TxHash)
	return out
}

// reconcile resolves a pending payout whose transfer was broadcast earlier.
// It returns true when the payout turned out to be paid.
func (uc *DistributeRewards) reconcile(ctx context.Context, log *slog.Logger, reward *models.Reward) (bool, error) {
	status, err := uc.ledger.TransactionStatus(ctx, reward.TxHash)
	if err != nil {
		log.Warn("failed to check pending transfer", "tx", reward.TxHash, "error", err)
		return false, err
	}

	rctx, cancel := recordCtx(ctx)
	defer cancel()

	switch status {
	case models.TxStatusSucceeded:
		if err := uc.rewards.MarkRewardPaid(rctx, reward.RewardKey, reward.TxHash, uc.clock()); err != nil {
			return false, err
		}
		log.Info("pending transfer confirmed", "tx", reward.TxHash)
		return true, nil
	case models.TxStatusPending:
		return false, fmt.Errorf("transfer %s still pending", reward.TxHash)
	default:
		log.Warn("pending transfer did not land, retrying", "tx", reward.TxHash, "status", status)
		if err := uc.rewards.MarkRewardFailed(rctx, reward.RewardKey, fmt.Sprintf("transaction %s", status)); err != nil {
			return false, err
		}
		return false, nil
	}
}

func deferred(out RewardOutcome, err error) RewardOutcome {
	out.Status = OutcomeDeferred
	out.Err = err
	return out
}
