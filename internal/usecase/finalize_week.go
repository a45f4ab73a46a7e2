package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/trebuchet-org/weekvote/internal/domain"
	"github.com/trebuchet-org/weekvote/internal/domain/config"
	"github.com/trebuchet-org/weekvote/internal/domain/models"
)

// FinalizeWeek is the weekly finalization engine. One Run closes expired
// proposals on-chain, settles the week's winner and distributes its rewards.
//
// Runs do not lock against each other. Every mutation is conditioned on the
// stored state (conditional updates, reward claims), so a re-triggered or
// overlapping run converges on the same final state without paying twice.
type FinalizeWeek struct {
	config      *config.RuntimeConfig
	proposals   ProposalStore
	items       ItemStore
	ledger      LedgerClient
	distributor *DistributeRewards
	metrics     EngineMetrics
	sink        ProgressSink
	clock       Clock
	log         *slog.Logger
}

// NewFinalizeWeek creates a new FinalizeWeek use case
func NewFinalizeWeek(
	cfg *config.RuntimeConfig,
	proposals ProposalStore,
	items ItemStore,
	ledger LedgerClient,
	distributor *DistributeRewards,
	metrics EngineMetrics,
	sink ProgressSink,
	clock Clock,
	log *slog.Logger,
) *FinalizeWeek {
	return &FinalizeWeek{
		config:      cfg,
		proposals:   proposals,
		items:       items,
		ledger:      ledger,
		distributor: distributor,
		metrics:     metrics,
		sink:        sink,
		clock:       clock,
		log:         log.With("component", "FinalizationEngine"),
	}
}

// FinalizeOptions contains options for a finalization run
type FinalizeOptions struct {
	// Week overrides the week whose winner is settled. Defaults to the week of now.
	Week string
}

// ProposalOutcome is the result of finalizing one proposal
type ProposalOutcome struct {
	ProposalID uint64
	Status     OutcomeStatus
	TxHash     string
	Err        error
}

// FinalizeReport summarizes one engine run
type FinalizeReport struct {
	RunID     string
	Week      string
	StartedAt time.Time
	Duration  time.Duration

	Proposals []ProposalOutcome

	Winner            *models.Proposal
	WinnerNewlyMarked bool

	Rewards *DistributionReport

	// Interrupted is set when the run's context ended before every stage ran.
	// The remaining work is left for the next run.
	Interrupted error
}

// NeedsRetry reports whether some items could not be settled and a later run
// has work left. This is a retry signal, not a failure of the run.
func (r *FinalizeReport) NeedsRetry() bool {
	if r.Interrupted != nil {
		return true
	}
	for _, p := range r.Proposals {
		if p.Status.NeedsRetry() {
			return true
		}
	}
	return r.Rewards != nil && r.Rewards.NeedsRetry()
}

// Count returns how many proposals ended with status
func (r *FinalizeReport) Count(status OutcomeStatus) int {
	n := 0
	for _, p := range r.Proposals {
		if p.Status == status {
			n++
		}
	}
	return n
}

// Run executes one finalization pass as of now. A non-nil error means the
// store could not be read or written at all; per-item ledger failures are
// reported in the FinalizeReport instead.
func (uc *FinalizeWeek) Run(ctx context.Context, now time.Time, opts FinalizeOptions) (*FinalizeReport, error) {
	report := &FinalizeReport{
		RunID:     uuid.NewString(),
		StartedAt: uc.clock(),
	}
	log := uc.log.With("run_id", report.RunID)

	week := opts.Week
	if week == "" {
		week = domain.WeekOf(now)
	} else if _, err := domain.ParseWeek(week); err != nil {
		return nil, err
	}
	report.Week = week

	if uc.config.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.config.RunTimeout)
		defer cancel()
	}

	defer func() {
		report.Duration = uc.clock().Sub(report.StartedAt)
		uc.metrics.ObserveRun(report.Duration, report.NeedsRetry())
	}()

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "finalizing",
		Message: "Loading expired proposals",
		Spinner: true,
	})

	expiring, err := uc.proposals.FindExpiringActive(ctx, now)
	if err != nil {
		if uc.interrupted(ctx, log, report, "finalizing") {
			return report, nil
		}
		return report, fmt.Errorf("failed to load expired proposals: %w", err)
	}
	log.Info("finalization run started", "week", week, "expired", len(expiring))

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "finalizing",
		Total:   len(expiring),
		Message: fmt.Sprintf("Finalizing %d proposals", len(expiring)),
		Spinner: true,
	})

	report.Proposals = fanOut(ctx, uc.config.Workers, expiring, func(ctx context.Context, p *models.Proposal) ProposalOutcome {
		return uc.finalizeOne(ctx, log, p, now)
	})
	for _, o := range report.Proposals {
		uc.metrics.ProposalOutcome(o.Status)
	}
	if n := report.Count(OutcomeRejected); n > 0 {
		uc.sink.Error(fmt.Sprintf("%d proposal(s) rejected by the ledger, left active for review", n))
	}
	if uc.interrupted(ctx, log, report, "winner") {
		return report, nil
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "winner",
		Message: fmt.Sprintf("Selecting winner of %s", week),
		Spinner: true,
	})

	winner, newlyMarked, err := uc.settleWinner(ctx, log, week)
	if err != nil {
		if uc.interrupted(ctx, log, report, "winner") {
			return report, nil
		}
		return report, err
	}
	report.Winner = winner
	report.WinnerNewlyMarked = newlyMarked
	if newlyMarked {
		uc.sink.Info(fmt.Sprintf("Proposal #%d won %s", winner.ProposalID, week))
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "rewards",
		Message: "Distributing rewards",
		Spinner: true,
	})

	rewards, err := uc.distributor.Distribute(ctx, week)
	if err != nil {
		if uc.interrupted(ctx, log, report, "rewards") {
			return report, nil
		}
		return report, err
	}
	report.Rewards = rewards

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "complete",
		Current: len(report.Proposals),
		Total:   len(report.Proposals),
		Message: "Finalization complete",
	})

	log.Info("finalization run finished",
		"week", week,
		"finalized", report.Count(OutcomeFinalized)+report.Count(OutcomeReconciled),
		"rejected", report.Count(OutcomeRejected),
		"deferred", report.Count(OutcomeDeferred),
		"needs_retry", report.NeedsRetry(),
	)
	return report, nil
}

// interrupted records a run whose context ended and reports whether it did.
// Everything already settled stays settled; the next run picks up the rest.
func (uc *FinalizeWeek) interrupted(ctx context.Context, log *slog.Logger, report *FinalizeReport, stage string) bool {
	err := ctx.Err()
	if err == nil {
		return false
	}
	report.Interrupted = fmt.Errorf("run stopped during %s: %w", stage, err)
	log.Warn("finalization run interrupted, remaining work deferred", "stage", stage, "error", err)
	uc.sink.Error(fmt.Sprintf("Run stopped during %s, the next run resumes", stage))
	return true
}

// finalizeOne moves a single expired proposal to finalized. The on-chain state
// is read first so an earlier unconfirmed finalize is never resubmitted blindly.
func (uc *FinalizeWeek) finalizeOne(ctx context.Context, log *slog.Logger, p *models.Proposal, now time.Time) ProposalOutcome {
	log = log.With("proposal_id", p.ProposalID)
	out := ProposalOutcome{ProposalID: p.ProposalID}

	onchain, err := uc.ledger.GetProposal(ctx, p.ProposalID)
	if err != nil {
		log.Warn("failed to read on-chain proposal, deferring", "error", err)
		out.Status = OutcomeDeferred
		out.Err = err
		return out
	}

	if !onchain.Active {
		if err := uc.proposals.SetInactiveAndFinalized(ctx, p.ProposalID, now); err != nil {
			log.Error("failed to record finalized proposal", "error", err)
			out.Status = OutcomeDeferred
			out.Err = err
			return out
		}
		log.Info("proposal already finalized on-chain, record reconciled")
		out.Status = OutcomeReconciled
		return out
	}

	receipt, err := uc.ledger.FinalizeProposal(ctx, p.ProposalID)
	if err != nil {
		var le *domain.LedgerError
		if errors.As(err, &le) {
			out.TxHash = le.TxHash
		}
		out.Err = err
		if domain.IsRejected(err) {
			log.Error("finalize rejected, proposal left active for manual review", "error", err)
			out.Status = OutcomeRejected
			return out
		}
		log.Warn("finalize not confirmed, deferring to next run", "retriable", domain.IsRetriable(err), "error", err)
		out.Status = OutcomeDeferred
		return out
	}
	out.TxHash = receipt.TxHash

	rctx, cancel := recordCtx(ctx)
	defer cancel()
	if err := uc.proposals.SetInactiveAndFinalized(rctx, p.ProposalID, now); err != nil {
		// Chain is ahead of the record; the next run reconciles from GetProposal.
		log.Error("proposal finalized on-chain but record not updated", "tx", receipt.TxHash, "error", err)
		out.Status = OutcomeDeferred
		out.Err = err
		return out
	}

	log.Info("proposal finalized", "tx", receipt.TxHash)
	out.Status = OutcomeFinalized
	return out
}

// settleWinner returns the week's winner, marking it if no proposal of the
// week has been marked yet. An existing mark always stands.
func (uc *FinalizeWeek) settleWinner(ctx context.Context, log *slog.Logger, week string) (*models.Proposal, bool, error) {
	marked, err := uc.proposals.FindByWeek(ctx, week, domain.ProposalFilter{Winner: domain.Bool(true)})
	if err != nil {
		return nil, false, fmt.Errorf("failed to load winner of %s: %w", week, err)
	}
	if len(marked) > 0 {
		winner := marked[0]
		uc.propagateWinner(ctx, log, winner)
		return winner, false, nil
	}

	candidates, err := uc.proposals.FindByWeek(ctx, week, domain.ProposalFilter{Active: domain.Bool(false)})
	if err != nil {
		return nil, false, fmt.Errorf("failed to load settled proposals of %s: %w", week, err)
	}

	winner := SelectWinner(candidates)
	if winner == nil {
		log.Info("no winner this week", "week", week, "candidates", len(candidates))
		return nil, false, nil
	}

	if err := uc.proposals.SetWinner(ctx, winner.ProposalID); err != nil {
		if !errors.Is(err, domain.ErrWinnerAlreadySet) {
			return nil, false, fmt.Errorf("failed to mark winner %d: %w", winner.ProposalID, err)
		}
		// Another run marked first; its choice stands.
		marked, err := uc.proposals.FindByWeek(ctx, week, domain.ProposalFilter{Winner: domain.Bool(true)})
		if err != nil || len(marked) == 0 {
			return nil, false, fmt.Errorf("failed to reload winner of %s: %w", week, errors.Join(err, domain.ErrNotFound))
		}
		uc.propagateWinner(ctx, log, marked[0])
		return marked[0], false, nil
	}
	winner.IsWinner = true

	log.Info("weekly winner selected", "week", week, "proposal_id", winner.ProposalID, "votes", winner.VoteCount)
	uc.metrics.WinnerSelected(week)
	uc.propagateWinner(ctx, log, winner)
	return winner, true, nil
}

// propagateWinner flags the winning item. It runs on every pass so a failed
// propagation heals on the next run.
func (uc *FinalizeWeek) propagateWinner(ctx context.Context, log *slog.Logger, winner *models.Proposal) {
	if err := uc.items.MarkWeeklyWinner(ctx, winner.TokenID); err != nil {
		log.Warn("failed to flag winning item", "token_id", winner.TokenID, "error", err)
	}
}
