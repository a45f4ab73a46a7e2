package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/trebuchet-org/weekvote/internal/domain"
	"golang.org/x/sync/errgroup"
)

// OutcomeStatus is the result of one fan-out unit (a proposal or a payout)
type OutcomeStatus string

const (
	// OutcomeFinalized means the proposal was closed on-chain by this run
	OutcomeFinalized OutcomeStatus = "finalized"
	// OutcomeReconciled means the ledger already reflected the change and only
	// the off-chain record was updated
	OutcomeReconciled OutcomeStatus = "reconciled"
	// OutcomeRejected means the ledger reverted; the item needs manual review
	OutcomeRejected OutcomeStatus = "rejected"
	// OutcomeDeferred means the outcome is unknown or transient; the next run retries
	OutcomeDeferred OutcomeStatus = "deferred"
	// OutcomePaid means a reward transfer was confirmed in this run
	OutcomePaid OutcomeStatus = "paid"
	// OutcomeSkipped means nothing had to be done (already paid or owned by another run)
	OutcomeSkipped OutcomeStatus = "skipped"
	// OutcomeFailed means a reward transfer failed and was recorded for retry
	OutcomeFailed OutcomeStatus = "failed"
)

// NeedsRetry reports whether a later run has work left for this unit
func (s OutcomeStatus) NeedsRetry() bool {
	return s == OutcomeDeferred || s == OutcomeFailed
}

// recordTimeout bounds a store write that records what the ledger just did
const recordTimeout = 15 * time.Second

// recordCtx returns the context for persisting a ledger result. It is not
// cancelled with ctx: once a transaction may be on-chain its marker has to be
// written even if the run's deadline passed meanwhile.
func recordCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
}

// fanOut runs fn over items on at most limit goroutines and returns results in
// input order. fn reports per-item failures in its result, so one item never
// cancels the others.
func fanOut[T, R any](ctx context.Context, limit int, items []T, fn func(context.Context, T) R) []R {
	results := make([]R, len(items))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, item := range items {
		g.Go(func() error {
			results[i] = fn(ctx, item)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// retryOnConflict re-runs op immediately while it fails with
// domain.ErrStorageConflict, up to attempts tries in total.
func retryOnConflict(ctx context.Context, attempts int, op func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(&backoff.ZeroBackOff{}, uint64(attempts-1)),
		ctx,
	)
	return backoff.Retry(func() error {
		err := op()
		if err != nil && !errors.Is(err, domain.ErrStorageConflict) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}
