package usecase

import (
	"context"
	"math/big"
	"time"

	"github.com/trebuchet-org/weekvote/internal/domain"
	"github.com/trebuchet-org/weekvote/internal/domain/models"
)

// ProposalStore handles persistence of proposals
type ProposalStore interface {
	CreateProposal(ctx context.Context, proposal *models.Proposal) error
	GetByProposalID(ctx context.Context, proposalID uint64) (*models.Proposal, error)
	// FindExpiringActive returns active proposals whose end time is at or before now
	FindExpiringActive(ctx context.Context, now time.Time) ([]*models.Proposal, error)
	FindByWeek(ctx context.Context, week string, filter domain.ProposalFilter) ([]*models.Proposal, error)
	// ListActive returns proposals still open for votes at now, newest first
	ListActive(ctx context.Context, now time.Time) ([]*models.Proposal, error)
	// IncrementVoteCount atomically adds one vote to an active proposal.
	// Returns domain.ErrProposalInactive when the proposal is closed.
	IncrementVoteCount(ctx context.Context, proposalID uint64) error
	SetInactiveAndFinalized(ctx context.Context, proposalID uint64, at time.Time) error
	// SetWinner marks the week's winner. Returns domain.ErrWinnerAlreadySet
	// when a different proposal of the same week already won.
	SetWinner(ctx context.Context, proposalID uint64) error
}

// VoteStore handles persistence of votes
type VoteStore interface {
	// InsertIfAbsent stores the vote or fails with domain.DuplicateVoteError
	InsertIfAbsent(ctx context.Context, vote *models.Vote) error
	ListByProposal(ctx context.Context, proposalID uint64) ([]*models.Vote, error)
}

// RewardStore persists the per-recipient payout markers
type RewardStore interface {
	GetReward(ctx context.Context, key models.RewardKey) (*models.Reward, error)
	// ClaimReward atomically moves a payout to pending if it is absent or failed.
	// Returns domain.ErrAlreadyClaimed if any other state is present.
	ClaimReward(ctx context.Context, reward *models.Reward) error
	SetRewardTxHash(ctx context.Context, key models.RewardKey, txHash string) error
	MarkRewardPaid(ctx context.Context, key models.RewardKey, txHash string, at time.Time) error
	MarkRewardFailed(ctx context.Context, key models.RewardKey, reason string) error
	ListRewards(ctx context.Context, week string) ([]*models.Reward, error)
}

// ItemStore reads the items proposals refer to
type ItemStore interface {
	GetItem(ctx context.Context, tokenID uint64) (*models.Item, error)
	SaveItem(ctx context.Context, item *models.Item) error
	MarkWeeklyWinner(ctx context.Context, tokenID uint64) error
}

// Transactor runs fn in a single store transaction. Store calls made with the
// context passed to fn join that transaction.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// LedgerClient submits and inspects transactions on the voting and token contracts.
// Submitting calls block until a receipt is mined or fail with *domain.LedgerError.
type LedgerClient interface {
	CreateProposal(ctx context.Context, tokenID uint64, duration time.Duration) (*models.ProposalCreation, error)
	FinalizeProposal(ctx context.Context, proposalID uint64) (*models.TxReceipt, error)
	Transfer(ctx context.Context, to string, amount *big.Int) (*models.TxReceipt, error)
	GetProposal(ctx context.Context, proposalID uint64) (*models.OnchainProposal, error)
	TransactionStatus(ctx context.Context, txHash string) (models.TxStatus, error)
}

// EngineMetrics receives counters from finalization runs
type EngineMetrics interface {
	ObserveRun(duration time.Duration, needsRetry bool)
	ProposalOutcome(status OutcomeStatus)
	RewardOutcome(kind models.RewardKind, status OutcomeStatus)
	WinnerSelected(week string)
}

// NopMetrics is a no-op implementation of EngineMetrics
type NopMetrics struct{}

func (NopMetrics) ObserveRun(time.Duration, bool)                {}
func (NopMetrics) ProposalOutcome(OutcomeStatus)                 {}
func (NopMetrics) RewardOutcome(models.RewardKind, OutcomeStatus) {}
func (NopMetrics) WinnerSelected(string)                         {}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}

// Clock returns the current time. Use cases take it so tests can pin "now".
type Clock func() time.Time
