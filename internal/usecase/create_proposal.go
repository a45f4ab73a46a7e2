package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/trebuchet-org/weekvote/internal/domain"
	"github.com/trebuchet-org/weekvote/internal/domain/config"
	"github.com/trebuchet-org/weekvote/internal/domain/models"
)

// CreateProposal opens a voting round for an item on-chain and records it
type CreateProposal struct {
	config    *config.RuntimeConfig
	proposals ProposalStore
	items     ItemStore
	ledger    LedgerClient
	sink      ProgressSink
	clock     Clock
	log       *slog.Logger
}

// NewCreateProposal creates a new CreateProposal use case
func NewCreateProposal(
	cfg *config.RuntimeConfig,
	proposals ProposalStore,
	items ItemStore,
	ledger LedgerClient,
	sink ProgressSink,
	clock Clock,
	log *slog.Logger,
) *CreateProposal {
	return &CreateProposal{
		config:    cfg,
		proposals: proposals,
		items:     items,
		ledger:    ledger,
		sink:      sink,
		clock:     clock,
		log:       log.With("component", "CreateProposal"),
	}
}

// CreateProposalResult contains the recorded proposal and its item
type CreateProposalResult struct {
	Proposal *models.Proposal `json:"proposal"`
	Item     *models.Item     `json:"item"`
}

// Run creates the proposal for tokenID. The week is stamped from the time the
// proposal is recorded, the end time from the configured voting duration.
func (uc *CreateProposal) Run(ctx context.Context, tokenID uint64) (*CreateProposalResult, error) {
	item, err := uc.items.GetItem(ctx, tokenID)
	if err != nil {
		return nil, fmt.Errorf("item %d: %w", tokenID, err)
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "submitting",
		Message: fmt.Sprintf("Creating proposal for item %d", tokenID),
		Spinner: true,
	})

	created, err := uc.ledger.CreateProposal(ctx, tokenID, uc.config.ProposalDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create proposal on-chain: %w", err)
	}

	now := uc.clock()
	proposal := &models.Proposal{
		ProposalID:       created.ProposalID,
		TokenID:          tokenID,
		Week:             domain.WeekOf(now),
		Active:           true,
		EndTime:          now.Add(uc.config.ProposalDuration),
		SettlementTxHash: created.TxHash,
		CreatedAt:        now,
	}

	err = retryOnConflict(ctx, uc.config.RetryAttempts, func() error {
		return uc.proposals.CreateProposal(ctx, proposal)
	})
	if err != nil {
		return nil, fmt.Errorf("proposal %d created on-chain (tx %s) but not recorded: %w", created.ProposalID, created.TxHash, err)
	}

	uc.sink.OnProgress(ctx, ProgressEvent{Stage: "complete", Message: "Proposal created"})
	uc.log.Info("proposal created", "proposal_id", proposal.ProposalID, "token_id", tokenID, "week", proposal.Week)

	return &CreateProposalResult{Proposal: proposal, Item: item}, nil
}
