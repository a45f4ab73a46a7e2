package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/weekvote/internal/domain"
	"github.com/trebuchet-org/weekvote/internal/domain/models"
	"github.com/trebuchet-org/weekvote/internal/usecase"
)

func TestCreateProposal(t *testing.T) {
	ctx := context.Background()

	t.Run("records the on-chain proposal", func(t *testing.T) {
		store := newMemStore()
		store.addItem(&models.Item{TokenID: 7, Title: "Shakshuka", Author: author})
		ledger := &MockLedgerClient{}
		ledger.On("CreateProposal", mock.Anything, uint64(7), 7*24*time.Hour).
			Return(&models.ProposalCreation{ProposalID: 12, TokenID: 7, TxHash: voteTx}, nil)
		sink := &MockProgressSink{}

		uc := usecase.NewCreateProposal(testConfig(), store, store, ledger, sink, fixedClock(), testLogger())
		result, err := uc.Run(ctx, 7)
		require.NoError(t, err)

		p := store.proposal(12)
		assert.Equal(t, uint64(7), p.TokenID)
		assert.Equal(t, testWeek, p.Week)
		assert.True(t, p.Active)
		assert.Equal(t, testNow.Add(7*24*time.Hour), p.EndTime)
		assert.Equal(t, voteTx, p.SettlementTxHash)
		assert.Equal(t, "Shakshuka", result.Item.Title)
		assert.NotEmpty(t, sink.events)
		ledger.AssertExpectations(t)
	})

	t.Run("unknown item never reaches the ledger", func(t *testing.T) {
		ledger := &MockLedgerClient{}
		uc := usecase.NewCreateProposal(testConfig(), newMemStore(), newMemStore(), ledger, usecase.NopProgress{}, fixedClock(), testLogger())

		_, err := uc.Run(ctx, 7)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		ledger.AssertNotCalled(t, "CreateProposal", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ledger failure", func(t *testing.T) {
		store := newMemStore()
		store.addItem(&models.Item{TokenID: 7})
		ledger := &MockLedgerClient{}
		ledger.On("CreateProposal", mock.Anything, uint64(7), mock.Anything).
			Return(nil, &domain.LedgerError{Kind: domain.LedgerRejected, Op: "createProposal", Err: errors.New("reverted")})

		uc := usecase.NewCreateProposal(testConfig(), store, store, ledger, usecase.NopProgress{}, fixedClock(), testLogger())
		_, err := uc.Run(ctx, 7)
		assert.True(t, domain.IsRejected(err))
	})
}

func TestReadSurface(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addItem(&models.Item{TokenID: 7, Title: "Shakshuka", Author: author})

	older := expired(1, 7, 0)
	older.EndTime = testNow.Add(time.Hour)
	older.CreatedAt = testNow.Add(-2 * time.Hour)
	newer := expired(2, 8, 0)
	newer.EndTime = testNow.Add(time.Hour)
	newer.CreatedAt = testNow.Add(-time.Hour)
	store.addProposal(older)
	store.addProposal(newer)
	store.addProposal(expired(3, 7, 0))
	store.addVotes(1, voterA, voterB)

	t.Run("lists open proposals newest first", func(t *testing.T) {
		result, err := usecase.NewListActiveProposals(store, store, fixedClock()).Run(ctx)
		require.NoError(t, err)

		require.Len(t, result.Proposals, 2)
		assert.Equal(t, uint64(2), result.Proposals[0].Proposal.ProposalID)
		assert.Nil(t, result.Proposals[0].Item)
		assert.Equal(t, "Shakshuka", result.Proposals[1].Item.Title)
	})

	t.Run("shows a proposal with its voters", func(t *testing.T) {
		detail, err := usecase.NewShowProposal(store, store, store).Run(ctx, 1)
		require.NoError(t, err)

		assert.Equal(t, uint64(2), detail.Proposal.VoteCount)
		assert.Equal(t, []string{voterA, voterB}, detail.Voters)
		assert.Equal(t, author, detail.Item.Author)
	})

	t.Run("unknown proposal", func(t *testing.T) {
		_, err := usecase.NewShowProposal(store, store, store).Run(ctx, 99)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("week without a winner", func(t *testing.T) {
		result, err := usecase.NewShowWeeklyWinner(store, store, fixedClock()).Run(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, testWeek, result.Week)
		assert.False(t, result.Found)
	})

	t.Run("settled winner", func(t *testing.T) {
		require.NoError(t, store.SetWinner(ctx, 3))

		result, err := usecase.NewShowWeeklyWinner(store, store, fixedClock()).Run(ctx, testWeek)
		require.NoError(t, err)
		assert.True(t, result.Found)
		assert.Equal(t, uint64(3), result.Proposal.ProposalID)
		assert.Equal(t, "Shakshuka", result.Item.Title)
	})
}
