package usecase_test

import (
	"io"
	"log/slog"
	"math/big"
	"time"

	"github.com/trebuchet-org/weekvote/internal/domain/config"
	"github.com/trebuchet-org/weekvote/internal/domain/models"
	"github.com/trebuchet-org/weekvote/internal/usecase"
)

const (
	testWeek = "2025-W07"
	voterA   = "0x1111111111111111111111111111111111111111"
	voterB   = "0x2222222222222222222222222222222222222222"
	author   = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
)

// Sunday of 2025-W07, one minute before the week rolls over
var testNow = time.Date(2025, time.February, 16, 23, 59, 0, 0, time.UTC)

func testConfig() *config.RuntimeConfig {
	return &config.RuntimeConfig{
		Rewards: config.Rewards{
			PerVoter: big.NewInt(10),
			Author:   big.NewInt(50),
		},
		ProposalDuration: 7 * 24 * time.Hour,
		Workers:          4,
		RetryAttempts:    3,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock() usecase.Clock {
	return func() time.Time { return testNow }
}

// expired returns an active proposal of the test week whose window closed an hour ago
func expired(id, tokenID, votes uint64) *models.Proposal {
	return &models.Proposal{
		ProposalID: id,
		TokenID:    tokenID,
		Week:       testWeek,
		VoteCount:  votes,
		Active:     true,
		EndTime:    testNow.Add(-time.Hour),
		CreatedAt:  testNow.Add(-7 * 24 * time.Hour),
	}
}

type engine struct {
	store       *memStore
	ledger      *fakeLedger
	metrics     *recordingMetrics
	sink        *MockProgressSink
	distributor *usecase.DistributeRewards
	finalize    *usecase.FinalizeWeek
}

func newEngine(ledger usecase.LedgerClient) *engine {
	return newEngineWithConfig(ledger, testConfig())
}

func newEngineWithConfig(ledger usecase.LedgerClient, cfg *config.RuntimeConfig) *engine {
	store := newMemStore()
	metrics := &recordingMetrics{}
	distributor := usecase.NewDistributeRewards(cfg, store, store, store, store, ledger, metrics, fixedClock(), testLogger())
	sink := &MockProgressSink{}
	e := &engine{
		store:       store,
		metrics:     metrics,
		sink:        sink,
		distributor: distributor,
		finalize:    usecase.NewFinalizeWeek(cfg, store, store, ledger, distributor, metrics, sink, fixedClock(), testLogger()),
	}
	if fl, ok := ledger.(*fakeLedger); ok {
		e.ledger = fl
	}
	return e
}

func outcomeOf(report *usecase.FinalizeReport, id uint64) usecase.ProposalOutcome {
	for _, o := range report.Proposals {
		if o.ProposalID == id {
			return o
		}
	}
	return usecase.ProposalOutcome{}
}

func rewardOutcome(report *usecase.DistributionReport, recipient string, kind models.RewardKind) usecase.RewardOutcome {
	for _, o := range report.Outcomes {
		if o.Key.Recipient == recipient && o.Key.Kind == kind {
			return o
		}
	}
	return usecase.RewardOutcome{}
}
