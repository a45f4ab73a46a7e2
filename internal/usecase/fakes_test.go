package usecase_test

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/trebuchet-org/weekvote/internal/domain"
	"github.com/trebuchet-org/weekvote/internal/domain/models"
	"github.com/trebuchet-org/weekvote/internal/usecase"
)

// memStore is an in-memory implementation of every store port
type memStore struct {
	mu        sync.Mutex
	proposals map[uint64]*models.Proposal
	votes     map[uint64][]*models.Vote
	rewards   map[models.RewardKey]*models.Reward
	items     map[uint64]*models.Item

	// conflicts makes the next n RunInTx calls fail with ErrStorageConflict
	conflicts int
	// failSetInactive makes SetInactiveAndFinalized fail
	failSetInactive error
}

func newMemStore() *memStore {
	return &memStore{
		proposals: map[uint64]*models.Proposal{},
		votes:     map[uint64][]*models.Vote{},
		rewards:   map[models.RewardKey]*models.Reward{},
		items:     map[uint64]*models.Item{},
	}
}

func (s *memStore) addProposal(p *models.Proposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.proposals[p.ProposalID] = &cp
}

func (s *memStore) addItem(item *models.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *item
	s.items[item.TokenID] = &cp
}

func (s *memStore) addVotes(proposalID uint64, voters ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.proposals[proposalID]
	for _, v := range voters {
		s.votes[proposalID] = append(s.votes[proposalID], &models.Vote{
			ProposalID: proposalID,
			Voter:      v,
			TokenID:    p.TokenID,
			Week:       p.Week,
		})
		p.VoteCount++
	}
}

func (s *memStore) proposal(id uint64) models.Proposal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.proposals[id]
}

func (s *memStore) item(tokenID uint64) models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.items[tokenID]
}

func (s *memStore) voteCount(proposalID uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.votes[proposalID])
}

func (s *memStore) reward(key models.RewardKey) *models.Reward {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rewards[key]
	if !ok {
		return nil
	}
	cp := *r
	return &cp
}

func (s *memStore) CreateProposal(ctx context.Context, p *models.Proposal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.proposals[p.ProposalID]; ok {
		return fmt.Errorf("proposal %d exists", p.ProposalID)
	}
	cp := *p
	s.proposals[p.ProposalID] = &cp
	return nil
}

func (s *memStore) GetByProposalID(ctx context.Context, id uint64) (*models.Proposal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) sorted(keep func(*models.Proposal) bool) []*models.Proposal {
	var out []*models.Proposal
	for _, p := range s.proposals {
		if keep(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProposalID < out[j].ProposalID })
	return out
}

func (s *memStore) FindExpiringActive(ctx context.Context, now time.Time) ([]*models.Proposal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(p *models.Proposal) bool { return p.Active && p.Expired(now) }), nil
}

func (s *memStore) FindByWeek(ctx context.Context, week string, filter domain.ProposalFilter) ([]*models.Proposal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(p *models.Proposal) bool {
		if filter.Active != nil && *filter.Active != p.Active {
			return false
		}
		if filter.Winner != nil && *filter.Winner != p.IsWinner {
			return false
		}
		return p.Week == week
	}), nil
}

func (s *memStore) ListActive(ctx context.Context, now time.Time) ([]*models.Proposal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.sorted(func(p *models.Proposal) bool { return p.Active && !p.Expired(now) })
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) IncrementVoteCount(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[id]
	if !ok || !p.Active {
		return domain.ErrProposalInactive
	}
	p.VoteCount++
	return nil
}

func (s *memStore) SetInactiveAndFinalized(ctx context.Context, id uint64, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSetInactive != nil {
		return s.failSetInactive
	}
	p, ok := s.proposals[id]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Active {
		p.Active = false
		p.FinalizedAt = &at
	}
	return nil
}

func (s *memStore) SetWinner(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[id]
	if !ok {
		return domain.ErrNotFound
	}
	for _, other := range s.proposals {
		if other.Week == p.Week && other.IsWinner && other.ProposalID != id {
			return domain.ErrWinnerAlreadySet
		}
	}
	p.IsWinner = true
	return nil
}

func (s *memStore) InsertIfAbsent(ctx context.Context, vote *models.Vote) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.votes[vote.ProposalID] {
		if v.Voter == vote.Voter {
			return domain.DuplicateVoteError{ProposalID: vote.ProposalID, Voter: vote.Voter}
		}
	}
	cp := *vote
	s.votes[vote.ProposalID] = append(s.votes[vote.ProposalID], &cp)
	return nil
}

func (s *memStore) ListByProposal(ctx context.Context, id uint64) ([]*models.Vote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Vote, 0, len(s.votes[id]))
	for _, v := range s.votes[id] {
		cp := *v
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memStore) GetReward(ctx context.Context, key models.RewardKey) (*models.Reward, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r := s.reward(key); r != nil {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

func (s *memStore) ClaimReward(ctx context.Context, reward *models.Reward) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.rewards[reward.RewardKey]
	if ok && existing.Status != models.RewardStatusFailed {
		return domain.ErrAlreadyClaimed
	}
	cp := *reward
	cp.Status = models.RewardStatusPending
	cp.TxHash = ""
	if ok {
		cp.Attempts = existing.Attempts
	}
	cp.Attempts++
	s.rewards[reward.RewardKey] = &cp
	return nil
}

func (s *memStore) update(key models.RewardKey, fn func(*models.Reward)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rewards[key]
	if !ok {
		return domain.ErrNotFound
	}
	fn(r)
	return nil
}

func (s *memStore) SetRewardTxHash(ctx context.Context, key models.RewardKey, txHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.update(key, func(r *models.Reward) { r.TxHash = txHash })
}

func (s *memStore) MarkRewardPaid(ctx context.Context, key models.RewardKey, txHash string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.update(key, func(r *models.Reward) {
		r.Status = models.RewardStatusPaid
		r.TxHash = txHash
		r.PaidAt = &at
	})
}

func (s *memStore) MarkRewardFailed(ctx context.Context, key models.RewardKey, reason string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.update(key, func(r *models.Reward) {
		r.Status = models.RewardStatusFailed
		r.LastError = reason
	})
}

func (s *memStore) ListRewards(ctx context.Context, week string) ([]*models.Reward, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Reward
	for _, r := range s.rewards {
		if r.Week == week {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memStore) GetItem(ctx context.Context, tokenID uint64) (*models.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[tokenID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (s *memStore) SaveItem(ctx context.Context, item *models.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.addItem(item)
	return nil
}

func (s *memStore) MarkWeeklyWinner(ctx context.Context, tokenID uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[tokenID]
	if !ok {
		return domain.ErrNotFound
	}
	item.IsWeeklyWinner = true
	return nil
}

func (s *memStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.conflicts > 0 {
		s.conflicts--
		s.mu.Unlock()
		return domain.ErrStorageConflict
	}
	s.mu.Unlock()
	return fn(ctx)
}

// fakeLedger records transfers and serves on-chain proposal state
type fakeLedger struct {
	mu sync.Mutex

	onchain   map[uint64]*models.OnchainProposal
	transfers []transfer
	txStatus  map[string]models.TxStatus
	nextID    uint64
	seq       int

	// transferErr decides the error of a transfer to a recipient, nil for success
	transferErr func(to string) error
	// finalizeErr decides the error of finalizing a proposal, nil for success
	finalizeErr func(id uint64) error
	// stalls makes an operation ("finalize", "transfer") hang until the
	// caller's context ends, then fail with the given kind. An unconfirmed
	// transfer has landed on-chain; a transient one never left.
	stalls map[string]domain.LedgerErrorKind
}

type transfer struct {
	To     string
	Amount *big.Int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		onchain:  map[uint64]*models.OnchainProposal{},
		txStatus: map[string]models.TxStatus{},
		nextID:   1,
	}
}

func (l *fakeLedger) hash() string {
	l.seq++
	return fmt.Sprintf("0x%064x", l.seq)
}

func (l *fakeLedger) stall(op string, kind domain.LedgerErrorKind) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stalls == nil {
		l.stalls = map[string]domain.LedgerErrorKind{}
	}
	l.stalls[op] = kind
}

func (l *fakeLedger) unstall() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stalls = nil
}

func (l *fakeLedger) stalled(op string) (domain.LedgerErrorKind, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kind, ok := l.stalls[op]
	return kind, ok
}

func (l *fakeLedger) transfersTo(to string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, t := range l.transfers {
		if strings.EqualFold(t.To, to) {
			n++
		}
	}
	return n
}

func (l *fakeLedger) transferCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.transfers)
}

func (l *fakeLedger) CreateProposal(_ context.Context, tokenID uint64, duration time.Duration) (*models.ProposalCreation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	l.onchain[id] = &models.OnchainProposal{ProposalID: id, TokenID: tokenID, Active: true}
	return &models.ProposalCreation{ProposalID: id, TokenID: tokenID, TxHash: l.hash()}, nil
}

func (l *fakeLedger) FinalizeProposal(ctx context.Context, id uint64) (*models.TxReceipt, error) {
	if kind, ok := l.stalled("finalize"); ok {
		<-ctx.Done()
		return nil, &domain.LedgerError{Kind: kind, Op: "finalizeProposal", Err: ctx.Err()}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.finalizeErr != nil {
		if err := l.finalizeErr(id); err != nil {
			return nil, err
		}
	}
	if p, ok := l.onchain[id]; ok {
		p.Active = false
	}
	return &models.TxReceipt{TxHash: l.hash()}, nil
}

func (l *fakeLedger) Transfer(ctx context.Context, to string, amount *big.Int) (*models.TxReceipt, error) {
	if kind, ok := l.stalled("transfer"); ok {
		<-ctx.Done()
		l.mu.Lock()
		defer l.mu.Unlock()
		le := &domain.LedgerError{Kind: kind, Op: "transfer", Err: ctx.Err()}
		if kind == domain.LedgerUnconfirmed {
			l.transfers = append(l.transfers, transfer{To: to, Amount: amount})
			le.TxHash = l.hash()
			l.txStatus[le.TxHash] = models.TxStatusSucceeded
		}
		return nil, le
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.transferErr != nil {
		if err := l.transferErr(to); err != nil {
			return nil, err
		}
	}
	l.transfers = append(l.transfers, transfer{To: to, Amount: amount})
	return &models.TxReceipt{TxHash: l.hash()}, nil
}

func (l *fakeLedger) GetProposal(_ context.Context, id uint64) (*models.OnchainProposal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.onchain[id]
	if !ok {
		return &models.OnchainProposal{ProposalID: id, Active: true}, nil
	}
	cp := *p
	return &cp, nil
}

func (l *fakeLedger) TransactionStatus(_ context.Context, txHash string) (models.TxStatus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s, ok := l.txStatus[txHash]; ok {
		return s, nil
	}
	return models.TxStatusDropped, nil
}

// MockLedgerClient is a mock implementation of LedgerClient
type MockLedgerClient struct {
	mock.Mock
}

func (m *MockLedgerClient) CreateProposal(ctx context.Context, tokenID uint64, duration time.Duration) (*models.ProposalCreation, error) {
	args := m.Called(ctx, tokenID, duration)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProposalCreation), args.Error(1)
}

func (m *MockLedgerClient) FinalizeProposal(ctx context.Context, proposalID uint64) (*models.TxReceipt, error) {
	args := m.Called(ctx, proposalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TxReceipt), args.Error(1)
}

func (m *MockLedgerClient) Transfer(ctx context.Context, to string, amount *big.Int) (*models.TxReceipt, error) {
	args := m.Called(ctx, to, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TxReceipt), args.Error(1)
}

func (m *MockLedgerClient) GetProposal(ctx context.Context, proposalID uint64) (*models.OnchainProposal, error) {
	args := m.Called(ctx, proposalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OnchainProposal), args.Error(1)
}

func (m *MockLedgerClient) TransactionStatus(ctx context.Context, txHash string) (models.TxStatus, error) {
	args := m.Called(ctx, txHash)
	return args.Get(0).(models.TxStatus), args.Error(1)
}

// recordingMetrics counts what the engine reports
type recordingMetrics struct {
	mu       sync.Mutex
	runs     int
	retry    bool
	winners  []string
	outcomes map[usecase.OutcomeStatus]int
}

func (m *recordingMetrics) ObserveRun(_ time.Duration, needsRetry bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs++
	m.retry = needsRetry
}

func (m *recordingMetrics) ProposalOutcome(status usecase.OutcomeStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcomes == nil {
		m.outcomes = map[usecase.OutcomeStatus]int{}
	}
	m.outcomes[status]++
}

func (m *recordingMetrics) RewardOutcome(models.RewardKind, usecase.OutcomeStatus) {}

func (m *recordingMetrics) WinnerSelected(week string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.winners = append(m.winners, week)
}

// MockProgressSink is a mock implementation of ProgressSink
type MockProgressSink struct {
	mu     sync.Mutex
	events []usecase.ProgressEvent
	infos  []string
	errors []string
}

func (m *MockProgressSink) OnProgress(_ context.Context, event usecase.ProgressEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *MockProgressSink) Info(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, message)
}

func (m *MockProgressSink) Error(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, message)
}
