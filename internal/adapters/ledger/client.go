package ledger

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/trebuchet-org/weekvote/internal/adapters/abi/bindings"
	"github.com/trebuchet-org/weekvote/internal/domain"
	"github.com/trebuchet-org/weekvote/internal/domain/config"
	"github.com/trebuchet-org/weekvote/internal/domain/models"
	"github.com/trebuchet-org/weekvote/internal/usecase"
)

// Backend is the slice of the JSON-RPC API the client needs. *ethclient.Client
// satisfies it.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Client implements usecase.LedgerClient against the voting and token
// contracts. It connects on first use so commands that never touch the chain
// do not need a reachable RPC endpoint.
type Client struct {
	cfg *config.RuntimeConfig
	log *slog.Logger

	voting *bindings.WeeklyVoting
	token  *bindings.ERC20

	dial func(ctx context.Context) (Backend, error)

	mu      sync.Mutex
	backend Backend
	chainID *big.Int

	// sendMu serializes nonce assignment and broadcast
	sendMu    sync.Mutex
	nextNonce *uint64
	key       *ecdsa.PrivateKey
	from      common.Address

	pollInterval time.Duration
}

var _ usecase.LedgerClient = (*Client)(nil)

// NewClient creates a ledger client for cfg.Network
func NewClient(cfg *config.RuntimeConfig, log *slog.Logger) (*Client, error) {
	c := &Client{
		cfg:          cfg,
		log:          log.With("component", "ledger"),
		voting:       bindings.NewWeeklyVoting(),
		token:        bindings.NewERC20(),
		pollInterval: time.Second,
	}
	c.dial = func(ctx context.Context) (Backend, error) {
		if cfg.Network == nil || cfg.Network.RPCURL == "" {
			return nil, fmt.Errorf("no RPC URL configured")
		}
		client, err := ethclient.DialContext(ctx, cfg.Network.RPCURL)
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	if cfg.PrivateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid settlement private key: %w", err)
		}
		c.key = key
		c.from = crypto.PubkeyToAddress(key.PublicKey)
	}
	return c, nil
}

// connect dials once and verifies the chain id
func (c *Client) connect(ctx context.Context) (Backend, *big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.backend != nil {
		return c.backend, c.chainID, nil
	}

	backend, err := c.dial(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	if c.cfg.Network != nil && c.cfg.Network.ChainID != 0 && chainID.Uint64() != c.cfg.Network.ChainID {
		return nil, nil, fmt.Errorf("chain ID mismatch: expected %d, got %d", c.cfg.Network.ChainID, chainID.Uint64())
	}

	c.backend = backend
	c.chainID = chainID
	return backend, chainID, nil
}

func (c *Client) votingAddress() (common.Address, error) {
	if !common.IsHexAddress(c.cfg.Contracts.Voting) {
		return common.Address{}, fmt.Errorf("voting contract address not configured")
	}
	return common.HexToAddress(c.cfg.Contracts.Voting), nil
}

func (c *Client) tokenAddress() (common.Address, error) {
	if !common.IsHexAddress(c.cfg.Contracts.Token) {
		return common.Address{}, fmt.Errorf("token contract address not configured")
	}
	return common.HexToAddress(c.cfg.Contracts.Token), nil
}

// CreateProposal opens a voting round for tokenID and returns the id the
// contract assigned, read from the ProposalCreated event.
func (c *Client) CreateProposal(ctx context.Context, tokenID uint64, duration time.Duration) (*models.ProposalCreation, error) {
	const op = "createProposal"
	to, err := c.votingAddress()
	if err != nil {
		return nil, transient(op, err)
	}
	data, err := c.voting.TryPackCreateProposal(new(big.Int).SetUint64(tokenID), big.NewInt(int64(duration/time.Second)))
	if err != nil {
		return nil, transient(op, err)
	}

	receipt, err := c.submit(ctx, op, to, data)
	if err != nil {
		return nil, err
	}

	for _, l := range receipt.Logs {
		if l.Address != to {
			continue
		}
		event, err := c.voting.UnpackProposalCreatedEvent(l)
		if err != nil {
			continue
		}
		return &models.ProposalCreation{
			ProposalID: event.ProposalId.Uint64(),
			TokenID:    event.TokenId.Uint64(),
			TxHash:     receipt.TxHash.Hex(),
		}, nil
	}
	return nil, fmt.Errorf("transaction %s emitted no ProposalCreated event", receipt.TxHash.Hex())
}

// FinalizeProposal closes a proposal on the voting contract
func (c *Client) FinalizeProposal(ctx context.Context, proposalID uint64) (*models.TxReceipt, error) {
	const op = "finalizeProposal"
	to, err := c.votingAddress()
	if err != nil {
		return nil, transient(op, err)
	}
	data, err := c.voting.TryPackFinalizeProposal(new(big.Int).SetUint64(proposalID))
	if err != nil {
		return nil, transient(op, err)
	}
	receipt, err := c.submit(ctx, op, to, data)
	if err != nil {
		return nil, err
	}
	return toReceipt(receipt), nil
}

// Transfer sends amount base units of the reward token to recipient
func (c *Client) Transfer(ctx context.Context, recipient string, amount *big.Int) (*models.TxReceipt, error) {
	const op = "transfer"
	if !common.IsHexAddress(recipient) {
		return nil, domain.ValidationError{Field: "recipient", Reason: fmt.Sprintf("%q is not an address", recipient)}
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, domain.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	to, err := c.tokenAddress()
	if err != nil {
		return nil, transient(op, err)
	}
	data, err := c.token.TryPackTransfer(common.HexToAddress(recipient), amount)
	if err != nil {
		return nil, transient(op, err)
	}
	receipt, err := c.submit(ctx, op, to, data)
	if err != nil {
		return nil, err
	}
	return toReceipt(receipt), nil
}

// GetProposal reads the voting contract's view of a proposal
func (c *Client) GetProposal(ctx context.Context, proposalID uint64) (*models.OnchainProposal, error) {
	const op = "getProposal"
	to, err := c.votingAddress()
	if err != nil {
		return nil, transient(op, err)
	}
	backend, _, err := c.connect(ctx)
	if err != nil {
		return nil, transient(op, err)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	out, err := backend.CallContract(ctx, ethereum.CallMsg{
		To:   &to,
		Data: c.voting.PackGetProposal(new(big.Int).SetUint64(proposalID)),
	}, nil)
	if err != nil {
		return nil, transient(op, err)
	}
	p, err := c.voting.UnpackGetProposal(out)
	if err != nil {
		return nil, transient(op, fmt.Errorf("failed to decode proposal %d: %w", proposalID, err))
	}

	onchain := &models.OnchainProposal{
		ProposalID: proposalID,
		Active:     p.Active,
	}
	if p.TokenId != nil {
		onchain.TokenID = p.TokenId.Uint64()
	}
	if p.Votes != nil {
		onchain.Votes = p.Votes.Uint64()
	}
	if p.EndTime != nil {
		onchain.EndTime = time.Unix(p.EndTime.Int64(), 0).UTC()
	}
	return onchain, nil
}

// TransactionStatus reports what the node knows about a broadcast transaction
func (c *Client) TransactionStatus(ctx context.Context, txHash string) (models.TxStatus, error) {
	const op = "transactionStatus"
	backend, _, err := c.connect(ctx)
	if err != nil {
		return "", transient(op, err)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	hash := common.HexToHash(txHash)
	receipt, err := backend.TransactionReceipt(ctx, hash)
	switch {
	case err == nil:
		if receipt.Status == types.ReceiptStatusSuccessful {
			return models.TxStatusSucceeded, nil
		}
		return models.TxStatusFailed, nil
	case !errors.Is(err, ethereum.NotFound):
		return "", transient(op, err)
	}

	_, _, err = backend.TransactionByHash(ctx, hash)
	switch {
	case err == nil:
		return models.TxStatusPending, nil
	case errors.Is(err, ethereum.NotFound):
		return models.TxStatusDropped, nil
	default:
		return "", transient(op, err)
	}
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.LedgerTimeout > 0 {
		return context.WithTimeout(ctx, c.cfg.LedgerTimeout)
	}
	return context.WithCancel(ctx)
}

func toReceipt(r *types.Receipt) *models.TxReceipt {
	out := &models.TxReceipt{
		TxHash:  r.TxHash.Hex(),
		GasUsed: r.GasUsed,
	}
	if r.BlockNumber != nil {
		out.BlockNumber = r.BlockNumber.Uint64()
	}
	return out
}
