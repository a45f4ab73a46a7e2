package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/trebuchet-org/weekvote/internal/domain"
)

// gasHeadroom is the percentage added on top of the gas estimate
const gasHeadroom = 20

// submit signs, broadcasts and waits for a contract call. The transaction is
// signed before it is sent, so every error after signing carries its hash.
func (c *Client) submit(ctx context.Context, op string, to common.Address, data []byte) (*types.Receipt, error) {
	if c.key == nil {
		return nil, transient(op, errors.New("no settlement private key configured"))
	}
	backend, chainID, err := c.connect(ctx)
	if err != nil {
		return nil, transient(op, err)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	tx, err := c.signAndSend(ctx, backend, chainID, op, to, data)
	if err != nil {
		return nil, err
	}
	hash := tx.Hash()
	c.log.Debug("transaction broadcast", "op", op, "tx", hash.Hex(), "nonce", tx.Nonce())

	receipt, err := c.waitMined(ctx, backend, hash)
	if err != nil {
		return nil, &domain.LedgerError{Kind: domain.LedgerUnconfirmed, Op: op, TxHash: hash.Hex(), Err: err}
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, &domain.LedgerError{Kind: domain.LedgerRejected, Op: op, TxHash: hash.Hex(), Err: errors.New("transaction reverted")}
	}
	return receipt, nil
}

func (c *Client) signAndSend(ctx context.Context, backend Backend, chainID *big.Int, op string, to common.Address, data []byte) (*types.Transaction, error) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	gas, err := backend.EstimateGas(ctx, ethereum.CallMsg{From: c.from, To: &to, Data: data})
	if err != nil {
		if isRevert(err) {
			return nil, &domain.LedgerError{Kind: domain.LedgerRejected, Op: op, Err: err}
		}
		return nil, transient(op, fmt.Errorf("failed to estimate gas: %w", err))
	}
	gas += gas * gasHeadroom / 100

	nonce, err := c.nonce(ctx, backend)
	if err != nil {
		return nil, transient(op, fmt.Errorf("failed to get nonce: %w", err))
	}

	unsigned, err := c.buildTx(ctx, backend, chainID, nonce, gas, to, data)
	if err != nil {
		return nil, transient(op, err)
	}
	signed, err := types.SignTx(unsigned, types.LatestSignerForChainID(chainID), c.key)
	if err != nil {
		return nil, transient(op, fmt.Errorf("failed to sign transaction: %w", err))
	}

	if err := backend.SendTransaction(ctx, signed); err != nil {
		switch {
		case isAlreadyKnown(err):
			// The node has it; treat as broadcast.
		case isNodeRejection(err):
			c.nextNonce = nil
			return nil, transient(op, fmt.Errorf("node rejected transaction: %w", err))
		default:
			// Outcome unknown: the node may have accepted it before the error.
			c.nextNonce = nil
			return nil, &domain.LedgerError{Kind: domain.LedgerUnconfirmed, Op: op, TxHash: signed.Hash().Hex(), Err: err}
		}
	}

	next := nonce + 1
	c.nextNonce = &next
	return signed, nil
}

// nonce returns the next nonce, never going backwards while transactions of
// this process are still pending
func (c *Client) nonce(ctx context.Context, backend Backend) (uint64, error) {
	pending, err := backend.PendingNonceAt(ctx, c.from)
	if err != nil {
		return 0, err
	}
	if c.nextNonce != nil && *c.nextNonce > pending {
		return *c.nextNonce, nil
	}
	return pending, nil
}

func (c *Client) buildTx(ctx context.Context, backend Backend, chainID *big.Int, nonce, gas uint64, to common.Address, data []byte) (*types.Transaction, error) {
	head, err := backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest header: %w", err)
	}

	if head.BaseFee == nil {
		gasPrice, err := backend.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to suggest gas price: %w", err)
		}
		return types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			GasPrice: gasPrice,
			Gas:      gas,
			To:       &to,
			Data:     data,
		}), nil
	}

	tip, err := backend.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest gas tip: %w", err)
	}
	feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Data:      data,
	}), nil
}

// waitMined polls for the receipt until ctx expires
func (c *Client) waitMined(ctx context.Context, backend Backend, hash common.Hash) (*types.Receipt, error) {
	var receipt *types.Receipt
	poll := func() error {
		r, err := backend.TransactionReceipt(ctx, hash)
		if err != nil {
			if !errors.Is(err, ethereum.NotFound) {
				c.log.Debug("receipt lookup failed", "tx", hash.Hex(), "error", err)
			}
			return err
		}
		receipt = r
		return nil
	}
	policy := backoff.WithContext(backoff.NewConstantBackOff(c.pollInterval), ctx)
	if err := backoff.Retry(poll, policy); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("no receipt before deadline: %w", ctxErr)
		}
		return nil, err
	}
	return receipt, nil
}

func transient(op string, err error) error {
	return &domain.LedgerError{Kind: domain.LedgerTransient, Op: op, Err: err}
}

func isRevert(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "execution reverted") || strings.Contains(msg, "revert")
}

func isAlreadyKnown(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already known") || strings.Contains(msg, "known transaction")
}

// isNodeRejection reports errors the node returns after validating and
// refusing a transaction, so nothing entered the mempool
func isNodeRejection(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, s := range []string{
		"nonce too low",
		"nonce too high",
		"insufficient funds",
		"replacement transaction underpriced",
		"intrinsic gas too low",
		"exceeds block gas limit",
		"max fee per gas less than block base fee",
		"transaction underpriced",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
