package models

import (
	"math/big"
	"time"
)

// RewardKind distinguishes the two payouts of a week
type RewardKind string

const (
	RewardKindVoter  RewardKind = "voter"
	RewardKindAuthor RewardKind = "author"
)

// RewardStatus is the persisted state of one payout
type RewardStatus string

const (
	// RewardStatusPending means a run claimed the payout. A non-empty TxHash
	// means a transfer was broadcast and its outcome is not yet known.
	RewardStatusPending RewardStatus = "pending"
	RewardStatusPaid    RewardStatus = "paid"
	RewardStatusFailed  RewardStatus = "failed"
)

// RewardKey identifies a payout. A recipient gets at most one payout per kind per week.
type RewardKey struct {
	Week      string     `json:"week"`
	Recipient string     `json:"recipient"`
	Kind      RewardKind `json:"kind"`
}

// Reward is the "already rewarded" marker for a recipient in a week
type Reward struct {
	RewardKey

	ProposalID uint64       `json:"proposalId"`
	Amount     *big.Int     `json:"amount"`
	Status     RewardStatus `json:"status"`
	TxHash     string       `json:"txHash,omitempty"`
	Attempts   int          `json:"attempts"`
	LastError  string       `json:"lastError,omitempty"`

	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	PaidAt    *time.Time `json:"paidAt,omitempty"`
}

// TxReceipt is the confirmed outcome of a submitted ledger transaction
type TxReceipt struct {
	TxHash      string `json:"txHash"`
	BlockNumber uint64 `json:"blockNumber"`
	GasUsed     uint64 `json:"gasUsed"`
}

// TxStatus is the ledger's current view of a previously broadcast transaction
type TxStatus string

const (
	TxStatusSucceeded TxStatus = "succeeded"
	TxStatusFailed    TxStatus = "failed"
	TxStatusPending   TxStatus = "pending"
	TxStatusDropped   TxStatus = "dropped"
)
