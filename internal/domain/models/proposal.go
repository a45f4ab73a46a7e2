package models

import "time"

// Proposal is a time-bounded voting round attached to one item, identified by
// the id the voting contract assigned when it was created.
type Proposal struct {
	// Identification
	ProposalID uint64 `json:"proposalId"`
	TokenID    uint64 `json:"tokenId"`
	Week       string `json:"week"` // e.g. "2025-W07", stamped at creation

	// Voting state
	VoteCount uint64    `json:"voteCount"`
	Active    bool      `json:"active"`
	EndTime   time.Time `json:"endTime"`
	IsWinner  bool      `json:"isWinner"`

	// Ledger references
	SettlementTxHash string `json:"settlementTxHash"`

	// Metadata
	CreatedAt   time.Time  `json:"createdAt"`
	FinalizedAt *time.Time `json:"finalizedAt,omitempty"`
}

// Expired reports whether the voting window closed at or before now.
func (p *Proposal) Expired(now time.Time) bool {
	return !p.EndTime.After(now)
}

// ProposalCreation is what the ledger returns when a proposal is opened on-chain.
type ProposalCreation struct {
	ProposalID uint64
	TokenID    uint64
	TxHash     string
}

// OnchainProposal mirrors the voting contract's view of a proposal.
type OnchainProposal struct {
	ProposalID uint64
	TokenID    uint64
	Votes      uint64
	Active     bool
	EndTime    time.Time
}
