package models

import "time"

// Vote is a single voter's one-time endorsement of a proposal. The pair
// (ProposalID, Voter) is unique; votes are never mutated after insert.
type Vote struct {
	ProposalID uint64    `json:"proposalId"`
	Voter      string    `json:"voter"` // lower-cased hex address
	TokenID    uint64    `json:"tokenId"`
	TxHash     string    `json:"txHash"`
	Week       string    `json:"week"`
	CreatedAt  time.Time `json:"createdAt"`
}
