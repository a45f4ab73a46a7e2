package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrProposalInactive is returned when a vote targets a closed proposal
	ErrProposalInactive = errors.New("proposal is not active")

	// ErrWinnerAlreadySet is returned when another proposal already won the week
	ErrWinnerAlreadySet = errors.New("week already has a winner")

	// ErrAlreadyClaimed is returned when a payout is owned by another run or already paid
	ErrAlreadyClaimed = errors.New("reward already claimed")

	// ErrStorageConflict is returned when a concurrent writer won a race on the store
	ErrStorageConflict = errors.New("storage conflict")
)

// ValidationError reports malformed input. It is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DuplicateVoteError is returned when a voter already voted on a proposal
type DuplicateVoteError struct {
	ProposalID uint64
	Voter      string
}

func (e DuplicateVoteError) Error() string {
	return fmt.Sprintf("voter %s already voted on proposal %d", e.Voter, e.ProposalID)
}

// LedgerErrorKind classifies how a ledger call failed
type LedgerErrorKind string

const (
	// LedgerRejected means the transaction reverted. Not retriable.
	LedgerRejected LedgerErrorKind = "rejected"
	// LedgerTransient means nothing reached the chain (network, timeout before broadcast).
	LedgerTransient LedgerErrorKind = "transient"
	// LedgerUnconfirmed means a transaction may have been broadcast but no
	// receipt arrived. State must be re-checked before any retry.
	LedgerUnconfirmed LedgerErrorKind = "unconfirmed"
)

// LedgerError wraps a failed ledger call
type LedgerError struct {
	Kind   LedgerErrorKind
	Op     string
	TxHash string // set when a signed transaction exists
	Err    error
}

func (e *LedgerError) Error() string {
	if e.TxHash != "" {
		return fmt.Sprintf("ledger %s %s (tx %s): %v", e.Op, e.Kind, e.TxHash, e.Err)
	}
	return fmt.Sprintf("ledger %s %s: %v", e.Op, e.Kind, e.Err)
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

// LedgerErrorKindOf returns the kind of a ledger error in err's chain, or "" if there is none
func LedgerErrorKindOf(err error) LedgerErrorKind {
	var le *LedgerError
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}

// IsRejected reports whether err is a reverted ledger transaction
func IsRejected(err error) bool {
	return LedgerErrorKindOf(err) == LedgerRejected
}

// IsUnconfirmed reports whether err left a ledger transaction in an unknown state
func IsUnconfirmed(err error) bool {
	return LedgerErrorKindOf(err) == LedgerUnconfirmed
}

// IsRetriable reports whether err may succeed on a later scheduled run
func IsRetriable(err error) bool {
	return LedgerErrorKindOf(err) == LedgerTransient || errors.Is(err, ErrStorageConflict)
}
