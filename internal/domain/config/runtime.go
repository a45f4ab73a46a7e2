package config

import (
	"math/big"
	"time"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	DataDir    string
	ConfigFile string // weekvote.toml path, empty if none was found

	// Ledger settings
	Network   *Network
	Contracts Contracts
	// PrivateKey is the hex key of the settlement wallet. Only read from env.
	PrivateKey string

	// Voting and reward settings
	Rewards          Rewards
	ProposalDuration time.Duration

	// Execution settings
	Debug          bool
	Output         string // table, json or yaml
	LedgerTimeout  time.Duration
	RunTimeout     time.Duration
	Workers        int
	RetryAttempts  int
	Schedule       Schedule
	MetricsAddr    string
}

// Network represents network configuration
type Network struct {
	ChainID uint64 `json:"chainId"`
	Name    string `json:"name"`
	RPCURL  string `json:"rpcUrl"`
}

// Contracts holds the deployed contract addresses the ledger adapter talks to
type Contracts struct {
	Voting string `toml:"voting"`
	Token  string `toml:"token"`
}

// Rewards holds payout amounts in token base units
type Rewards struct {
	PerVoter *big.Int
	Author   *big.Int
}

// Schedule controls the recurring finalization trigger. Interval wins when set,
// otherwise the trigger fires weekly on Weekday at At (UTC, "15:04").
type Schedule struct {
	Interval time.Duration
	Weekday  time.Weekday
	At       string
}
