package config

// ProjectFileConfig represents the weekvote.toml configuration file
type ProjectFileConfig struct {
	Network   NetworkFileConfig  `toml:"network"`
	Contracts Contracts          `toml:"contracts"`
	Rewards   RewardsFileConfig  `toml:"rewards"`
	Proposal  ProposalFileConfig `toml:"proposal"`
	Schedule  ScheduleFileConfig `toml:"schedule"`
}

// NetworkFileConfig represents the [network] section
type NetworkFileConfig struct {
	Name    string `toml:"name,omitempty"`
	RPCURL  string `toml:"rpc_url"`
	ChainID uint64 `toml:"chain_id,omitempty"`
}

// RewardsFileConfig represents the [rewards] section. Amounts are whole tokens
// as decimal strings, e.g. "10" or "0.5".
type RewardsFileConfig struct {
	PerVoter string `toml:"per_voter,omitempty"`
	Author   string `toml:"author,omitempty"`
}

// ProposalFileConfig represents the [proposal] section
type ProposalFileConfig struct {
	Duration string `toml:"duration,omitempty"`
}

// ScheduleFileConfig represents the [schedule] section
type ScheduleFileConfig struct {
	Interval string `toml:"interval,omitempty"`
	Weekday  string `toml:"weekday,omitempty"`
	At       string `toml:"at,omitempty"`
}
