package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/weekvote/internal/domain/config"
)

// Provider creates RuntimeConfig for Wire dependency injection.
// Precedence is flags, then WEEKVOTE_* env, then weekvote.toml, then defaults.
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	configFile := v.GetString("config")
	if configFile == "" {
		configFile = FindProjectFile()
	}

	envDir := "."
	if configFile != "" {
		envDir = filepath.Dir(configFile)
	}
	loadEnvFiles(envDir)

	if configFile != "" {
		file, err := loadProjectFile(configFile)
		if err != nil {
			return nil, err
		}
		if file != nil {
			applyProjectFile(v, file)
		} else {
			configFile = ""
		}
	}

	cfg := &config.RuntimeConfig{
		DataDir:          v.GetString("data_dir"),
		ConfigFile:       configFile,
		PrivateKey:       v.GetString("private_key"),
		ProposalDuration: v.GetDuration("proposal.duration"),
		Debug:            v.GetBool("debug"),
		Output:           strings.ToLower(v.GetString("output")),
		LedgerTimeout:    v.GetDuration("ledger.confirm_timeout"),
		RunTimeout:       v.GetDuration("engine.run_timeout"),
		Workers:          v.GetInt("engine.workers"),
		RetryAttempts:    v.GetInt("store.retry_attempts"),
		MetricsAddr:      v.GetString("metrics.addr"),
		Contracts: config.Contracts{
			Voting: v.GetString("contracts.voting"),
			Token:  v.GetString("contracts.token"),
		},
	}

	if rpcURL := v.GetString("rpc_url"); rpcURL != "" {
		cfg.Network = &config.Network{
			Name:    v.GetString("network"),
			RPCURL:  rpcURL,
			ChainID: v.GetUint64("chain_id"),
		}
	}

	var err error
	if cfg.Rewards.PerVoter, err = ParseTokenAmount(v.GetString("rewards.per_voter")); err != nil {
		return nil, fmt.Errorf("rewards.per_voter: %w", err)
	}
	if cfg.Rewards.Author, err = ParseTokenAmount(v.GetString("rewards.author")); err != nil {
		return nil, fmt.Errorf("rewards.author: %w", err)
	}

	cfg.Schedule, err = parseSchedule(v)
	if err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseSchedule(v *viper.Viper) (config.Schedule, error) {
	s := config.Schedule{
		Interval: v.GetDuration("schedule.interval"),
		At:       v.GetString("schedule.at"),
	}
	if s.Interval < 0 {
		return s, fmt.Errorf("schedule.interval must not be negative")
	}
	if s.Interval > 0 {
		return s, nil
	}

	wd, err := ParseWeekday(v.GetString("schedule.weekday"))
	if err != nil {
		return s, fmt.Errorf("schedule.weekday: %w", err)
	}
	s.Weekday = wd
	if _, err := time.Parse("15:04", s.At); err != nil {
		return s, fmt.Errorf("schedule.at must be HH:MM, got %q", s.At)
	}
	return s, nil
}

func validate(cfg *config.RuntimeConfig) error {
	switch cfg.Output {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unsupported output format %q (table, json or yaml)", cfg.Output)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("engine.workers must be at least 1")
	}
	if cfg.RetryAttempts < 1 {
		return fmt.Errorf("store.retry_attempts must be at least 1")
	}
	if cfg.ProposalDuration <= 0 {
		return fmt.Errorf("proposal.duration must be positive")
	}
	return nil
}

// applyProjectFile makes weekvote.toml values the defaults, so env and
// flags still override them
func applyProjectFile(v *viper.Viper, file *config.ProjectFileConfig) {
	set := func(key, value string) {
		if value != "" {
			v.SetDefault(key, value)
		}
	}
	set("network", file.Network.Name)
	set("rpc_url", file.Network.RPCURL)
	if file.Network.ChainID != 0 {
		v.SetDefault("chain_id", file.Network.ChainID)
	}
	set("contracts.voting", file.Contracts.Voting)
	set("contracts.token", file.Contracts.Token)
	set("rewards.per_voter", file.Rewards.PerVoter)
	set("rewards.author", file.Rewards.Author)
	set("proposal.duration", file.Proposal.Duration)
	set("schedule.interval", file.Schedule.Interval)
	set("schedule.weekday", file.Schedule.Weekday)
	set("schedule.at", file.Schedule.At)
}

// flagKeys maps flags whose name differs from their config key
var flagKeys = map[string]string{
	"metrics-addr": "metrics.addr",
	"workers":      "engine.workers",
	"run-timeout":  "engine.run_timeout",
	"interval":     "schedule.interval",
}

// SetupViper creates and configures a viper instance
func SetupViper(cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	// Set up environment variables
	v.SetEnvPrefix("WEEKVOTE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Set defaults
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("output", "table")
	v.SetDefault("debug", false)
	v.SetDefault("rewards.per_voter", "10")
	v.SetDefault("rewards.author", "50")
	v.SetDefault("proposal.duration", "168h")
	v.SetDefault("ledger.confirm_timeout", "2m")
	v.SetDefault("engine.run_timeout", "30m")
	v.SetDefault("engine.workers", 4)
	v.SetDefault("store.retry_attempts", 3)
	v.SetDefault("schedule.weekday", "sunday")
	v.SetDefault("schedule.at", "23:59")

	if cmd != nil {
		bind := func(f *pflag.Flag) {
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			if err := v.BindPFlag(key, f); err != nil {
				panic(err)
			}
		}
		cmd.Flags().VisitAll(bind)
		cmd.InheritedFlags().VisitAll(bind)
	}

	return v
}

func defaultDataDir() string {
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, ".weekvote")
	}
	return ".weekvote"
}
