package config

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(TokenDecimals), nil))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newViper(t *testing.T, configPath string) *viper.Viper {
	t.Helper()
	v := SetupViper(nil)
	v.Set("config", configPath)
	return v
}

func TestProvider_Defaults(t *testing.T) {
	v := newViper(t, filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Provider(v)
	require.NoError(t, err)

	assert.Empty(t, cfg.ConfigFile)
	assert.Nil(t, cfg.Network)
	assert.Equal(t, tokens(10), cfg.Rewards.PerVoter)
	assert.Equal(t, tokens(50), cfg.Rewards.Author)
	assert.Equal(t, 7*24*time.Hour, cfg.ProposalDuration)
	assert.Equal(t, 2*time.Minute, cfg.LedgerTimeout)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, "table", cfg.Output)
	assert.Equal(t, time.Sunday, cfg.Schedule.Weekday)
	assert.Equal(t, "23:59", cfg.Schedule.At)
	assert.Zero(t, cfg.Schedule.Interval)
}

func TestProvider_ProjectFile(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(func() { os.Unsetenv("WEEKVOTE_TEST_RPC") })
	writeFile(t, dir, ".env", "WEEKVOTE_TEST_RPC=http://127.0.0.1:8545\n")
	path := writeFile(t, dir, ProjectFileName, `
[network]
name = "mantle-sepolia"
rpc_url = "${WEEKVOTE_TEST_RPC}"
chain_id = 5003

[contracts]
voting = "0x00000000000000000000000000000000000000a1"
token = "0x00000000000000000000000000000000000000b2"

[rewards]
per_voter = "0.5"
author = "50"

[proposal]
duration = "72h"

[schedule]
interval = "1h"
`)

	cfg, err := Provider(newViper(t, path))
	require.NoError(t, err)

	assert.Equal(t, path, cfg.ConfigFile)
	require.NotNil(t, cfg.Network)
	assert.Equal(t, "http://127.0.0.1:8545", cfg.Network.RPCURL)
	assert.Equal(t, uint64(5003), cfg.Network.ChainID)
	assert.Equal(t, "mantle-sepolia", cfg.Network.Name)
	assert.Equal(t, "0x00000000000000000000000000000000000000a1", cfg.Contracts.Voting)
	assert.Equal(t, new(big.Int).Div(tokens(1), big.NewInt(2)), cfg.Rewards.PerVoter)
	assert.Equal(t, 72*time.Hour, cfg.ProposalDuration)
	assert.Equal(t, time.Hour, cfg.Schedule.Interval)
}

func TestProvider_EnvOverridesProjectFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), ProjectFileName, `
[rewards]
author = "50"
`)
	t.Setenv("WEEKVOTE_REWARDS_AUTHOR", "7")
	t.Setenv("WEEKVOTE_PRIVATE_KEY", "0xabc")

	cfg, err := Provider(newViper(t, path))
	require.NoError(t, err)

	assert.Equal(t, tokens(7), cfg.Rewards.Author)
	assert.Equal(t, "0xabc", cfg.PrivateKey)
}

func TestProvider_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
		want string
	}{
		{"output", "output", "xml", "unsupported output format"},
		{"reward amount", "rewards.per_voter", "ten", "rewards.per_voter"},
		{"weekday", "schedule.weekday", "funday", "schedule.weekday"},
		{"anchor", "schedule.at", "noon", "schedule.at"},
		{"workers", "engine.workers", 0, "engine.workers"},
		{"duration", "proposal.duration", "0s", "proposal.duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper(t, filepath.Join(t.TempDir(), "missing.toml"))
			v.Set(tt.key, tt.val)
			_, err := Provider(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseTokenAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "10", want: "10000000000000000000"},
		{in: "0.5", want: "500000000000000000"},
		{in: " 1 ", want: "1000000000000000000"},
		{in: "0.000000000000000001", want: "1"},
		{in: "0.0000000000000000001", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTokenAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestFormatTokenAmount(t *testing.T) {
	assert.Equal(t, "10", FormatTokenAmount(tokens(10)))
	assert.Equal(t, "0.5", FormatTokenAmount(new(big.Int).Div(tokens(1), big.NewInt(2))))
	assert.Equal(t, "0", FormatTokenAmount(nil))
}
