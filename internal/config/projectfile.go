package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/trebuchet-org/weekvote/internal/domain/config"
)

// ProjectFileName is the optional project config file
const ProjectFileName = "weekvote.toml"

// loadEnvFiles loads .env files from dir into the process environment.
// Variables already set are never overwritten.
func loadEnvFiles(dir string) {
	envFiles := []string{
		filepath.Join(dir, ".env"),
		filepath.Join(dir, ".env.local"),
	}

	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				// Log warning but don't fail
				fmt.Fprintf(os.Stderr, "Warning: Failed to load %s: %v\n", envFile, err)
			}
		}
	}
}

// loadProjectFile loads and parses path if it exists.
// Returns (nil, nil) when the file does not exist.
func loadProjectFile(path string) (*config.ProjectFileConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	var cfg config.ProjectFileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	// Expand environment variables so secrets and endpoints can stay in .env
	cfg.Network.RPCURL = os.ExpandEnv(cfg.Network.RPCURL)
	cfg.Contracts.Voting = os.ExpandEnv(cfg.Contracts.Voting)
	cfg.Contracts.Token = os.ExpandEnv(cfg.Contracts.Token)
	cfg.Rewards.PerVoter = os.ExpandEnv(cfg.Rewards.PerVoter)
	cfg.Rewards.Author = os.ExpandEnv(cfg.Rewards.Author)

	return &cfg, nil
}

// FindProjectFile walks up from the current directory looking for weekvote.toml.
// Returns "" when none is found.
func FindProjectFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		candidate := filepath.Join(dir, ProjectFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
