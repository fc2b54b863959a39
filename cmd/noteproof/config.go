// config.go - Configuration management for the noteproof CLI
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"notecrypto/internal/curve"
)

// Environment overrides, applied after the config file.
const (
	EnvLogLevel       = "NOTEPROOF_LOG_LEVEL"
	EnvRecoverCeiling = "NOTEPROOF_RECOVER_CEILING"
)

// Config represents the application configuration
type Config struct {
	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// Security
	EnableAudit  bool   `json:"enable_audit"`
	AuditLogPath string `json:"audit_log_path"`

	// Proofs
	Validator      string `json:"validator"`       // verifying contract for note signatures
	RecoverCeiling uint64 `json:"recover_ceiling"` // upper bound for value recovery

	EnableMetrics bool `json:"enable_metrics"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		LogLevel:       "info",
		EnableAudit:    false,
		AuditLogPath:   "audit.log",
		RecoverCeiling: curve.KMax,
	}
}

// LoadConfig loads configuration from file, falling back to the defaults when
// the file does not exist
func LoadConfig(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	config := DefaultConfig()
	if err := json.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}
	return config, nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ApplyEnv loads envFile into the environment (a missing file is fine) and
// applies any NOTEPROOF_* overrides. Variables already set in the process
// environment win over the file.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvRecoverCeiling); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRecoverCeiling, err)
		}
		c.RecoverCeiling = n
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.RecoverCeiling == 0 || c.RecoverCeiling > curve.KMax {
		return fmt.Errorf("recover_ceiling must be in [1, %d]", curve.KMax)
	}
	if c.Validator != "" && !common.IsHexAddress(c.Validator) {
		return fmt.Errorf("validator %q is not an address", c.Validator)
	}
	if c.EnableAudit && c.AuditLogPath == "" {
		return fmt.Errorf("audit_log_path is required when auditing is enabled")
	}
	return nil
}

// ValidatorAddress returns the configured validator, the zero address if unset.
func (c *Config) ValidatorAddress() common.Address {
	return common.HexToAddress(c.Validator)
}
