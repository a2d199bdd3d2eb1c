package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultConfigPath is the config file location used when neither the
// environment nor the CLI specifies one.
const DefaultConfigPath = "dotfile.toml"

// Load reads and parses a TOML config file on top of the defaults,
// rejecting unknown keys.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := checkUnknownKeys(&md); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns a
// Config populated with all default values. Deployments that configure
// everything through the environment need no file at all.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// checkUnknownKeys turns undecoded TOML keys into an error listing every
// offender, sorted for deterministic messages.
func checkUnknownKeys(md *toml.MetaData) error {
	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}

	keys := make([]string, 0, len(undecoded))
	for _, k := range undecoded {
		keys = append(keys, k.String())
	}

	sort.Strings(keys)

	return fmt.Errorf("unknown key(s): %s", strings.Join(keys, ", "))
}

// EnvOverrides holds configuration read from DOTFILE_* environment
// variables. Empty fields mean "not set".
type EnvOverrides struct {
	ConfigPath    string
	ListenAddr    string
	TenantID      string
	ClientID      string
	ClientSecret  string
	AirtableKey   string
	AirtableBase  string
	ClassifierKey string
	LedgerPath    string
	LogLevel      string
}

// ReadEnvOverrides reads the supported DOTFILE_* environment variables.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath:    os.Getenv("DOTFILE_CONFIG"),
		ListenAddr:    os.Getenv("DOTFILE_LISTEN_ADDR"),
		TenantID:      os.Getenv("DOTFILE_TENANT_ID"),
		ClientID:      os.Getenv("DOTFILE_CLIENT_ID"),
		ClientSecret:  os.Getenv("DOTFILE_CLIENT_SECRET"),
		AirtableKey:   os.Getenv("DOTFILE_AIRTABLE_KEY"),
		AirtableBase:  os.Getenv("DOTFILE_AIRTABLE_BASE"),
		ClassifierKey: os.Getenv("DOTFILE_CLASSIFIER_KEY"),
		LedgerPath:    os.Getenv("DOTFILE_LEDGER_PATH"),
		LogLevel:      os.Getenv("DOTFILE_LOG_LEVEL"),
	}
}

// CLIOverrides holds values from command-line flags. Empty fields mean
// "not specified".
type CLIOverrides struct {
	ConfigPath string
	ListenAddr string
	LogLevel   string
}

// Resolve loads configuration and applies the override chain:
// defaults -> config file -> environment variables -> CLI flags.
// CLI flags always win, matching user expectations for one-off overrides
// without editing the config file.
func Resolve(env EnvOverrides, cli CLIOverrides) (*Config, error) {
	cfgPath := DefaultConfigPath
	if env.ConfigPath != "" {
		cfgPath = env.ConfigPath
	}

	if cli.ConfigPath != "" {
		cfgPath = cli.ConfigPath
	}

	cfg, err := LoadOrDefault(cfgPath)
	if err != nil {
		return nil, err
	}

	applyEnv(cfg, env)

	if cli.ListenAddr != "" {
		cfg.Service.ListenAddr = cli.ListenAddr
	}

	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config, env EnvOverrides) {
	if env.ListenAddr != "" {
		cfg.Service.ListenAddr = env.ListenAddr
	}

	if env.TenantID != "" {
		cfg.DocumentStore.TenantID = env.TenantID
	}

	if env.ClientID != "" {
		cfg.DocumentStore.ClientID = env.ClientID
	}

	if env.ClientSecret != "" {
		cfg.DocumentStore.ClientSecret = env.ClientSecret
	}

	if env.AirtableKey != "" {
		cfg.RecordStore.APIKey = env.AirtableKey
	}

	if env.AirtableBase != "" {
		cfg.RecordStore.BaseID = env.AirtableBase
	}

	if env.ClassifierKey != "" {
		cfg.Classifier.APIKey = env.ClassifierKey
	}

	if env.LedgerPath != "" {
		cfg.Ledger.Path = env.LedgerPath
	}

	if env.LogLevel != "" {
		cfg.Logging.Level = env.LogLevel
	}
}
