// Package config implements TOML configuration loading for the dotfile
// service. It supports a layered override chain (defaults -> config file ->
// environment variables -> CLI flags). Unknown keys in the config file are
// fatal errors: silently ignoring a typo leads to hard-to-debug behavior.
package config

// Config is the top-level configuration structure parsed from a TOML file.
type Config struct {
	Service       ServiceConfig       `toml:"service"`
	DocumentStore DocumentStoreConfig `toml:"document_store"`
	RecordStore   RecordStoreConfig   `toml:"record_store"`
	Classifier    ClassifierConfig    `toml:"classifier"`
	Relay         RelayConfig         `toml:"relay"`
	Ledger        LedgerConfig        `toml:"ledger"`
	Logging       LoggingConfig       `toml:"logging"`
}

// ServiceConfig controls the HTTP listener and request interpretation.
type ServiceConfig struct {
	ListenAddr string `toml:"listen_addr"`
	BaseURL    string `toml:"base_url"`
	// InternalDomain is the email domain treated as "one of ours" when
	// classifying senders (no leading @).
	InternalDomain string `toml:"internal_domain"`
}

// DocumentStoreConfig holds credentials and layout for the cloud document
// store where job folders and the staging folder live.
type DocumentStoreConfig struct {
	TenantID     string `toml:"tenant_id"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	// RootSiteURL is the site hosting the staging folder,
	// e.g. "https://contoso.sharepoint.com/sites/filing".
	RootSiteURL string `toml:"root_site_url"`
	// StagingPath is the drive-root-relative path where inbound attachments
	// are parked before filing.
	StagingPath string `toml:"staging_path"`
	// ResolverMode selects how job folders are located:
	// "pointer" follows the folder URL stored on the project record,
	// "search" scans the client site's folder tree for a job-number prefix.
	ResolverMode string `toml:"resolver_mode"`
	// Mover selects the move backend: "graph" performs document-store
	// operations directly, "relay" delegates to the orchestration relay.
	Mover string `toml:"mover"`
}

// RecordStoreConfig points at the tabular record store holding project
// records and the activity log.
type RecordStoreConfig struct {
	BaseURL       string `toml:"base_url"`
	APIKey        string `toml:"api_key"`
	BaseID        string `toml:"base_id"`
	ProjectsTable string `toml:"projects_table"`
	ActivityTable string `toml:"activity_table"`
}

// ClassifierConfig selects and configures the classification oracle.
// Provider "none" disables the oracle; the deterministic rules always apply.
type ClassifierConfig struct {
	Provider       string `toml:"provider"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// RelayConfig configures the orchestration relay used when mover = "relay".
type RelayConfig struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// LedgerConfig configures the local filing history database.
// An empty path disables the ledger.
type LedgerConfig struct {
	Path string `toml:"path"`
}

// LoggingConfig controls log output. Format "" selects text on a terminal
// and JSON otherwise.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default values applied before the config file is read.
const (
	defaultListenAddr       = ":8080"
	defaultInternalDomain   = "hunch.co.nz"
	defaultStagingPath      = "Shared Documents/-- Incoming"
	defaultResolverMode     = "pointer"
	defaultMover            = "graph"
	defaultRecordStoreURL   = "https://api.airtable.com/v0"
	defaultProjectsTable    = "Projects"
	defaultActivityTable    = "Updates"
	defaultProvider         = "anthropic"
	defaultOracleTimeoutSec = 30
	defaultRelayTimeoutSec  = 120
	defaultLogLevel         = "info"
)

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			ListenAddr:     defaultListenAddr,
			InternalDomain: defaultInternalDomain,
		},
		DocumentStore: DocumentStoreConfig{
			StagingPath:  defaultStagingPath,
			ResolverMode: defaultResolverMode,
			Mover:        defaultMover,
		},
		RecordStore: RecordStoreConfig{
			BaseURL:       defaultRecordStoreURL,
			ProjectsTable: defaultProjectsTable,
			ActivityTable: defaultActivityTable,
		},
		Classifier: ClassifierConfig{
			Provider:       defaultProvider,
			TimeoutSeconds: defaultOracleTimeoutSec,
		},
		Relay: RelayConfig{
			TimeoutSeconds: defaultRelayTimeoutSec,
		},
		Logging: LoggingConfig{
			Level: defaultLogLevel,
		},
	}
}
