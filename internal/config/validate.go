package config

import (
	"errors"
	"fmt"
	"strings"
)

// Allowed enum values, listed in error messages.
var (
	resolverModes = []string{"pointer", "search"}
	moverModes    = []string{"graph", "relay"}
	providers     = []string{"anthropic", "openai", "none"}
	logLevels     = []string{"debug", "info", "warn", "error"}
	logFormats    = []string{"", "text", "json"}
)

// Validate checks all configuration values and returns all errors found.
// It accumulates every error rather than stopping at the first, so users
// see a complete report and can fix all issues in one pass.
func Validate(cfg *Config) error {
	var errs []error

	if !contains(resolverModes, cfg.DocumentStore.ResolverMode) {
		errs = append(errs, enumErr("document_store.resolver_mode", cfg.DocumentStore.ResolverMode, resolverModes))
	}

	if !contains(moverModes, cfg.DocumentStore.Mover) {
		errs = append(errs, enumErr("document_store.mover", cfg.DocumentStore.Mover, moverModes))
	}

	if !contains(providers, strings.ToLower(cfg.Classifier.Provider)) {
		errs = append(errs, enumErr("classifier.provider", cfg.Classifier.Provider, providers))
	}

	if !contains(logLevels, cfg.Logging.Level) {
		errs = append(errs, enumErr("logging.level", cfg.Logging.Level, logLevels))
	}

	if !contains(logFormats, cfg.Logging.Format) {
		errs = append(errs, enumErr("logging.format", cfg.Logging.Format, logFormats))
	}

	if cfg.Classifier.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("classifier.timeout_seconds: must be positive, got %d", cfg.Classifier.TimeoutSeconds))
	}

	if cfg.Relay.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("relay.timeout_seconds: must be positive, got %d", cfg.Relay.TimeoutSeconds))
	}

	if strings.HasPrefix(cfg.Service.InternalDomain, "@") {
		errs = append(errs, fmt.Errorf("service.internal_domain: must not start with @, got %q", cfg.Service.InternalDomain))
	}

	return errors.Join(errs...)
}

// ValidateServe checks that everything the running service needs is present.
// Run after the override chain so env-provided secrets count.
func ValidateServe(cfg *Config) error {
	var errs []error

	for _, f := range []struct{ key, val string }{
		{"document_store.tenant_id", cfg.DocumentStore.TenantID},
		{"document_store.client_id", cfg.DocumentStore.ClientID},
		{"document_store.client_secret", cfg.DocumentStore.ClientSecret},
		{"document_store.root_site_url", cfg.DocumentStore.RootSiteURL},
		{"record_store.api_key", cfg.RecordStore.APIKey},
		{"record_store.base_id", cfg.RecordStore.BaseID},
	} {
		if f.val == "" {
			errs = append(errs, fmt.Errorf("%s: required", f.key))
		}
	}

	if p := strings.ToLower(cfg.Classifier.Provider); p != "none" && cfg.Classifier.APIKey == "" {
		errs = append(errs, fmt.Errorf("classifier.api_key: required for provider %q", cfg.Classifier.Provider))
	}

	if cfg.DocumentStore.Mover == "relay" && cfg.Relay.URL == "" {
		errs = append(errs, errors.New("relay.url: required when document_store.mover is \"relay\""))
	}

	return errors.Join(errs...)
}

func contains(allowed []string, v string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}

	return false
}

func enumErr(key, got string, allowed []string) error {
	shown := make([]string, 0, len(allowed))
	for _, a := range allowed {
		if a != "" {
			shown = append(shown, fmt.Sprintf("%q", a))
		}
	}

	return fmt.Errorf("%s: invalid value %q (allowed: %s)", key, got, strings.Join(shown, ", "))
}
