package bootstrap

import (
	"fmt"
	"net/url"

	"github.com/devfury/ezcaretech-auth/internal/config"
)

// validateConfiguration validates all configuration settings
func validateConfiguration(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := validateBizBoxURLs(cfg); err != nil {
		return fmt.Errorf("invalid BizBox configuration: %w", err)
	}
	return nil
}

// validateBizBoxURLs checks that both BizBox endpoints are absolute http(s) URLs
func validateBizBoxURLs(cfg *config.Config) error {
	for key, raw := range map[string]string{
		"BIZBOX_TOKEN_URL":   cfg.BizBoxTokenURL,
		"BIZBOX_PROFILE_URL": cfg.BizBoxProfileURL,
	} {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s must be an absolute http(s) URL, got %q", key, raw)
		}
	}
	return nil
}
