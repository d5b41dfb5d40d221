package config

import (
	"fmt"
	"strings"

	"github.com/akintewe/Neko-Oracle-RWA/crypto"
)

// Validate checks the loaded configuration for values the daemon cannot run
// without. Addresses must carry the expected bech32 prefix for their role.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if strings.TrimSpace(cfg.ListenAddress) == "" {
		return fmt.Errorf("ListenAddress must not be empty")
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		return fmt.Errorf("DataDir must not be empty")
	}
	if err := requireAddress(cfg.PoolAddress, crypto.NekoPrefix, "PoolAddress"); err != nil {
		return err
	}
	if err := requireAddress(cfg.AdminAddress, crypto.NekoPrefix, "AdminAddress"); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.BackstopToken) != "" {
		if err := requireAddress(cfg.BackstopToken, crypto.RWAPrefix, "BackstopToken"); err != nil {
			return err
		}
	}
	if cfg.Oracle.Decimals == 0 || cfg.Oracle.Decimals > 18 {
		return fmt.Errorf("oracle.Decimals must be between 1 and 18")
	}
	if cfg.Auth.Enabled {
		if strings.TrimSpace(cfg.Auth.HMACSecret) == "" &&
			strings.TrimSpace(cfg.Auth.HMACSecretFile) == "" &&
			strings.TrimSpace(cfg.Auth.HMACSecretEnv) == "" {
			return fmt.Errorf("auth enabled but no HMAC secret source configured")
		}
	}
	for name, limit := range cfg.RateLimit {
		if limit.RequestsPerMinute < 0 {
			return fmt.Errorf("ratelimit.%s: RequestsPerMinute < 0", name)
		}
		if limit.Burst < 0 {
			return fmt.Errorf("ratelimit.%s: Burst < 0", name)
		}
	}
	return nil
}

func requireAddress(raw string, prefix crypto.AddressPrefix, field string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fmt.Errorf("%s must not be empty", field)
	}
	addr, err := crypto.DecodeAddress(trimmed)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if addr.Prefix() != prefix {
		return fmt.Errorf("%s: expected %q prefix, got %q", field, prefix, addr.Prefix())
	}
	return nil
}

// PoolAddr decodes the configured pool address. Validate must have passed.
func (c *Config) PoolAddr() crypto.Address {
	addr, _ := crypto.DecodeAddress(strings.TrimSpace(c.PoolAddress))
	return addr
}

// AdminAddr decodes the configured admin address. Validate must have passed.
func (c *Config) AdminAddr() crypto.Address {
	addr, _ := crypto.DecodeAddress(strings.TrimSpace(c.AdminAddress))
	return addr
}
