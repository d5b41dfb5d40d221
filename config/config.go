package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the on-disk configuration for the lending daemon.
type Config struct {
	ListenAddress string `toml:"ListenAddress"`
	DataDir       string `toml:"DataDir"`
	AuditDBPath   string `toml:"AuditDBPath,omitempty"`
	Environment   string `toml:"Environment"`

	PoolAddress   string `toml:"PoolAddress"`
	AdminAddress  string `toml:"AdminAddress"`
	BackstopToken string `toml:"BackstopToken,omitempty"`

	Oracle    Oracle               `toml:"oracle"`
	Auth      Auth                 `toml:"auth"`
	Telemetry Telemetry            `toml:"telemetry"`
	RateLimit map[string]RateLimit `toml:"ratelimit,omitempty"`
	Pauses    Pauses               `toml:"pauses"`
}

// Load loads the configuration from the given path, creating a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.ListenAddress) == "" {
		cfg.ListenAddress = ":8650"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./neko-data"
	}
	if strings.TrimSpace(cfg.AuditDBPath) == "" {
		cfg.AuditDBPath = filepath.Join(cfg.DataDir, "audit.db")
	}
	if strings.TrimSpace(cfg.Environment) == "" {
		cfg.Environment = "local"
	}
	if cfg.Oracle.Decimals == 0 {
		cfg.Oracle.Decimals = 7
	}
	if cfg.Auth.ClockSkewSeconds <= 0 {
		cfg.Auth.ClockSkewSeconds = 120
	}
	if cfg.RateLimit == nil {
		cfg.RateLimit = map[string]RateLimit{}
	}
}

// HMACSecretValue resolves the gateway auth secret from its configured source.
func (a Auth) HMACSecretValue() (string, error) {
	if secret := strings.TrimSpace(a.HMACSecret); secret != "" {
		return secret, nil
	}
	if file := strings.TrimSpace(a.HMACSecretFile); file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read auth secret file: %w", err)
		}
		secret := strings.TrimSpace(string(raw))
		if secret == "" {
			return "", fmt.Errorf("auth secret file %s is empty", file)
		}
		return secret, nil
	}
	if env := strings.TrimSpace(a.HMACSecretEnv); env != "" {
		secret := strings.TrimSpace(os.Getenv(env))
		if secret == "" {
			return "", fmt.Errorf("auth secret env %s is unset or empty", env)
		}
		return secret, nil
	}
	return "", fmt.Errorf("no auth secret source configured")
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		ListenAddress: ":8650",
		DataDir:       "./neko-data",
		Environment:   "local",
		Oracle:        Oracle{Decimals: 7},
		Auth:          Auth{Enabled: false, ClockSkewSeconds: 120},
		Telemetry:     Telemetry{Enabled: false, Endpoint: "localhost:4318", Insecure: true},
		RateLimit: map[string]RateLimit{
			"lending": {RequestsPerMinute: 600, Burst: 30},
			"token":   {RequestsPerMinute: 600, Burst: 30},
			"admin":   {RequestsPerMinute: 60, Burst: 5},
		},
	}
	applyDefaults(cfg)

	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
