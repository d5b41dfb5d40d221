package config

import "strings"

// Auth configures bearer token verification for the gateway. The HMAC secret
// can be provided inline, via a file, or via an environment variable; exactly
// one source is consulted in that order.
type Auth struct {
	Enabled          bool   `toml:"Enabled"`
	HMACSecret       string `toml:"HMACSecret,omitempty"`
	HMACSecretFile   string `toml:"HMACSecretFile,omitempty"`
	HMACSecretEnv    string `toml:"HMACSecretEnv,omitempty"`
	Issuer           string `toml:"Issuer"`
	Audience         string `toml:"Audience"`
	ClockSkewSeconds int64  `toml:"ClockSkewSeconds"`
}

// Telemetry configures the OTLP exporters for traces and metrics.
type Telemetry struct {
	Enabled     bool   `toml:"Enabled"`
	Endpoint    string `toml:"Endpoint"`
	Insecure    bool   `toml:"Insecure"`
	Traces      bool   `toml:"Traces"`
	Metrics     bool   `toml:"Metrics"`
	HeadersLine string `toml:"Headers,omitempty"`
}

// RateLimit bounds request throughput for one gateway route group.
type RateLimit struct {
	RequestsPerMinute float64 `toml:"RequestsPerMinute"`
	Burst             int     `toml:"Burst"`
}

// Oracle configures the price feed surface of the daemon.
type Oracle struct {
	Decimals uint32 `toml:"Decimals"`
}

// Pauses holds administrative kill switches for the native modules.
type Pauses struct {
	Token   bool `toml:"Token"`
	Lending bool `toml:"Lending"`
}

// IsPaused reports whether the named module is administratively halted.
// Module names are matched case-insensitively.
func (p Pauses) IsPaused(module string) bool {
	switch strings.ToLower(strings.TrimSpace(module)) {
	case "token":
		return p.Token
	case "lending":
		return p.Lending
	}
	return false
}
