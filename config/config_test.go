package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/akintewe/Neko-Oracle-RWA/crypto"
)

var (
	testPoolAddr  = crypto.NewAddress(crypto.NekoPrefix, bytesWith(0x11)).String()
	testAdminAddr = crypto.NewAddress(crypto.NekoPrefix, bytesWith(0x22)).String()
	testTokenAddr = crypto.NewAddress(crypto.RWAPrefix, bytesWith(0x33)).String()
)

func bytesWith(b byte) []byte {
	buf := make([]byte, 20)
	buf[0] = b
	buf[len(buf)-1] = b
	return buf
}

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadParsesDaemonSettings(t *testing.T) {
	contents := fmt.Sprintf(`ListenAddress = "0.0.0.0:7650"
DataDir = "./data"
Environment = "staging"
PoolAddress = "%s"
AdminAddress = "%s"
BackstopToken = "%s"

[oracle]
Decimals = 9

[auth]
Enabled = true
HMACSecret = "topsecret"
Issuer = "neko-gateway"
Audience = "neko-clients"
ClockSkewSeconds = 30

[telemetry]
Enabled = true
Endpoint = "collector:4318"
Insecure = true
Traces = true

[ratelimit.lending]
RequestsPerMinute = 120.0
Burst = 10
`, testPoolAddr, testAdminAddr, testTokenAddr)

	cfg, err := Load(writeConfig(t, contents))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddress != "0.0.0.0:7650" {
		t.Fatalf("unexpected listen address: %s", cfg.ListenAddress)
	}
	if cfg.Environment != "staging" {
		t.Fatalf("unexpected environment: %s", cfg.Environment)
	}
	if cfg.Oracle.Decimals != 9 {
		t.Fatalf("unexpected oracle decimals: %d", cfg.Oracle.Decimals)
	}
	if !cfg.Auth.Enabled || cfg.Auth.Issuer != "neko-gateway" {
		t.Fatalf("unexpected auth config: %+v", cfg.Auth)
	}
	if cfg.Auth.ClockSkewSeconds != 30 {
		t.Fatalf("unexpected clock skew: %d", cfg.Auth.ClockSkewSeconds)
	}
	limit, ok := cfg.RateLimit["lending"]
	if !ok {
		t.Fatalf("missing lending rate limit")
	}
	if limit.RequestsPerMinute != 120 || limit.Burst != 10 {
		t.Fatalf("unexpected rate limit: %+v", limit)
	}
	if got := cfg.PoolAddr().String(); got != testPoolAddr {
		t.Fatalf("pool address round trip: %s", got)
	}
	if cfg.AuditDBPath != filepath.Join("./data", "audit.db") {
		t.Fatalf("audit path default not applied: %s", cfg.AuditDBPath)
	}
}

func TestLoadCreatesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	if cfg.ListenAddress != ":8650" {
		t.Fatalf("unexpected default listen address: %s", cfg.ListenAddress)
	}
	if cfg.Oracle.Decimals != 7 {
		t.Fatalf("unexpected default oracle decimals: %d", cfg.Oracle.Decimals)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not persisted: %v", err)
	}
}

func TestValidateRejectsWrongPrefix(t *testing.T) {
	contents := fmt.Sprintf(`ListenAddress = ":8650"
DataDir = "./data"
PoolAddress = "%s"
AdminAddress = "%s"
`, testTokenAddr, testAdminAddr)

	if _, err := Load(writeConfig(t, contents)); err == nil {
		t.Fatalf("expected prefix validation error")
	}
}

func TestValidateRequiresAuthSecretSource(t *testing.T) {
	contents := fmt.Sprintf(`ListenAddress = ":8650"
DataDir = "./data"
PoolAddress = "%s"
AdminAddress = "%s"

[auth]
Enabled = true
`, testPoolAddr, testAdminAddr)

	if _, err := Load(writeConfig(t, contents)); err == nil {
		t.Fatalf("expected missing secret error")
	}
}

func TestHMACSecretValueSources(t *testing.T) {
	inline := Auth{HMACSecret: " direct "}
	secret, err := inline.HMACSecretValue()
	if err != nil || secret != "direct" {
		t.Fatalf("inline secret: %q, %v", secret, err)
	}

	file := filepath.Join(t.TempDir(), "secret.txt")
	if err := os.WriteFile(file, []byte("from-file\n"), 0o600); err != nil {
		t.Fatalf("write secret file: %v", err)
	}
	fromFile := Auth{HMACSecretFile: file}
	secret, err = fromFile.HMACSecretValue()
	if err != nil || secret != "from-file" {
		t.Fatalf("file secret: %q, %v", secret, err)
	}

	t.Setenv("NEKO_TEST_SECRET", "from-env")
	fromEnv := Auth{HMACSecretEnv: "NEKO_TEST_SECRET"}
	secret, err = fromEnv.HMACSecretValue()
	if err != nil || secret != "from-env" {
		t.Fatalf("env secret: %q, %v", secret, err)
	}

	empty := Auth{}
	if _, err := empty.HMACSecretValue(); err == nil {
		t.Fatalf("expected error for missing secret source")
	}
}

func TestPausesIsPaused(t *testing.T) {
	p := Pauses{Token: true}
	if !p.IsPaused("Token") || !p.IsPaused(" token ") {
		t.Fatalf("token pause not recognized")
	}
	if p.IsPaused("lending") || p.IsPaused("unknown") {
		t.Fatalf("unexpected pause")
	}
}
