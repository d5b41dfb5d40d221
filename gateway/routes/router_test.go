package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akintewe/Neko-Oracle-RWA/crypto"
	"github.com/akintewe/Neko-Oracle-RWA/native/lending"
	"github.com/akintewe/Neko-Oracle-RWA/native/token"
	"github.com/akintewe/Neko-Oracle-RWA/oracle"
	"github.com/akintewe/Neko-Oracle-RWA/storage"
)

func gatewayAddr(prefix crypto.AddressPrefix, b byte) string {
	raw := make([]byte, 20)
	for i := range raw {
		raw[i] = b
	}
	return crypto.NewAddress(prefix, raw).String()
}

type gatewayEnv struct {
	server *httptest.Server
	admin  string
	lender string
	usdc   string
	rwa    string
}

func newGatewayEnv(t *testing.T) *gatewayEnv {
	t.Helper()

	db := storage.NewMemDB()
	t.Cleanup(func() { db.Close() })

	prices := oracle.NewStatic(7)

	ledger := token.NewLedger()
	ledger.SetState(token.NewKVState(db))

	poolAddr := crypto.NewAddress(crypto.NekoPrefix, bytes.Repeat([]byte{0xfe}, 20))
	engine := lending.NewEngine(poolAddr)
	engine.SetState(lending.NewKVState(db))
	engine.SetTokens(ledger)
	engine.SetRWAOracle(prices)
	engine.SetReflectorOracle(prices)

	handler, err := New(Config{Engine: engine, Ledger: ledger, Prices: prices})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &gatewayEnv{
		server: server,
		admin:  gatewayAddr(crypto.NekoPrefix, 0x01),
		lender: gatewayAddr(crypto.NekoPrefix, 0x02),
		usdc:   gatewayAddr(crypto.RWAPrefix, 0x10),
		rwa:    gatewayAddr(crypto.RWAPrefix, 0x20),
	}
}

func (env *gatewayEnv) post(t *testing.T, path string, body map[string]any) (*http.Response, map[string]any) {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(env.server.URL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp, decodeBody(t, resp)
}

func (env *gatewayEnv) get(t *testing.T, path string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(env.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp, decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	out := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func mustOK(t *testing.T, resp *http.Response, body map[string]any) {
	t.Helper()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %v", resp.StatusCode, body)
	}
}

func (env *gatewayEnv) bootstrap(t *testing.T) {
	t.Helper()

	resp, body := env.post(t, "/v1/token/register", map[string]any{
		"token": env.usdc, "admin": env.admin, "name": "Pool Dollar", "symbol": "USDC", "decimals": 7,
	})
	mustOK(t, resp, body)
	resp, body = env.post(t, "/v1/token/register", map[string]any{
		"token": env.rwa, "admin": env.admin, "name": "Treasury Note", "symbol": "TNOTE", "decimals": 7, "peggedAsset": "TNOTE",
	})
	mustOK(t, resp, body)

	resp, body = env.post(t, "/v1/token/mint", map[string]any{
		"caller": env.admin, "token": env.usdc, "to": env.lender, "amount": "5000000",
	})
	mustOK(t, resp, body)
	resp, body = env.post(t, "/v1/token/mint", map[string]any{
		"caller": env.admin, "token": env.rwa, "to": env.lender, "amount": "5000000",
	})
	mustOK(t, resp, body)

	resp, body = env.post(t, "/v1/admin/initialize", map[string]any{
		"admin": env.admin, "rwaOracle": env.admin, "reflectorOracle": env.admin,
		"backstopThreshold": "1000", "backstopTakeRateBps": 1000,
	})
	mustOK(t, resp, body)

	resp, body = env.post(t, "/v1/admin/token-contract", map[string]any{
		"caller": env.admin, "asset": "USDC", "token": env.usdc,
	})
	mustOK(t, resp, body)
	resp, body = env.post(t, "/v1/admin/backstop/token", map[string]any{
		"caller": env.admin, "token": env.usdc,
	})
	mustOK(t, resp, body)
	resp, body = env.post(t, "/v1/admin/collateral-factor", map[string]any{
		"caller": env.admin, "token": env.rwa, "factorBps": 7500,
	})
	mustOK(t, resp, body)

	// $1.00 and $2.00 at 7 oracle decimals.
	resp, body = env.post(t, "/v1/oracle/price", map[string]any{"ref": "USDC", "price": "10000000"})
	mustOK(t, resp, body)
	resp, body = env.post(t, "/v1/oracle/price", map[string]any{"ref": env.rwa, "price": "20000000"})
	mustOK(t, resp, body)

	// Stake enough backstop capital to activate the pool.
	resp, body = env.post(t, "/v1/lending/backstop/deposit", map[string]any{
		"depositor": env.lender, "amount": "10000",
	})
	mustOK(t, resp, body)
}

func TestGatewaySupplyAndWithdraw(t *testing.T) {
	env := newGatewayEnv(t)
	env.bootstrap(t)

	resp, body := env.post(t, "/v1/lending/supply", map[string]any{
		"supplier": env.lender, "asset": "USDC", "amount": "1000000",
	})
	mustOK(t, resp, body)
	if body["sharesMinted"] != "1000000" {
		t.Fatalf("unexpected shares minted: %v", body)
	}

	resp, body = env.get(t, "/v1/lending/reserves/USDC")
	mustOK(t, resp, body)
	if body["poolBalance"] != "1000000" {
		t.Fatalf("unexpected pool balance: %v", body)
	}
	if body["lenderRate"] != "1000000000" {
		t.Fatalf("unexpected lender rate: %v", body)
	}

	resp, body = env.post(t, "/v1/lending/withdraw", map[string]any{
		"supplier": env.lender, "asset": "USDC", "amount": "400000",
	})
	mustOK(t, resp, body)
	if body["amountWithdrawn"] != "400000" {
		t.Fatalf("unexpected withdrawal: %v", body)
	}

	resp, body = env.get(t, "/v1/lending/balances/USDC/"+env.lender)
	mustOK(t, resp, body)
	if body["balance"] != "600000" {
		t.Fatalf("unexpected lender balance: %v", body)
	}
}

func TestGatewayPoolLifecycle(t *testing.T) {
	env := newGatewayEnv(t)
	env.bootstrap(t)

	resp, body := env.get(t, "/v1/lending/pool")
	mustOK(t, resp, body)
	if body["state"] != "active" {
		t.Fatalf("pool not active after backstop deposit: %v", body)
	}
	if body["backstopTotal"] != "10000" {
		t.Fatalf("unexpected backstop total: %v", body)
	}

	// A second initialize attempt conflicts.
	resp, body = env.post(t, "/v1/admin/initialize", map[string]any{
		"admin": env.admin, "rwaOracle": env.admin, "reflectorOracle": env.admin,
		"backstopThreshold": "1000", "backstopTakeRateBps": 1000,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected conflict, got %d: %v", resp.StatusCode, body)
	}
}

func TestGatewayBorrowAgainstCollateral(t *testing.T) {
	env := newGatewayEnv(t)
	env.bootstrap(t)

	resp, body := env.post(t, "/v1/lending/supply", map[string]any{
		"supplier": env.lender, "asset": "USDC", "amount": "1000000",
	})
	mustOK(t, resp, body)

	resp, body = env.post(t, "/v1/lending/collateral/add", map[string]any{
		"borrower": env.lender, "token": env.rwa, "amount": "1000000",
	})
	mustOK(t, resp, body)

	resp, body = env.post(t, "/v1/lending/borrow", map[string]any{
		"borrower": env.lender, "asset": "USDC", "amount": "100000",
	})
	mustOK(t, resp, body)

	resp, body = env.get(t, "/v1/lending/positions/"+env.lender)
	mustOK(t, resp, body)
	if body["debtAsset"] != "USDC" {
		t.Fatalf("unexpected position: %v", body)
	}
	if body["borrowerShares"] != "100000" {
		t.Fatalf("unexpected borrower shares: %v", body)
	}

	resp, body = env.get(t, "/v1/lending/positions/"+env.lender+"/health")
	mustOK(t, resp, body)
	hf, ok := body["healthFactor"].(float64)
	if !ok || hf < float64(lending.MinHealthFactor) {
		t.Fatalf("unexpected health factor: %v", body)
	}

	// Draining the reserve entirely is rejected.
	resp, body = env.post(t, "/v1/lending/borrow", map[string]any{
		"borrower": env.lender, "asset": "USDC", "amount": "900000",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %v", resp.StatusCode, body)
	}
}

func TestGatewayRejectsMalformedRequests(t *testing.T) {
	env := newGatewayEnv(t)
	env.bootstrap(t)

	resp, body := env.post(t, "/v1/lending/supply", map[string]any{
		"supplier": "not-an-address", "asset": "USDC", "amount": "100",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad address, got %d: %v", resp.StatusCode, body)
	}

	resp, body = env.post(t, "/v1/lending/supply", map[string]any{
		"supplier": env.lender, "asset": "USDC", "amount": "12.5",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad amount, got %d: %v", resp.StatusCode, body)
	}

	resp, body = env.get(t, "/v1/lending/reserves/UNKNOWN")
	mustOK(t, resp, body)
	if body["poolBalance"] != "0" {
		t.Fatalf("expected empty reserve view: %v", body)
	}
}
