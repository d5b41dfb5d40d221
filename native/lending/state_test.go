package lending

import (
	"math/big"
	"testing"

	"github.com/akintewe/Neko-Oracle-RWA/crypto"
	"github.com/akintewe/Neko-Oracle-RWA/storage"
)

func TestKVStateRoundTrip(t *testing.T) {
	state := NewKVState(storage.NewMemDB())
	borrower := testAddr(crypto.NekoPrefix, 0x07)
	token := testAddr(crypto.RWAPrefix, 0x17)

	if _, ok, err := state.LendingGetPool(); err != nil || ok {
		t.Fatalf("empty pool: ok=%v err=%v", ok, err)
	}
	pool := &Pool{
		State:               PoolOnIce,
		Admin:               addressKey(borrower),
		BackstopThreshold:   big.NewInt(1_000),
		BackstopTakeRateBps: 1_000,
		BackstopTotal:       big.NewInt(0),
		WithdrawalQueue: []WithdrawalRequest{
			{Depositor: addressKey(borrower), Amount: big.NewInt(42), QueuedAt: 7},
		},
	}
	if err := state.LendingPutPool(pool); err != nil {
		t.Fatalf("put pool: %v", err)
	}
	loaded, ok, err := state.LendingGetPool()
	if err != nil || !ok {
		t.Fatalf("get pool: ok=%v err=%v", ok, err)
	}
	if loaded.State != PoolOnIce || loaded.BackstopTakeRateBps != 1_000 {
		t.Fatalf("pool round trip mismatch: %+v", loaded)
	}
	if len(loaded.WithdrawalQueue) != 1 || loaded.WithdrawalQueue[0].Amount.Cmp(big.NewInt(42)) != 0 {
		t.Fatalf("queue round trip mismatch: %+v", loaded.WithdrawalQueue)
	}

	position := &Position{
		DebtAsset:      "USDC",
		BorrowerShares: big.NewInt(123),
		CreatedAt:      1,
		LastUpdate:     2,
	}
	position.SetCollateral(token, big.NewInt(999))
	if err := state.LendingPutPosition(borrower, position); err != nil {
		t.Fatalf("put position: %v", err)
	}
	got, ok, err := state.LendingGetPosition(borrower)
	if err != nil || !ok {
		t.Fatalf("get position: ok=%v err=%v", ok, err)
	}
	if got.DebtAsset != "USDC" || got.CollateralAmount(token).Cmp(big.NewInt(999)) != 0 {
		t.Fatalf("position round trip mismatch: %+v", got)
	}

	if shares, err := state.LendingLenderShares("USDC", borrower); err != nil || shares.Sign() != 0 {
		t.Fatalf("empty lender shares = %s err=%v, want 0", shares, err)
	}
	if err := state.LendingSetLenderShares("USDC", borrower, big.NewInt(55)); err != nil {
		t.Fatalf("set lender shares: %v", err)
	}
	shares, err := state.LendingLenderShares("USDC", borrower)
	if err != nil || shares.Cmp(big.NewInt(55)) != 0 {
		t.Fatalf("lender shares = %s err=%v, want 55", shares, err)
	}

	var id [32]byte
	id[31] = 0x01
	if err := state.LendingSetActiveAuction(borrower, id); err != nil {
		t.Fatalf("set active auction: %v", err)
	}
	active, ok, err := state.LendingActiveAuction(borrower)
	if err != nil || !ok || active != id {
		t.Fatalf("active auction = %x ok=%v err=%v", active, ok, err)
	}
	if err := state.LendingClearActiveAuction(borrower); err != nil {
		t.Fatalf("clear active auction: %v", err)
	}
	if _, ok, err := state.LendingActiveAuction(borrower); err != nil || ok {
		t.Fatalf("cleared auction still present: ok=%v err=%v", ok, err)
	}

	if _, ok, err := state.LendingCollateralFactor(token); err != nil || ok {
		t.Fatalf("unset factor: ok=%v err=%v", ok, err)
	}
	if err := state.LendingSetCollateralFactor(token, 6_500); err != nil {
		t.Fatalf("set factor: %v", err)
	}
	factor, ok, err := state.LendingCollateralFactor(token)
	if err != nil || !ok || factor != 6_500 {
		t.Fatalf("factor = %d ok=%v err=%v, want 6500", factor, ok, err)
	}

	if err := state.LendingSetTokenContract("USDC", token); err != nil {
		t.Fatalf("set token contract: %v", err)
	}
	contract, ok, err := state.LendingTokenContract("USDC")
	if err != nil || !ok || !contract.Equal(token) {
		t.Fatalf("token contract = %s ok=%v err=%v", contract, ok, err)
	}
}
