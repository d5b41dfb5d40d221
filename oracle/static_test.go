package oracle

import (
	"math/big"
	"testing"
)

func TestStaticQuotes(t *testing.T) {
	source := NewStatic(7)
	clock := uint64(1_700_000_000)
	source.SetNowFunc(func() uint64 { return clock })

	if _, ok, err := source.LastPrice("NVDA"); ok || err != nil {
		t.Fatalf("unset ref: ok=%v err=%v", ok, err)
	}
	source.Set("NVDA", big.NewInt(9_500_000_000))
	data, ok, err := source.LastPrice("NVDA")
	if err != nil || !ok {
		t.Fatalf("last price: ok=%v err=%v", ok, err)
	}
	if data.Price.Cmp(big.NewInt(9_500_000_000)) != 0 || data.Timestamp != clock {
		t.Fatalf("quote = %s@%d, want 9500000000@%d", data.Price, data.Timestamp, clock)
	}
	decimals, err := source.Decimals()
	if err != nil || decimals != 7 {
		t.Fatalf("decimals = %d err=%v, want 7", decimals, err)
	}

	// Stored quotes are copies; mutating the returned price leaves the
	// source untouched.
	data.Price.SetInt64(1)
	again, _, _ := source.LastPrice("NVDA")
	if again.Price.Cmp(big.NewInt(9_500_000_000)) != 0 {
		t.Fatalf("quote mutated through copy: %s", again.Price)
	}
}
