package oracle

import (
	"math/big"
	"sync"
	"time"

	"github.com/akintewe/Neko-Oracle-RWA/native/lending"
)

// Static is an in-process price source fed by operator updates (the gateway's
// admin surface or a boot-time fixture). It satisfies the lending engine's
// price boundary; staleness and positivity checks stay with the engine.
type Static struct {
	mu       sync.RWMutex
	decimals uint32
	prices   map[string]lending.PriceData
	nowFn    func() uint64
}

// NewStatic builds an empty price source quoting at the given precision.
func NewStatic(decimals uint32) *Static {
	return &Static{
		decimals: decimals,
		prices:   make(map[string]lending.PriceData),
		nowFn:    func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// SetNowFunc overrides the timestamp applied by Set.
func (s *Static) SetNowFunc(now func() uint64) {
	if s == nil || now == nil {
		return
	}
	s.mu.Lock()
	s.nowFn = now
	s.mu.Unlock()
}

// Set records a quote for the asset reference at the current time.
func (s *Static) Set(ref string, price *big.Int) {
	if s == nil || price == nil {
		return
	}
	s.mu.Lock()
	s.prices[ref] = lending.PriceData{Price: new(big.Int).Set(price), Timestamp: s.nowFn()}
	s.mu.Unlock()
}

// SetAt records a quote with an explicit timestamp.
func (s *Static) SetAt(ref string, price *big.Int, timestamp uint64) {
	if s == nil || price == nil {
		return
	}
	s.mu.Lock()
	s.prices[ref] = lending.PriceData{Price: new(big.Int).Set(price), Timestamp: timestamp}
	s.mu.Unlock()
}

// LastPrice implements lending.PriceSource.
func (s *Static) LastPrice(ref string) (lending.PriceData, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.prices[ref]
	if !ok {
		return lending.PriceData{}, false, nil
	}
	return lending.PriceData{Price: new(big.Int).Set(data.Price), Timestamp: data.Timestamp}, true, nil
}

// Decimals implements lending.PriceSource.
func (s *Static) Decimals() (uint32, error) {
	return s.decimals, nil
}

// Refs lists the asset references currently quoted.
func (s *Static) Refs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	refs := make([]string, 0, len(s.prices))
	for ref := range s.prices {
		refs = append(refs, ref)
	}
	return refs
}
