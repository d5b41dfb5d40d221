package lending

import (
	"math/big"
)

// PriceSource is the boundary to a SEP-40 style price oracle. LastPrice
// returns the most recent quote for the asset reference (an RWA token address
// string or a crypto asset symbol) or ok=false when the oracle does not track
// the asset. Decimals reports the oracle's quote precision.
type PriceSource interface {
	LastPrice(ref string) (PriceData, bool, error)
	Decimals() (uint32, error)
}

// fetchPrice pulls and validates a quote: the price must be positive and no
// older than 24 hours relative to the engine clock.
func (e *Engine) fetchPrice(source PriceSource, ref string) (PriceData, uint32, error) {
	if source == nil {
		return PriceData{}, 0, ErrOracleUnavailable
	}
	data, ok, err := source.LastPrice(ref)
	if err != nil || !ok {
		return PriceData{}, 0, ErrOracleUnavailable
	}
	if data.Price == nil || data.Price.Sign() <= 0 {
		return PriceData{}, 0, ErrOraclePrice
	}
	now := e.now()
	if data.Timestamp+maxOraclePriceAge < now {
		return PriceData{}, 0, ErrOraclePrice
	}
	decimals, err := source.Decimals()
	if err != nil {
		return PriceData{}, 0, ErrOracleUnavailable
	}
	return data, decimals, nil
}

// usdValue converts a token amount to its USD value, normalizing the amount
// and price to a shared decimal basis before multiplying.
func usdValue(amount, price *big.Int, assetDecimals, priceDecimals uint32) (*big.Int, error) {
	if amount == nil || price == nil {
		return nil, ErrArithmetic
	}
	minDecimals := assetDecimals
	if priceDecimals < minDecimals {
		minDecimals = priceDecimals
	}
	maxDecimals := assetDecimals
	if priceDecimals > maxDecimals {
		maxDecimals = priceDecimals
	}

	scaleMin := pow10(minDecimals)
	normalizedAmount := new(big.Int).Mul(amount, scaleMin)
	normalizedPrice := new(big.Int).Mul(price, scaleMin)

	value := new(big.Int).Mul(normalizedAmount, normalizedPrice)
	return value.Quo(value, pow10(maxDecimals)), nil
}

func pow10(n uint32) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
