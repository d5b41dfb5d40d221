package lending

import "math/big"

// Share conversions between underlying amounts and rebasing claim tokens.
// Rounding always favors the protocol: lender shares are minted with floor,
// borrower shares with ceil, and both redemption directions floor. Rates use
// the RateScale fixed point and must be positive.

// toLenderShares floors amount × SCALE / rate.
func toLenderShares(amount, rate *big.Int) (*big.Int, error) {
	if rate == nil || rate.Sign() <= 0 {
		return nil, ErrArithmetic
	}
	shares := new(big.Int).Mul(cloneBigInt(amount), bigRateScale)
	return shares.Quo(shares, rate), nil
}

// toLenderAmount floors shares × rate / SCALE.
func toLenderAmount(shares, rate *big.Int) (*big.Int, error) {
	if rate == nil || rate.Sign() <= 0 {
		return nil, ErrArithmetic
	}
	amount := new(big.Int).Mul(cloneBigInt(shares), rate)
	return amount.Quo(amount, bigRateScale), nil
}

// toBorrowerShares ceils amount × SCALE / rate so the borrower is charged at
// least the equivalent amount.
func toBorrowerShares(amount, rate *big.Int) (*big.Int, error) {
	if rate == nil || rate.Sign() <= 0 {
		return nil, ErrArithmetic
	}
	numerator := new(big.Int).Mul(cloneBigInt(amount), bigRateScale)
	numerator.Add(numerator, rate)
	numerator.Sub(numerator, big.NewInt(1))
	return numerator.Quo(numerator, rate), nil
}

// toBorrowerAmount floors shares × rate / SCALE.
func toBorrowerAmount(shares, rate *big.Int) (*big.Int, error) {
	if rate == nil || rate.Sign() <= 0 {
		return nil, ErrArithmetic
	}
	amount := new(big.Int).Mul(cloneBigInt(shares), rate)
	return amount.Quo(amount, bigRateScale), nil
}

// mulDiv computes a × b / div with floor rounding, rejecting zero divisors.
func mulDiv(a, b, div *big.Int) (*big.Int, error) {
	if div == nil || div.Sign() == 0 {
		return nil, ErrArithmetic
	}
	out := new(big.Int).Mul(cloneBigInt(a), b)
	return out.Quo(out, div), nil
}
