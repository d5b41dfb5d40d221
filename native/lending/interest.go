package lending

import (
	"math/big"
)

var (
	bigSecondsPerYear = big.NewInt(SecondsPerYear)
	utilCeilingBps    = big.NewInt(9500)
	utilCeilingSpan   = big.NewInt(500)
)

// AccrueInterest advances the asset's lender and borrower exchange rates by
// the interest earned since the last accrual and drifts the rate modifier
// toward the target utilization. Safe to call repeatedly; a second call in the
// same second is a no-op.
func (e *Engine) AccrueInterest(asset string) error {
	if e.state == nil {
		return ErrNilState
	}
	reserve, err := e.loadReserve(asset)
	if err != nil {
		return err
	}
	now := e.now()
	if now <= reserve.LastAccrual {
		return nil
	}
	elapsed := now - reserve.LastAccrual

	if reserve.LenderSupply.Sign() == 0 {
		reserve.LastAccrual = now
		return e.state.LendingPutReserve(asset, reserve)
	}
	totalSupply, err := toLenderAmount(reserve.LenderSupply, reserve.LenderRate)
	if err != nil {
		return err
	}
	totalLiabilities, err := toBorrowerAmount(reserve.BorrowerSupply, reserve.BorrowerRate)
	if err != nil {
		return err
	}
	utilization := utilizationBps(totalSupply, totalLiabilities)
	if utilization.Sign() == 0 {
		reserve.LastAccrual = now
		return e.state.LendingPutReserve(asset, reserve)
	}

	params := reserve.Params
	if !reserve.ParamsSet {
		params = DefaultInterestRateParams()
	}
	rate := interestRateBps(params, utilization, reserve.RateModifier)
	reserve.RateModifier = nextRateModifier(params, utilization, reserve.RateModifier, elapsed)

	// Lender side: interest on outstanding liabilities, less the backstop take.
	accrued := new(big.Int).Mul(totalLiabilities, rate)
	accrued.Mul(accrued, new(big.Int).SetUint64(elapsed))
	accrued.Quo(accrued, new(big.Int).Mul(bigSecondsPerYear, bigBasisPoints))

	pool, err := e.loadPool()
	if err != nil {
		return err
	}
	backstopTake := new(big.Int).Mul(accrued, big.NewInt(int64(pool.BackstopTakeRateBps)))
	backstopTake.Quo(backstopTake, bigBasisPoints)
	reserve.BackstopCredit = new(big.Int).Add(reserve.BackstopCredit, backstopTake)

	newSupply := new(big.Int).Add(totalSupply, new(big.Int).Sub(accrued, backstopTake))
	newLenderRate := new(big.Int).Mul(newSupply, bigRateScale)
	newLenderRate.Quo(newLenderRate, reserve.LenderSupply)
	reserve.LenderRate = newLenderRate

	// Borrower side: multiplicative accrual factor on the borrower rate.
	factor := new(big.Int).Mul(rate, new(big.Int).SetUint64(elapsed))
	factor.Mul(factor, bigRateScale)
	factor.Quo(factor, new(big.Int).Mul(bigSecondsPerYear, bigBasisPoints))
	factor.Add(factor, bigRateScale)
	newBorrowerRate := new(big.Int).Mul(reserve.BorrowerRate, factor)
	newBorrowerRate.Quo(newBorrowerRate, bigRateScale)
	reserve.BorrowerRate = newBorrowerRate

	reserve.LastAccrual = now
	if err := e.state.LendingPutReserve(asset, reserve); err != nil {
		return err
	}
	e.emit(newInterestAccruedEvent(asset, rate, accrued, backstopTake, reserve))
	return nil
}

// utilizationBps returns borrowed/supplied in basis points, capped at BPS.
// A zero supply reads as zero utilization.
func utilizationBps(totalSupply, totalLiabilities *big.Int) *big.Int {
	if totalSupply == nil || totalSupply.Sign() <= 0 || totalLiabilities == nil || totalLiabilities.Sign() <= 0 {
		return big.NewInt(0)
	}
	util := new(big.Int).Mul(totalLiabilities, bigBasisPoints)
	util.Quo(util, totalSupply)
	if util.Cmp(bigBasisPoints) > 0 {
		return new(big.Int).Set(bigBasisPoints)
	}
	return util
}

// interestRateBps evaluates the 3-segment kinked curve at the given
// utilization and scales it by the asset's rate modifier. The result is an
// annualized rate in basis points.
func interestRateBps(params InterestRateParams, utilization, rateModifier *big.Int) *big.Int {
	target := big.NewInt(int64(params.TargetUtilization))
	base := big.NewInt(int64(params.BaseRate))
	slope1 := big.NewInt(int64(params.Slope1))

	curve := new(big.Int)
	switch {
	case utilization.Cmp(target) <= 0:
		segment := new(big.Int).Mul(utilization, slope1)
		segment.Quo(segment, target)
		curve.Add(base, segment)
	case utilization.Cmp(utilCeilingBps) <= 0:
		span := new(big.Int).Sub(utilCeilingBps, target)
		segment := new(big.Int).Sub(utilization, target)
		segment.Mul(segment, big.NewInt(int64(params.Slope2)))
		segment.Quo(segment, span)
		curve.Add(base, slope1)
		curve.Add(curve, segment)
	default:
		segment := new(big.Int).Sub(utilization, utilCeilingBps)
		segment.Mul(segment, big.NewInt(int64(params.Slope3)))
		segment.Quo(segment, utilCeilingSpan)
		curve.Add(base, slope1)
		curve.Add(curve, big.NewInt(int64(params.Slope2)))
		curve.Add(curve, segment)
	}

	rate := new(big.Int).Mul(rateModifier, curve)
	return rate.Quo(rate, bigRateScale)
}

// nextRateModifier drifts the modifier by elapsed×(U−target)×reactivity/BPS,
// clamped to [0.1×SCALE, 10×SCALE]. big.Int Quo truncates toward zero, which
// matches the intended rounding on both sides of the target.
func nextRateModifier(params InterestRateParams, utilization, rateModifier *big.Int, elapsed uint64) *big.Int {
	utilError := new(big.Int).Sub(utilization, big.NewInt(int64(params.TargetUtilization)))
	utilError.Mul(utilError, new(big.Int).SetUint64(elapsed))
	delta := new(big.Int).Mul(utilError, big.NewInt(int64(params.Reactivity)))
	delta.Quo(delta, bigBasisPoints)

	next := new(big.Int).Add(rateModifier, delta)
	if next.Cmp(rateModifierMax) > 0 {
		return new(big.Int).Set(rateModifierMax)
	}
	if next.Cmp(rateModifierMin) < 0 {
		return new(big.Int).Set(rateModifierMin)
	}
	return next
}
