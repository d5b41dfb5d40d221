package lending

import (
	"math/big"

	"github.com/akintewe/Neko-Oracle-RWA/crypto"
)

// collateralFactorBps resolves the configured factor for an RWA token,
// falling back to the default when none was set.
func (e *Engine) collateralFactorBps(token crypto.Address) (uint32, error) {
	factor, ok, err := e.state.LendingCollateralFactor(token)
	if err != nil {
		return 0, err
	}
	if !ok {
		return defaultCollateralFactorBps, nil
	}
	return factor, nil
}

// collateralValues prices every collateral entry of the position through the
// RWA oracle and returns the raw USD value alongside the collateral-factor
// adjusted value.
func (e *Engine) collateralValues(position *Position) (raw, adjusted *big.Int, err error) {
	raw = big.NewInt(0)
	adjusted = big.NewInt(0)
	for _, entry := range position.Collateral {
		if entry.Amount == nil || entry.Amount.Sign() == 0 {
			continue
		}
		token := keyAddress(entry.Token, crypto.RWAPrefix)
		price, decimals, err := e.fetchPrice(e.rwaOracle, token.String())
		if err != nil {
			return nil, nil, err
		}
		value, err := usdValue(entry.Amount, price.Price, decimals, oraclePriceDecimals)
		if err != nil {
			return nil, nil, err
		}
		factor, err := e.collateralFactorBps(token)
		if err != nil {
			return nil, nil, err
		}
		raw.Add(raw, value)
		weighted := new(big.Int).Mul(value, big.NewInt(int64(factor)))
		adjusted.Add(adjusted, weighted.Quo(weighted, bigBasisPoints))
	}
	return raw, adjusted, nil
}

// debtAmounts returns the position's outstanding debt in underlying units and
// its USD value through the reflector oracle. Both are zero for a debt-free
// position.
func (e *Engine) debtAmounts(position *Position, reserve *Reserve) (amount, value *big.Int, err error) {
	if position.DebtAsset == "" || position.BorrowerShares.Sign() == 0 {
		return big.NewInt(0), big.NewInt(0), nil
	}
	amount, err = toBorrowerAmount(position.BorrowerShares, reserve.BorrowerRate)
	if err != nil {
		return nil, nil, err
	}
	price, decimals, err := e.fetchPrice(e.refOracle, position.DebtAsset)
	if err != nil {
		return nil, nil, err
	}
	value, err = usdValue(amount, price.Price, decimals, oraclePriceDecimals)
	if err != nil {
		return nil, nil, err
	}
	return amount, value, nil
}

// Borrow draws amount of the asset against the borrower's collateral. The
// pool must be active, a position may carry debt in only one asset, and the
// draw must leave the borrow limit unconsumed, utilization below 100% and the
// health factor at or above the minimum.
func (e *Engine) Borrow(borrower crypto.Address, asset string, amount *big.Int) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	pool, err := e.loadPool()
	if err != nil {
		return err
	}
	switch pool.State {
	case PoolFrozen:
		return ErrPoolFrozen
	case PoolOnIce:
		return ErrPoolOnIce
	}
	if err := e.AccrueInterest(asset); err != nil {
		return err
	}
	reserve, err := e.loadReserve(asset)
	if err != nil {
		return err
	}
	position, err := e.loadPosition(borrower)
	if err != nil {
		return err
	}
	if position.DebtAsset != "" && position.DebtAsset != asset {
		return ErrDebtAssetAlreadySet
	}
	if len(position.Collateral) == 0 {
		return ErrInsufficientCollateral
	}
	if amount.Cmp(reserve.PoolBalance) > 0 {
		return ErrInsufficientLiquidity
	}

	_, adjustedCollateral, err := e.collateralValues(position)
	if err != nil {
		return err
	}
	_, currentDebtValue, err := e.debtAmounts(position, reserve)
	if err != nil {
		return err
	}
	borrowLimit := new(big.Int).Sub(adjustedCollateral, currentDebtValue)
	price, decimals, err := e.fetchPrice(e.refOracle, asset)
	if err != nil {
		return err
	}
	newDebtValue, err := usdValue(amount, price.Price, decimals, oraclePriceDecimals)
	if err != nil {
		return err
	}
	if newDebtValue.Cmp(borrowLimit) > 0 {
		return ErrInsufficientBorrowLimit
	}

	shares, err := toBorrowerShares(amount, reserve.BorrowerRate)
	if err != nil {
		return err
	}
	reserve.BorrowerSupply = new(big.Int).Add(reserve.BorrowerSupply, shares)
	reserve.PoolBalance = new(big.Int).Sub(reserve.PoolBalance, amount)
	position.DebtAsset = asset
	position.BorrowerShares = new(big.Int).Add(position.BorrowerShares, shares)
	position.LastUpdate = e.now()

	totalSupply, err := toLenderAmount(reserve.LenderSupply, reserve.LenderRate)
	if err != nil {
		return err
	}
	totalLiabilities, err := toBorrowerAmount(reserve.BorrowerSupply, reserve.BorrowerRate)
	if err != nil {
		return err
	}
	if totalLiabilities.Cmp(totalSupply) >= 0 {
		return ErrInvalidUtilization
	}
	healthFactor, err := e.healthFactor(position, reserve)
	if err != nil {
		return err
	}
	if healthFactor < MinHealthFactor {
		return ErrHealthFactorTooLow
	}

	// Disburse before persisting so a rejected transfer leaves no debt on
	// the position.
	if err := e.transferOut(asset, borrower, amount); err != nil {
		return err
	}
	if err := e.state.LendingPutReserve(asset, reserve); err != nil {
		return err
	}
	if err := e.state.LendingPutPosition(borrower, position); err != nil {
		return err
	}
	e.emit(newBorrowEvent(borrower, asset, amount, shares, healthFactor))
	return nil
}

// Repay burns up to shares of the borrower's debt shares, clamping the burn
// to the outstanding balance, and collects the floor-converted underlying
// amount. Allowed in every pool state. Returns the amount actually repaid.
func (e *Engine) Repay(borrower crypto.Address, asset string, shares *big.Int) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if shares == nil || shares.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if _, err := e.loadPool(); err != nil {
		return nil, err
	}
	if err := e.AccrueInterest(asset); err != nil {
		return nil, err
	}
	reserve, err := e.loadReserve(asset)
	if err != nil {
		return nil, err
	}
	position, err := e.loadPosition(borrower)
	if err != nil {
		return nil, err
	}
	if position.DebtAsset != asset || position.BorrowerShares.Sign() == 0 {
		return nil, ErrDebtAssetNotSet
	}
	burned := cloneBigInt(shares)
	if burned.Cmp(position.BorrowerShares) > 0 {
		burned = new(big.Int).Set(position.BorrowerShares)
	}
	repaid, err := toBorrowerAmount(burned, reserve.BorrowerRate)
	if err != nil {
		return nil, err
	}
	if repaid.Sign() == 0 {
		return nil, ErrInvalidAmount
	}
	if err := e.transferIn(asset, borrower, repaid); err != nil {
		return nil, err
	}
	reserve.BorrowerSupply = new(big.Int).Sub(reserve.BorrowerSupply, burned)
	if reserve.BorrowerSupply.Sign() < 0 {
		reserve.BorrowerSupply = big.NewInt(0)
	}
	reserve.PoolBalance = new(big.Int).Add(reserve.PoolBalance, repaid)
	position.BorrowerShares = new(big.Int).Sub(position.BorrowerShares, burned)
	if position.BorrowerShares.Sign() <= 0 {
		position.BorrowerShares = big.NewInt(0)
		position.DebtAsset = ""
	}
	position.LastUpdate = e.now()
	if err := e.state.LendingPutReserve(asset, reserve); err != nil {
		return nil, err
	}
	if err := e.state.LendingPutPosition(borrower, position); err != nil {
		return nil, err
	}
	e.emit(newRepayEvent(borrower, asset, repaid, burned))
	return repaid, nil
}

// BorrowLimit reports the USD headroom the borrower can still draw against,
// zero when the position is already past its limit.
func (e *Engine) BorrowLimit(borrower crypto.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	position, err := e.loadPosition(borrower)
	if err != nil {
		return nil, err
	}
	_, adjusted, err := e.collateralValues(position)
	if err != nil {
		return nil, err
	}
	if position.DebtAsset == "" || position.BorrowerShares.Sign() == 0 {
		return adjusted, nil
	}
	reserve, err := e.loadReserve(position.DebtAsset)
	if err != nil {
		return nil, err
	}
	_, debtValue, err := e.debtAmounts(position, reserve)
	if err != nil {
		return nil, err
	}
	limit := new(big.Int).Sub(adjusted, debtValue)
	if limit.Sign() < 0 {
		return big.NewInt(0), nil
	}
	return limit, nil
}
