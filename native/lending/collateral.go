package lending

import (
	"math/big"

	"github.com/akintewe/Neko-Oracle-RWA/crypto"
)

// AddCollateral pledges amount of the RWA token into the borrower's position.
// The token must carry a non-zero collateral factor so worthless collateral
// cannot inflate the position.
func (e *Engine) AddCollateral(borrower crypto.Address, token crypto.Address, amount *big.Int) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if _, err := e.loadPool(); err != nil {
		return err
	}
	factor, err := e.collateralFactorBps(token)
	if err != nil {
		return err
	}
	if factor == 0 {
		return ErrInvalidCollateralFactor
	}
	position, err := e.loadPosition(borrower)
	if err != nil {
		return err
	}
	if e.tokens == nil {
		return ErrTokenContractNotSet
	}
	if err := e.tokens.Transfer(token, borrower, e.poolAddress, amount); err != nil {
		return err
	}
	held := position.CollateralAmount(token)
	position.SetCollateral(token, new(big.Int).Add(held, amount))
	position.LastUpdate = e.now()
	if err := e.state.LendingPutPosition(borrower, position); err != nil {
		return err
	}
	e.emit(newCollateralAddedEvent(borrower, token, amount))
	return nil
}

// RemoveCollateral releases amount of the RWA token back to the borrower.
// When the position carries debt, the reduced collateral is simulated first
// and the removal is rejected unless the remaining collateral still covers
// the debt value and keeps the health factor at or above the minimum.
func (e *Engine) RemoveCollateral(borrower crypto.Address, token crypto.Address, amount *big.Int) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if _, err := e.loadPool(); err != nil {
		return err
	}
	position, err := e.loadPosition(borrower)
	if err != nil {
		return err
	}
	held := position.CollateralAmount(token)
	if held.Cmp(amount) < 0 {
		return ErrInsufficientCollateral
	}

	if position.DebtAsset != "" && position.BorrowerShares.Sign() > 0 {
		if err := e.AccrueInterest(position.DebtAsset); err != nil {
			return err
		}
		reserve, err := e.loadReserve(position.DebtAsset)
		if err != nil {
			return err
		}
		// Check the reduction against a copy; stored state is untouched
		// until the checks pass.
		trial := &Position{
			Collateral:     append([]CollateralEntry(nil), position.Collateral...),
			DebtAsset:      position.DebtAsset,
			BorrowerShares: position.BorrowerShares,
		}
		trial.SetCollateral(token, new(big.Int).Sub(held, amount))
		_, adjusted, err := e.collateralValues(trial)
		if err != nil {
			return err
		}
		_, debtValue, err := e.debtAmounts(trial, reserve)
		if err != nil {
			return err
		}
		if debtValue.Cmp(adjusted) > 0 {
			return ErrInsufficientBorrowLimit
		}
		healthFactor, err := e.healthFactor(trial, reserve)
		if err != nil {
			return err
		}
		if healthFactor < MinHealthFactor {
			return ErrHealthFactorTooLow
		}
	}

	// Release the tokens before persisting so a rejected transfer leaves
	// the pledge intact.
	if e.tokens == nil {
		return ErrTokenContractNotSet
	}
	if err := e.tokens.Transfer(token, e.poolAddress, borrower, amount); err != nil {
		return err
	}
	position.SetCollateral(token, new(big.Int).Sub(held, amount))
	position.LastUpdate = e.now()
	if err := e.state.LendingPutPosition(borrower, position); err != nil {
		return err
	}
	e.emit(newCollateralRemovedEvent(borrower, token, amount))
	return nil
}
