package lending

import (
	"math/big"

	"github.com/akintewe/Neko-Oracle-RWA/crypto"
)

// Initialize creates the global pool record. The pool starts on ice: with no
// backstop capital staked the threshold floor is unmet, so borrowing stays
// disabled until first-loss capital arrives.
func (e *Engine) Initialize(admin, rwaOracle, refOracle crypto.Address, backstopThreshold *big.Int, backstopTakeRateBps uint32) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if _, ok, err := e.state.LendingGetPool(); err != nil {
		return err
	} else if ok {
		return ErrAlreadyInitialized
	}
	if backstopTakeRateBps > BasisPoints {
		return ErrInvalidAmount
	}
	if backstopThreshold == nil || backstopThreshold.Sign() < 0 {
		return ErrInvalidAmount
	}
	pool := &Pool{
		State:               PoolOnIce,
		Admin:               addressKey(admin),
		RWAOracle:           addressKey(rwaOracle),
		ReflectorOracle:     addressKey(refOracle),
		BackstopThreshold:   cloneBigInt(backstopThreshold),
		BackstopTakeRateBps: backstopTakeRateBps,
		BackstopTotal:       big.NewInt(0),
	}
	if err := e.state.LendingPutPool(pool); err != nil {
		return err
	}
	e.emit(newPoolInitializedEvent(admin, pool))
	return nil
}

func (e *Engine) requireAdmin(caller crypto.Address) (*Pool, error) {
	pool, err := e.loadPool()
	if err != nil {
		return nil, err
	}
	if addressKey(caller) != pool.Admin {
		return nil, ErrNotAuthorized
	}
	return pool, nil
}

// SetCollateralFactor configures an RWA token's collateral factor in basis
// points. A zero factor disables the token as fresh collateral.
func (e *Engine) SetCollateralFactor(caller crypto.Address, token crypto.Address, factorBps uint32) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if _, err := e.requireAdmin(caller); err != nil {
		return err
	}
	if factorBps > BasisPoints {
		return ErrInvalidCollateralFactor
	}
	if err := e.state.LendingSetCollateralFactor(token, factorBps); err != nil {
		return err
	}
	e.emit(newCollateralFactorSetEvent(token, factorBps))
	return nil
}

// SetInterestRateParams configures the asset's rate curve. Interest accrues
// under the old parameters first so the change never backdates.
func (e *Engine) SetInterestRateParams(caller crypto.Address, asset string, params InterestRateParams) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if _, err := e.requireAdmin(caller); err != nil {
		return err
	}
	if params.TargetUtilization == 0 || params.TargetUtilization >= 9500 {
		return ErrInvalidInterestRateParams
	}
	if params.Reactivity == 0 {
		return ErrInvalidInterestRateParams
	}
	if err := e.AccrueInterest(asset); err != nil {
		return err
	}
	reserve, err := e.loadReserve(asset)
	if err != nil {
		return err
	}
	reserve.Params = params
	reserve.ParamsSet = true
	if err := e.state.LendingPutReserve(asset, reserve); err != nil {
		return err
	}
	e.emit(newInterestParamsSetEvent(asset, params))
	return nil
}

// SetPoolState overrides the pool's operational state. The next backstop
// mutation recomputes it from the queue thresholds again.
func (e *Engine) SetPoolState(caller crypto.Address, state PoolState) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	pool, err := e.requireAdmin(caller)
	if err != nil {
		return err
	}
	if state == pool.State {
		return nil
	}
	previous := pool.State
	pool.State = state
	if err := e.state.LendingPutPool(pool); err != nil {
		return err
	}
	e.emit(newPoolStateChangedEvent(previous, state, nil))
	return nil
}

// SetBackstopThreshold updates the capital floor below which the pool goes on
// ice, then recomputes the state.
func (e *Engine) SetBackstopThreshold(caller crypto.Address, threshold *big.Int) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	pool, err := e.requireAdmin(caller)
	if err != nil {
		return err
	}
	if threshold == nil || threshold.Sign() < 0 {
		return ErrInvalidAmount
	}
	pool.BackstopThreshold = cloneBigInt(threshold)
	e.recomputePoolState(pool)
	return e.state.LendingPutPool(pool)
}

// SetBackstopTakeRate updates the share of accrued interest diverted to the
// backstop, in basis points.
func (e *Engine) SetBackstopTakeRate(caller crypto.Address, bps uint32) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	pool, err := e.requireAdmin(caller)
	if err != nil {
		return err
	}
	if bps > BasisPoints {
		return ErrInvalidAmount
	}
	pool.BackstopTakeRateBps = bps
	return e.state.LendingPutPool(pool)
}

// SetTokenContract registers the token ledger address backing an asset
// symbol.
func (e *Engine) SetTokenContract(caller crypto.Address, asset string, token crypto.Address) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if _, err := e.requireAdmin(caller); err != nil {
		return err
	}
	if asset == "" || token.IsZero() {
		return ErrInvalidAmount
	}
	return e.state.LendingSetTokenContract(asset, token)
}

// SetBackstopToken registers the token staked into the backstop.
func (e *Engine) SetBackstopToken(caller crypto.Address, token crypto.Address) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	pool, err := e.requireAdmin(caller)
	if err != nil {
		return err
	}
	if token.IsZero() {
		return ErrInvalidAmount
	}
	pool.BackstopToken = addressKey(token)
	pool.BackstopTokenSet = true
	return e.state.LendingPutPool(pool)
}
