package lending

import (
	"math/big"
	"time"

	"github.com/akintewe/Neko-Oracle-RWA/core/events"
	"github.com/akintewe/Neko-Oracle-RWA/core/types"
	"github.com/akintewe/Neko-Oracle-RWA/crypto"
)

const moduleName = "lending"

// engineState is the persistence boundary the engine mutates through. The
// records are decomposed so each operation touches only the keys it needs.
type engineState interface {
	LendingGetPool() (*Pool, bool, error)
	LendingPutPool(pool *Pool) error
	LendingGetReserve(asset string) (*Reserve, bool, error)
	LendingPutReserve(asset string, reserve *Reserve) error
	LendingGetPosition(addr crypto.Address) (*Position, bool, error)
	LendingPutPosition(addr crypto.Address, position *Position) error
	LendingLenderShares(asset string, addr crypto.Address) (*big.Int, error)
	LendingSetLenderShares(asset string, addr crypto.Address, shares *big.Int) error
	LendingGetAuction(id [32]byte) (*Auction, bool, error)
	LendingPutAuction(auction *Auction) error
	LendingActiveAuction(borrower crypto.Address) ([32]byte, bool, error)
	LendingSetActiveAuction(borrower crypto.Address, id [32]byte) error
	LendingClearActiveAuction(borrower crypto.Address) error
	LendingGetBackstopDeposit(addr crypto.Address) (*BackstopDeposit, bool, error)
	LendingPutBackstopDeposit(addr crypto.Address, deposit *BackstopDeposit) error
	LendingCollateralFactor(token crypto.Address) (uint32, bool, error)
	LendingSetCollateralFactor(token crypto.Address, factorBps uint32) error
	LendingTokenContract(asset string) (crypto.Address, bool, error)
	LendingSetTokenContract(asset string, token crypto.Address) error
}

// TokenBackend moves underlying tokens between accounts on behalf of the
// pool. Implemented by the in-process token ledger.
type TokenBackend interface {
	Transfer(token, from, to crypto.Address, amount *big.Int) error
}

// Engine orchestrates the state transitions of the lending pool: rebasing
// deposit accounting, collateralized borrowing, Dutch-auction liquidation and
// the backstop state machine.
type Engine struct {
	state       engineState
	tokens      TokenBackend
	rwaOracle   PriceSource
	refOracle   PriceSource
	poolAddress crypto.Address
	emitter     events.Emitter
	nowFn       func() uint64
}

// NewEngine constructs a lending engine holding pool funds at poolAddr.
func NewEngine(poolAddr crypto.Address) *Engine {
	return &Engine{
		poolAddress: poolAddr,
		emitter:     events.NoopEmitter{},
		nowFn:       func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// SetState wires the engine to the external persistence layer.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetTokens wires the engine to the token transfer backend.
func (e *Engine) SetTokens(tokens TokenBackend) {
	if e == nil {
		return
	}
	e.tokens = tokens
}

// SetRWAOracle configures the price source for RWA collateral tokens.
func (e *Engine) SetRWAOracle(source PriceSource) {
	if e == nil {
		return
	}
	e.rwaOracle = source
}

// SetReflectorOracle configures the price source for crypto debt assets.
func (e *Engine) SetReflectorOracle(source PriceSource) {
	if e == nil {
		return
	}
	e.refOracle = source
}

// SetEmitter configures the sink used for engine events. Passing nil resets
// the emitter to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if e == nil {
		return
	}
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the engine clock. Passing nil restores the real clock.
func (e *Engine) SetNowFunc(now func() uint64) {
	if e == nil {
		return
	}
	if now == nil {
		e.nowFn = func() uint64 { return uint64(time.Now().Unix()) }
		return
	}
	e.nowFn = now
}

// PoolAddress returns the account holding pooled funds.
func (e *Engine) PoolAddress() crypto.Address { return e.poolAddress }

func (e *Engine) now() uint64 {
	if e == nil || e.nowFn == nil {
		return uint64(time.Now().Unix())
	}
	return e.nowFn()
}

func (e *Engine) emit(evt *types.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) loadPool() (*Pool, error) {
	pool, ok, err := e.state.LendingGetPool()
	if err != nil {
		return nil, err
	}
	if !ok || pool == nil {
		return nil, ErrNotInitialized
	}
	if pool.BackstopThreshold == nil {
		pool.BackstopThreshold = big.NewInt(0)
	}
	if pool.BackstopTotal == nil {
		pool.BackstopTotal = big.NewInt(0)
	}
	return pool, nil
}

// loadReserve fetches the asset's rate state, creating the default record on
// first touch. Rates and the modifier start at exactly 1.0 and the accrual
// clock starts now, so the first accrual never backfills interest.
func (e *Engine) loadReserve(asset string) (*Reserve, error) {
	reserve, ok, err := e.state.LendingGetReserve(asset)
	if err != nil {
		return nil, err
	}
	if !ok || reserve == nil {
		return &Reserve{
			PoolBalance:    big.NewInt(0),
			LenderRate:     big.NewInt(RateScale),
			LenderSupply:   big.NewInt(0),
			BorrowerRate:   big.NewInt(RateScale),
			BorrowerSupply: big.NewInt(0),
			RateModifier:   big.NewInt(RateScale),
			BackstopCredit: big.NewInt(0),
			LastAccrual:    e.now(),
		}, nil
	}
	for _, field := range []**big.Int{
		&reserve.PoolBalance, &reserve.LenderSupply, &reserve.BorrowerSupply, &reserve.BackstopCredit,
	} {
		if *field == nil {
			*field = big.NewInt(0)
		}
	}
	for _, field := range []**big.Int{&reserve.LenderRate, &reserve.BorrowerRate, &reserve.RateModifier} {
		if *field == nil || (*field).Sign() == 0 {
			*field = big.NewInt(RateScale)
		}
	}
	return reserve, nil
}

// loadPosition fetches the borrower's position, creating an empty one when
// none exists. Positions persist at zero balances.
func (e *Engine) loadPosition(addr crypto.Address) (*Position, error) {
	position, ok, err := e.state.LendingGetPosition(addr)
	if err != nil {
		return nil, err
	}
	if !ok || position == nil {
		now := e.now()
		return &Position{
			BorrowerShares: big.NewInt(0),
			CreatedAt:      now,
			LastUpdate:     now,
		}, nil
	}
	if position.BorrowerShares == nil {
		position.BorrowerShares = big.NewInt(0)
	}
	return position, nil
}

func (e *Engine) tokenContract(asset string) (crypto.Address, error) {
	token, ok, err := e.state.LendingTokenContract(asset)
	if err != nil {
		return crypto.Address{}, err
	}
	if !ok {
		return crypto.Address{}, ErrTokenContractNotSet
	}
	return token, nil
}

func (e *Engine) transferIn(asset string, from crypto.Address, amount *big.Int) error {
	if e.tokens == nil {
		return ErrTokenContractNotSet
	}
	token, err := e.tokenContract(asset)
	if err != nil {
		return err
	}
	return e.tokens.Transfer(token, from, e.poolAddress, amount)
}

func (e *Engine) transferOut(asset string, to crypto.Address, amount *big.Int) error {
	if e.tokens == nil {
		return ErrTokenContractNotSet
	}
	token, err := e.tokenContract(asset)
	if err != nil {
		return err
	}
	return e.tokens.Transfer(token, e.poolAddress, to, amount)
}

// Deposit supplies amount of the asset to the pool and mints rebasing lender
// shares to the depositor. Rejected while the pool is frozen.
func (e *Engine) Deposit(lender crypto.Address, asset string, amount *big.Int) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	pool, err := e.loadPool()
	if err != nil {
		return nil, err
	}
	if pool.State == PoolFrozen {
		return nil, ErrPoolFrozen
	}
	if err := e.AccrueInterest(asset); err != nil {
		return nil, err
	}
	reserve, err := e.loadReserve(asset)
	if err != nil {
		return nil, err
	}
	shares, err := toLenderShares(amount, reserve.LenderRate)
	if err != nil {
		return nil, err
	}
	if shares.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	balance, err := e.state.LendingLenderShares(asset, lender)
	if err != nil {
		return nil, err
	}
	if err := e.transferIn(asset, lender, amount); err != nil {
		return nil, err
	}
	reserve.LenderSupply = new(big.Int).Add(reserve.LenderSupply, shares)
	reserve.PoolBalance = new(big.Int).Add(reserve.PoolBalance, amount)
	if err := e.state.LendingPutReserve(asset, reserve); err != nil {
		return nil, err
	}
	if err := e.state.LendingSetLenderShares(asset, lender, new(big.Int).Add(cloneBigInt(balance), shares)); err != nil {
		return nil, err
	}
	e.emit(newDepositEvent(lender, asset, amount, shares))
	return shares, nil
}

// Withdraw redeems up to amount of the asset for the lender, clamping the
// request to the lender's share balance. The redemption is rejected when it
// would leave the pool fully utilized or drain more than the uncommitted
// balance. Returns the amount actually paid out.
func (e *Engine) Withdraw(lender crypto.Address, asset string, amount *big.Int) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	pool, err := e.loadPool()
	if err != nil {
		return nil, err
	}
	if pool.State == PoolFrozen {
		return nil, ErrPoolFrozen
	}
	if err := e.AccrueInterest(asset); err != nil {
		return nil, err
	}
	reserve, err := e.loadReserve(asset)
	if err != nil {
		return nil, err
	}
	balance, err := e.state.LendingLenderShares(asset, lender)
	if err != nil {
		return nil, err
	}
	balance = cloneBigInt(balance)
	if balance.Sign() <= 0 {
		return nil, ErrInsufficientLenderShares
	}
	shares, err := toLenderShares(amount, reserve.LenderRate)
	if err != nil {
		return nil, err
	}
	if shares.Cmp(balance) > 0 {
		shares = balance
	}
	if shares.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	payout, err := toLenderAmount(shares, reserve.LenderRate)
	if err != nil {
		return nil, err
	}
	if payout.Cmp(reserve.PoolBalance) > 0 {
		return nil, ErrInsufficientPoolBalance
	}

	newSupplyShares := new(big.Int).Sub(reserve.LenderSupply, shares)
	if newSupplyShares.Sign() < 0 {
		return nil, ErrInsufficientLenderShares
	}
	totalLiabilities, err := toBorrowerAmount(reserve.BorrowerSupply, reserve.BorrowerRate)
	if err != nil {
		return nil, err
	}
	if totalLiabilities.Sign() > 0 {
		newSupply, err := toLenderAmount(newSupplyShares, reserve.LenderRate)
		if err != nil {
			return nil, err
		}
		// Utilization must stay strictly below 100% after the burn.
		if totalLiabilities.Cmp(newSupply) >= 0 {
			return nil, ErrInvalidUtilization
		}
	}

	// Pay out before persisting so a rejected transfer leaves the lender's
	// claim untouched.
	if err := e.transferOut(asset, lender, payout); err != nil {
		return nil, err
	}
	reserve.LenderSupply = newSupplyShares
	reserve.PoolBalance = new(big.Int).Sub(reserve.PoolBalance, payout)
	if err := e.state.LendingPutReserve(asset, reserve); err != nil {
		return nil, err
	}
	if err := e.state.LendingSetLenderShares(asset, lender, new(big.Int).Sub(balance, shares)); err != nil {
		return nil, err
	}
	e.emit(newWithdrawEvent(lender, asset, payout, shares))
	return payout, nil
}

// LenderBalance reports the lender's current claim on the pool in underlying
// units at the latest persisted rate.
func (e *Engine) LenderBalance(lender crypto.Address, asset string) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	reserve, err := e.loadReserve(asset)
	if err != nil {
		return nil, err
	}
	shares, err := e.state.LendingLenderShares(asset, lender)
	if err != nil {
		return nil, err
	}
	return toLenderAmount(cloneBigInt(shares), reserve.LenderRate)
}

// Reserve returns a copy of the asset's rate accounting state.
func (e *Engine) Reserve(asset string) (*Reserve, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	return e.loadReserve(asset)
}

// Pool returns the global pool record.
func (e *Engine) Pool() (*Pool, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	return e.loadPool()
}

// Position returns the borrower's position record.
func (e *Engine) Position(borrower crypto.Address) (*Position, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	return e.loadPosition(borrower)
}
