package lending

import (
	"math/big"

	"github.com/akintewe/Neko-Oracle-RWA/crypto"
)

func (e *Engine) backstopToken(pool *Pool) (crypto.Address, error) {
	if !pool.BackstopTokenSet {
		return crypto.Address{}, ErrTokenContractNotSet
	}
	return keyAddress(pool.BackstopToken, crypto.RWAPrefix), nil
}

func (e *Engine) loadBackstopDeposit(addr crypto.Address) (*BackstopDeposit, error) {
	deposit, ok, err := e.state.LendingGetBackstopDeposit(addr)
	if err != nil {
		return nil, err
	}
	if !ok || deposit == nil {
		return &BackstopDeposit{Amount: big.NewInt(0)}, nil
	}
	if deposit.Amount == nil {
		deposit.Amount = big.NewInt(0)
	}
	return deposit, nil
}

// DepositToBackstop stakes first-loss capital. A deposit clears any pending
// withdrawal request by the depositor, since fresh capital supersedes the
// intent to leave.
func (e *Engine) DepositToBackstop(depositor crypto.Address, amount *big.Int) error {
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
	token, err := e.backstopToken(pool)
	if err != nil {
		return err
	}
	if e.tokens == nil {
		return ErrTokenContractNotSet
	}
	if err := e.tokens.Transfer(token, depositor, e.poolAddress, amount); err != nil {
		return err
	}
	deposit, err := e.loadBackstopDeposit(depositor)
	if err != nil {
		return err
	}
	deposit.Amount = new(big.Int).Add(deposit.Amount, amount)
	deposit.DepositedAt = e.now()
	deposit.InWithdrawalQueue = false
	deposit.QueuedAt = 0
	if err := e.state.LendingPutBackstopDeposit(depositor, deposit); err != nil {
		return err
	}
	pool.BackstopTotal = new(big.Int).Add(pool.BackstopTotal, amount)
	dropQueuedWithdrawals(pool, depositor)
	e.recomputePoolState(pool)
	if err := e.state.LendingPutPool(pool); err != nil {
		return err
	}
	e.emit(newBackstopDepositEvent(depositor, amount, pool))
	return nil
}

// InitiateBackstopWithdrawal enqueues a withdrawal request subject to the 17
// day time lock. Queued capital immediately counts against the pool state
// thresholds.
func (e *Engine) InitiateBackstopWithdrawal(depositor crypto.Address, amount *big.Int) error {
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
	deposit, err := e.loadBackstopDeposit(depositor)
	if err != nil {
		return err
	}
	if deposit.Amount.Cmp(amount) < 0 {
		return ErrInsufficientBackstopDeposit
	}
	if deposit.InWithdrawalQueue {
		return ErrWithdrawalQueueActive
	}
	now := e.now()
	deposit.InWithdrawalQueue = true
	deposit.QueuedAt = now
	if err := e.state.LendingPutBackstopDeposit(depositor, deposit); err != nil {
		return err
	}
	pool.WithdrawalQueue = append(pool.WithdrawalQueue, WithdrawalRequest{
		Depositor: addressKey(depositor),
		Amount:    cloneBigInt(amount),
		QueuedAt:  now,
	})
	e.recomputePoolState(pool)
	if err := e.state.LendingPutPool(pool); err != nil {
		return err
	}
	e.emit(newBackstopWithdrawalQueuedEvent(depositor, amount, pool))
	return nil
}

// WithdrawFromBackstop pays out a queued withdrawal once the time lock has
// elapsed. The paid request leaves the queue.
func (e *Engine) WithdrawFromBackstop(depositor crypto.Address, amount *big.Int) error {
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
	deposit, err := e.loadBackstopDeposit(depositor)
	if err != nil {
		return err
	}
	if !deposit.InWithdrawalQueue {
		return ErrWithdrawalNotQueued
	}
	if e.now() < deposit.QueuedAt+BackstopWithdrawalQueueSeconds {
		return ErrWithdrawalQueueNotExpired
	}
	if deposit.Amount.Cmp(amount) < 0 {
		return ErrInsufficientBackstopDeposit
	}
	token, err := e.backstopToken(pool)
	if err != nil {
		return err
	}
	if e.tokens == nil {
		return ErrTokenContractNotSet
	}
	if err := e.tokens.Transfer(token, e.poolAddress, depositor, amount); err != nil {
		return err
	}
	deposit.Amount = new(big.Int).Sub(deposit.Amount, amount)
	deposit.InWithdrawalQueue = false
	deposit.QueuedAt = 0
	if err := e.state.LendingPutBackstopDeposit(depositor, deposit); err != nil {
		return err
	}
	pool.BackstopTotal = new(big.Int).Sub(pool.BackstopTotal, amount)
	if pool.BackstopTotal.Sign() < 0 {
		pool.BackstopTotal = big.NewInt(0)
	}
	dropQueuedWithdrawals(pool, depositor)
	e.recomputePoolState(pool)
	if err := e.state.LendingPutPool(pool); err != nil {
		return err
	}
	e.emit(newBackstopWithdrawEvent(depositor, amount, pool))
	return nil
}

func dropQueuedWithdrawals(pool *Pool, depositor crypto.Address) {
	key := addressKey(depositor)
	kept := pool.WithdrawalQueue[:0]
	for _, request := range pool.WithdrawalQueue {
		if request.Depositor != key {
			kept = append(kept, request)
		}
	}
	pool.WithdrawalQueue = kept
}

// recomputePoolState derives the operational state from the share of backstop
// capital queued for exit and the threshold floor. The stored state changes
// only when the derived value differs.
func (e *Engine) recomputePoolState(pool *Pool) {
	queued := big.NewInt(0)
	for _, request := range pool.WithdrawalQueue {
		queued.Add(queued, cloneBigInt(request.Amount))
	}
	var queuedPct *big.Int
	if pool.BackstopTotal.Sign() > 0 {
		queuedPct = new(big.Int).Mul(queued, bigBasisPoints)
		queuedPct.Quo(queuedPct, pool.BackstopTotal)
	} else {
		queuedPct = big.NewInt(0)
	}

	next := PoolActive
	switch {
	case queuedPct.Cmp(big.NewInt(5000)) >= 0:
		next = PoolFrozen
	case queuedPct.Cmp(big.NewInt(2500)) >= 0,
		pool.BackstopTotal.Cmp(pool.BackstopThreshold) < 0:
		next = PoolOnIce
	}
	if next != pool.State {
		previous := pool.State
		pool.State = next
		e.emit(newPoolStateChangedEvent(previous, next, queuedPct))
	}
}

// BackstopDepositOf returns the depositor's backstop record.
func (e *Engine) BackstopDepositOf(depositor crypto.Address) (*BackstopDeposit, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	return e.loadBackstopDeposit(depositor)
}
