package lending

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"github.com/akintewe/Neko-Oracle-RWA/core/types"
	"github.com/akintewe/Neko-Oracle-RWA/crypto"
)

const (
	EventTypeInterestAccrued   = "lending.interest.accrued"
	EventTypeDeposit           = "lending.deposit"
	EventTypeWithdraw          = "lending.withdraw"
	EventTypeBorrow            = "lending.borrow"
	EventTypeRepay             = "lending.repay"
	EventTypeCollateralAdded   = "lending.collateral.added"
	EventTypeCollateralRemoved = "lending.collateral.removed"
	EventTypeLiquidationStart  = "lending.liquidation.initiated"
	EventTypeAuctionFilled     = "lending.liquidation.filled"
	EventTypeBackstopDeposit   = "lending.backstop.deposit"
	EventTypeBackstopQueued    = "lending.backstop.queued"
	EventTypeBackstopWithdraw  = "lending.backstop.withdraw"
	EventTypePoolStateChanged  = "lending.pool.state_changed"
	EventTypePoolInitialized   = "lending.pool.initialized"
	EventTypeCollateralFactor  = "lending.params.collateral_factor"
	EventTypeInterestParams    = "lending.params.interest_rate"
)

func bigAttr(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func newInterestAccruedEvent(asset string, rate, accrued, backstopTake *big.Int, reserve *Reserve) *types.Event {
	return &types.Event{Type: EventTypeInterestAccrued, Attributes: map[string]string{
		"asset":         asset,
		"rate_bps":      bigAttr(rate),
		"accrued":       bigAttr(accrued),
		"backstop_take": bigAttr(backstopTake),
		"lender_rate":   bigAttr(reserve.LenderRate),
		"borrower_rate": bigAttr(reserve.BorrowerRate),
		"rate_modifier": bigAttr(reserve.RateModifier),
	}}
}

func newDepositEvent(lender crypto.Address, asset string, amount, shares *big.Int) *types.Event {
	return &types.Event{Type: EventTypeDeposit, Attributes: map[string]string{
		"lender": lender.String(),
		"asset":  asset,
		"amount": bigAttr(amount),
		"shares": bigAttr(shares),
	}}
}

func newWithdrawEvent(lender crypto.Address, asset string, amount, shares *big.Int) *types.Event {
	return &types.Event{Type: EventTypeWithdraw, Attributes: map[string]string{
		"lender": lender.String(),
		"asset":  asset,
		"amount": bigAttr(amount),
		"shares": bigAttr(shares),
	}}
}

func newBorrowEvent(borrower crypto.Address, asset string, amount, shares *big.Int, healthFactor uint64) *types.Event {
	return &types.Event{Type: EventTypeBorrow, Attributes: map[string]string{
		"borrower":      borrower.String(),
		"asset":         asset,
		"amount":        bigAttr(amount),
		"shares":        bigAttr(shares),
		"health_factor": strconv.FormatUint(healthFactor, 10),
	}}
}

func newRepayEvent(borrower crypto.Address, asset string, amount, shares *big.Int) *types.Event {
	return &types.Event{Type: EventTypeRepay, Attributes: map[string]string{
		"borrower": borrower.String(),
		"asset":    asset,
		"amount":   bigAttr(amount),
		"shares":   bigAttr(shares),
	}}
}

func newCollateralAddedEvent(borrower, token crypto.Address, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeCollateralAdded, Attributes: map[string]string{
		"borrower": borrower.String(),
		"token":    token.String(),
		"amount":   bigAttr(amount),
	}}
}

func newCollateralRemovedEvent(borrower, token crypto.Address, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeCollateralRemoved, Attributes: map[string]string{
		"borrower": borrower.String(),
		"token":    token.String(),
		"amount":   bigAttr(amount),
	}}
}

func newLiquidationInitiatedEvent(auction *Auction, healthFactor uint64) *types.Event {
	return &types.Event{Type: EventTypeLiquidationStart, Attributes: map[string]string{
		"auction_id":    hex.EncodeToString(auction.ID[:]),
		"borrower":      keyAddress(auction.Borrower, crypto.NekoPrefix).String(),
		"token":         keyAddress(auction.RWAToken, crypto.RWAPrefix).String(),
		"debt_asset":    auction.DebtAsset,
		"collateral":    bigAttr(auction.CollateralAmount),
		"debt":          bigAttr(auction.DebtAmount),
		"health_factor": strconv.FormatUint(healthFactor, 10),
	}}
}

func newAuctionFilledEvent(auction *Auction, liquidator crypto.Address, bid, lot *big.Int, healthFactor uint64) *types.Event {
	return &types.Event{Type: EventTypeAuctionFilled, Attributes: map[string]string{
		"auction_id":    hex.EncodeToString(auction.ID[:]),
		"liquidator":    liquidator.String(),
		"bid":           bigAttr(bid),
		"lot":           bigAttr(lot),
		"health_factor": strconv.FormatUint(healthFactor, 10),
	}}
}

func newBackstopDepositEvent(depositor crypto.Address, amount *big.Int, pool *Pool) *types.Event {
	return &types.Event{Type: EventTypeBackstopDeposit, Attributes: map[string]string{
		"depositor":  depositor.String(),
		"amount":     bigAttr(amount),
		"total":      bigAttr(pool.BackstopTotal),
		"pool_state": pool.State.String(),
	}}
}

func newBackstopWithdrawalQueuedEvent(depositor crypto.Address, amount *big.Int, pool *Pool) *types.Event {
	return &types.Event{Type: EventTypeBackstopQueued, Attributes: map[string]string{
		"depositor":  depositor.String(),
		"amount":     bigAttr(amount),
		"total":      bigAttr(pool.BackstopTotal),
		"pool_state": pool.State.String(),
	}}
}

func newBackstopWithdrawEvent(depositor crypto.Address, amount *big.Int, pool *Pool) *types.Event {
	return &types.Event{Type: EventTypeBackstopWithdraw, Attributes: map[string]string{
		"depositor":  depositor.String(),
		"amount":     bigAttr(amount),
		"total":      bigAttr(pool.BackstopTotal),
		"pool_state": pool.State.String(),
	}}
}

func newPoolStateChangedEvent(previous, next PoolState, queuedPct *big.Int) *types.Event {
	attrs := map[string]string{
		"previous": previous.String(),
		"state":    next.String(),
	}
	if queuedPct != nil {
		attrs["queued_pct"] = queuedPct.String()
	}
	return &types.Event{Type: EventTypePoolStateChanged, Attributes: attrs}
}

func newPoolInitializedEvent(admin crypto.Address, pool *Pool) *types.Event {
	return &types.Event{Type: EventTypePoolInitialized, Attributes: map[string]string{
		"admin":              admin.String(),
		"backstop_threshold": bigAttr(pool.BackstopThreshold),
		"backstop_take_bps":  strconv.FormatUint(uint64(pool.BackstopTakeRateBps), 10),
		"pool_state":         pool.State.String(),
	}}
}

func newCollateralFactorSetEvent(token crypto.Address, factorBps uint32) *types.Event {
	return &types.Event{Type: EventTypeCollateralFactor, Attributes: map[string]string{
		"token":      token.String(),
		"factor_bps": strconv.FormatUint(uint64(factorBps), 10),
	}}
}

func newInterestParamsSetEvent(asset string, params InterestRateParams) *types.Event {
	return &types.Event{Type: EventTypeInterestParams, Attributes: map[string]string{
		"asset":      asset,
		"target":     strconv.FormatUint(uint64(params.TargetUtilization), 10),
		"base":       strconv.FormatUint(uint64(params.BaseRate), 10),
		"slope1":     strconv.FormatUint(uint64(params.Slope1), 10),
		"slope2":     strconv.FormatUint(uint64(params.Slope2), 10),
		"slope3":     strconv.FormatUint(uint64(params.Slope3), 10),
		"reactivity": strconv.FormatUint(uint64(params.Reactivity), 10),
	}}
}
