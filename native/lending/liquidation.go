package lending

import (
	"math"
	"math/big"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/akintewe/Neko-Oracle-RWA/crypto"
)

// healthFactorMax is reported for debt-free positions; such a position is
// never liquidatable.
const healthFactorMax = uint64(math.MaxUint32)

// healthFactor returns the position's health in basis points: the
// collateral-factor adjusted collateral value over the debt value.
func (e *Engine) healthFactor(position *Position, reserve *Reserve) (uint64, error) {
	if position.DebtAsset == "" || position.BorrowerShares.Sign() == 0 {
		return healthFactorMax, nil
	}
	_, adjusted, err := e.collateralValues(position)
	if err != nil {
		return 0, err
	}
	_, debtValue, err := e.debtAmounts(position, reserve)
	if err != nil {
		return 0, err
	}
	if debtValue.Sign() == 0 {
		return healthFactorMax, nil
	}
	ratio := new(big.Int).Mul(adjusted, bigBasisPoints)
	ratio.Quo(ratio, debtValue)
	if !ratio.IsUint64() || ratio.Uint64() > healthFactorMax {
		return healthFactorMax, nil
	}
	return ratio.Uint64(), nil
}

// CalculateHealthFactor reports the borrower's current health factor in basis
// points, the maximum representable value when the position carries no debt.
func (e *Engine) CalculateHealthFactor(borrower crypto.Address) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	position, err := e.loadPosition(borrower)
	if err != nil {
		return 0, err
	}
	if position.DebtAsset == "" || position.BorrowerShares.Sign() == 0 {
		return healthFactorMax, nil
	}
	reserve, err := e.loadReserve(position.DebtAsset)
	if err != nil {
		return 0, err
	}
	return e.healthFactor(position, reserve)
}

// auctionID derives the deterministic identifier for the (borrower,
// collateral token) pair.
func auctionID(borrower, token crypto.Address) [32]byte {
	var id [32]byte
	digest := gethcrypto.Keccak256([]byte("lending/auction"), borrower.Bytes(), token.Bytes())
	copy(id[:], digest)
	return id
}

// InitiateLiquidation opens a Dutch auction over a slice of an insolvent
// position. The premium scales with the riskiness of the collateral: lower
// collateral factors command a larger premium above par.
func (e *Engine) InitiateLiquidation(borrower crypto.Address, collateralToken crypto.Address, debtAsset string, liquidationPercentBps uint32) ([32]byte, error) {
	var zero [32]byte
	if e == nil || e.state == nil {
		return zero, ErrNilState
	}
	if liquidationPercentBps == 0 || liquidationPercentBps > BasisPoints {
		return zero, ErrInvalidAmount
	}
	if _, err := e.loadPool(); err != nil {
		return zero, err
	}
	if err := e.AccrueInterest(debtAsset); err != nil {
		return zero, err
	}
	reserve, err := e.loadReserve(debtAsset)
	if err != nil {
		return zero, err
	}
	position, err := e.loadPosition(borrower)
	if err != nil {
		return zero, err
	}
	if position.DebtAsset != debtAsset || position.BorrowerShares.Sign() == 0 {
		return zero, ErrDebtAssetNotSet
	}
	healthFactor, err := e.healthFactor(position, reserve)
	if err != nil {
		return zero, err
	}
	if healthFactor >= BasisPoints {
		return zero, ErrPositionNotInsolvent
	}
	if _, active, err := e.state.LendingActiveAuction(borrower); err != nil {
		return zero, err
	} else if active {
		return zero, ErrAuctionActive
	}
	held := position.CollateralAmount(collateralToken)
	if held.Sign() == 0 {
		return zero, ErrCollateralNotFound
	}

	debtAmount, debtValue, err := e.debtAmounts(position, reserve)
	if err != nil {
		return zero, err
	}
	price, decimals, err := e.fetchPrice(e.rwaOracle, collateralToken.String())
	if err != nil {
		return zero, err
	}
	collateralValue, err := usdValue(held, price.Price, decimals, oraclePriceDecimals)
	if err != nil {
		return zero, err
	}
	if collateralValue.Sign() == 0 {
		return zero, ErrOraclePrice
	}
	factor, err := e.collateralFactorBps(collateralToken)
	if err != nil {
		return zero, err
	}

	pct := big.NewInt(int64(liquidationPercentBps))
	liquidationDebt := new(big.Int).Mul(debtAmount, pct)
	liquidationDebt.Quo(liquidationDebt, bigBasisPoints)
	if liquidationDebt.Sign() == 0 {
		return zero, ErrInvalidAmount
	}

	premium := big.NewInt(int64((BasisPoints-factor)/2 + BasisPoints))
	collateralPercent := new(big.Int).Mul(premium, pct)
	collateralPercent.Mul(collateralPercent, debtValue)
	collateralPercent.Quo(collateralPercent, collateralValue)
	collateralPercent.Quo(collateralPercent, bigBasisPoints)
	if collateralPercent.Cmp(bigBasisPoints) > 0 {
		collateralPercent = new(big.Int).Set(bigBasisPoints)
	}
	liquidationCollateral := new(big.Int).Mul(held, collateralPercent)
	liquidationCollateral.Quo(liquidationCollateral, bigBasisPoints)

	now := e.now()
	auction := &Auction{
		ID:               auctionID(borrower, collateralToken),
		Borrower:         addressKey(borrower),
		RWAToken:         addressKey(collateralToken),
		DebtAsset:        debtAsset,
		CollateralAmount: liquidationCollateral,
		DebtAmount:       liquidationDebt,
		CreatedAt:        now,
		StartedAt:        now,
		Status:           AuctionActive,
	}
	if err := e.state.LendingPutAuction(auction); err != nil {
		return zero, err
	}
	if err := e.state.LendingSetActiveAuction(borrower, auction.ID); err != nil {
		return zero, err
	}
	e.emit(newLiquidationInitiatedEvent(auction, healthFactor))
	return auction.ID, nil
}

// auctionModifiers converts elapsed steps into the two fixed-point decay
// curves: the lot offered rises 0→1 over the auction duration and then holds,
// while the bid demanded holds at 1 and then falls to 0 by twice the
// duration.
func auctionModifiers(steps uint64) (lot, bid *big.Int) {
	duration := uint64(AuctionDurationSteps)
	switch {
	case steps >= 2*duration:
		return big.NewInt(RateScale), big.NewInt(0)
	case steps > duration:
		bid = new(big.Int).SetUint64(2*duration - steps)
		bid.Mul(bid, bigRateScale)
		bid.Quo(bid, new(big.Int).SetUint64(duration))
		return big.NewInt(RateScale), bid
	default:
		lot = new(big.Int).SetUint64(steps)
		lot.Mul(lot, bigRateScale)
		lot.Quo(lot, new(big.Int).SetUint64(duration))
		return lot, big.NewInt(RateScale)
	}
}

// FillAuction settles an active auction at the current point of its decay
// curve. The liquidator pays the bid-modified debt, receives the lot-modified
// collateral, and the fill is rejected wholesale when it would push the
// position's health factor above the over-liquidation bound.
func (e *Engine) FillAuction(liquidator crypto.Address, id [32]byte) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	auction, ok, err := e.state.LendingGetAuction(id)
	if err != nil {
		return err
	}
	if !ok || auction == nil {
		return ErrAuctionNotFound
	}
	if auction.Status != AuctionActive {
		return ErrAuctionNotActive
	}
	if err := e.AccrueInterest(auction.DebtAsset); err != nil {
		return err
	}
	reserve, err := e.loadReserve(auction.DebtAsset)
	if err != nil {
		return err
	}
	borrower := keyAddress(auction.Borrower, crypto.NekoPrefix)
	position, err := e.loadPosition(borrower)
	if err != nil {
		return err
	}

	now := e.now()
	var steps uint64
	if now > auction.StartedAt {
		steps = (now - auction.StartedAt) / SecondsPerAuctionStep
	}
	lotModifier, bidModifier := auctionModifiers(steps)

	bid := new(big.Int).Mul(auction.DebtAmount, bidModifier)
	bid.Quo(bid, bigRateScale)
	lot := new(big.Int).Mul(auction.CollateralAmount, lotModifier)
	lot.Quo(lot, bigRateScale)

	collateralToken := keyAddress(auction.RWAToken, crypto.RWAPrefix)
	held := position.CollateralAmount(collateralToken)
	if lot.Cmp(held) > 0 {
		lot = new(big.Int).Set(held)
	}

	// Only debt the liquidator actually pays is extinguished; in the decay
	// window the unpaid remainder stays on the position.
	burned, err := mulDiv(bid, bigRateScale, reserve.BorrowerRate)
	if err != nil {
		return err
	}
	if burned.Cmp(position.BorrowerShares) > 0 {
		burned = new(big.Int).Set(position.BorrowerShares)
	}
	position.BorrowerShares = new(big.Int).Sub(position.BorrowerShares, burned)
	if position.BorrowerShares.Sign() == 0 {
		position.DebtAsset = ""
	}
	position.SetCollateral(collateralToken, new(big.Int).Sub(held, lot))
	position.LastUpdate = now

	healthFactor, err := e.healthFactor(position, reserve)
	if err != nil {
		return err
	}
	if healthFactor > MaxHealthFactor {
		return ErrHealthFactorTooHigh
	}

	reserve.BorrowerSupply = new(big.Int).Sub(reserve.BorrowerSupply, burned)
	if reserve.BorrowerSupply.Sign() < 0 {
		reserve.BorrowerSupply = big.NewInt(0)
	}
	reserve.PoolBalance = new(big.Int).Add(reserve.PoolBalance, bid)

	if bid.Sign() > 0 {
		if err := e.transferIn(auction.DebtAsset, liquidator, bid); err != nil {
			return err
		}
	}
	if lot.Sign() > 0 {
		if e.tokens == nil {
			return ErrTokenContractNotSet
		}
		if err := e.tokens.Transfer(collateralToken, e.poolAddress, liquidator, lot); err != nil {
			return err
		}
	}

	if err := e.state.LendingPutReserve(auction.DebtAsset, reserve); err != nil {
		return err
	}
	if err := e.state.LendingPutPosition(borrower, position); err != nil {
		return err
	}
	auction.Status = AuctionFilled
	if err := e.state.LendingPutAuction(auction); err != nil {
		return err
	}
	if err := e.state.LendingClearActiveAuction(borrower); err != nil {
		return err
	}
	e.emit(newAuctionFilledEvent(auction, liquidator, bid, lot, healthFactor))
	return nil
}

// AuctionByID returns the stored auction record.
func (e *Engine) AuctionByID(id [32]byte) (*Auction, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	auction, ok, err := e.state.LendingGetAuction(id)
	if err != nil {
		return nil, err
	}
	if !ok || auction == nil {
		return nil, ErrAuctionNotFound
	}
	return auction, nil
}
