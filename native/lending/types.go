package lending

import (
	"math/big"

	"github.com/akintewe/Neko-Oracle-RWA/crypto"
)

// PoolState gates which operations the pool currently permits.
type PoolState uint8

const (
	// PoolActive permits every operation.
	PoolActive PoolState = iota
	// PoolOnIce disables borrowing; deposits, withdrawals and repayments
	// remain available.
	PoolOnIce
	// PoolFrozen additionally disables deposits and withdrawals; only
	// repayment, collateral removal and liquidation remain meaningful.
	PoolFrozen
)

func (s PoolState) String() string {
	switch s {
	case PoolActive:
		return "active"
	case PoolOnIce:
		return "on_ice"
	case PoolFrozen:
		return "frozen"
	default:
		return "unknown"
	}
}

// InterestRateParams shape the 3-segment kinked borrow rate curve for an
// asset. All values are expressed in basis points.
type InterestRateParams struct {
	TargetUtilization uint32
	BaseRate          uint32
	Slope1            uint32
	Slope2            uint32
	Slope3            uint32
	Reactivity        uint32
}

// DefaultInterestRateParams mirrors the parameters applied when an asset has
// no explicit configuration.
func DefaultInterestRateParams() InterestRateParams {
	return InterestRateParams{
		TargetUtilization: 7500,
		BaseRate:          100,
		Slope1:            500,
		Slope2:            2000,
		Slope3:            10000,
		Reactivity:        1,
	}
}

// Reserve captures the per-asset rate accounting state. Rates use a 1e9
// fixed-point scale and start at exactly 1.0; the borrower rate never
// decreases.
type Reserve struct {
	PoolBalance    *big.Int
	LenderRate     *big.Int
	LenderSupply   *big.Int
	BorrowerRate   *big.Int
	BorrowerSupply *big.Int
	RateModifier   *big.Int
	BackstopCredit *big.Int
	LastAccrual    uint64
	Params         InterestRateParams
	ParamsSet      bool
}

// CollateralEntry records one RWA token pledged inside a position.
type CollateralEntry struct {
	Token  [20]byte
	Amount *big.Int
}

// Position is the collateralized debt position kept per borrower. A position
// holds collateral in any number of RWA tokens but debt in at most one asset;
// DebtAsset is empty exactly when BorrowerShares is zero.
type Position struct {
	Collateral     []CollateralEntry
	DebtAsset      string
	BorrowerShares *big.Int
	CreatedAt      uint64
	LastUpdate     uint64
}

// CollateralAmount returns the pledged amount for the given token.
func (p *Position) CollateralAmount(token crypto.Address) *big.Int {
	if p == nil {
		return big.NewInt(0)
	}
	var key [20]byte
	copy(key[:], token.Bytes())
	for _, entry := range p.Collateral {
		if entry.Token == key {
			if entry.Amount == nil {
				return big.NewInt(0)
			}
			return new(big.Int).Set(entry.Amount)
		}
	}
	return big.NewInt(0)
}

// SetCollateral stores the pledged amount for the given token, inserting an
// entry when none exists yet.
func (p *Position) SetCollateral(token crypto.Address, amount *big.Int) {
	if p == nil {
		return
	}
	var key [20]byte
	copy(key[:], token.Bytes())
	for i := range p.Collateral {
		if p.Collateral[i].Token == key {
			p.Collateral[i].Amount = new(big.Int).Set(amount)
			return
		}
	}
	p.Collateral = append(p.Collateral, CollateralEntry{Token: key, Amount: new(big.Int).Set(amount)})
}

// AuctionStatus tracks the lifecycle of a Dutch auction.
type AuctionStatus uint8

const (
	AuctionActive AuctionStatus = iota
	AuctionFilled
	AuctionCancelled
)

func (s AuctionStatus) String() string {
	switch s {
	case AuctionActive:
		return "active"
	case AuctionFilled:
		return "filled"
	case AuctionCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Auction is a time-decaying Dutch liquidation auction. The identifier is
// derived deterministically from (borrower, collateral token) so at most one
// auction per pair can be active at a time.
type Auction struct {
	ID               [32]byte
	Borrower         [20]byte
	RWAToken         [20]byte
	DebtAsset        string
	CollateralAmount *big.Int
	DebtAmount       *big.Int
	CreatedAt        uint64
	StartedAt        uint64
	Status           AuctionStatus
}

// BackstopDeposit records one depositor's first-loss capital stake.
type BackstopDeposit struct {
	Amount            *big.Int
	DepositedAt       uint64
	InWithdrawalQueue bool
	QueuedAt          uint64
}

// WithdrawalRequest is a queued backstop withdrawal subject to the time lock.
type WithdrawalRequest struct {
	Depositor [20]byte
	Amount    *big.Int
	QueuedAt  uint64
}

// Pool is the global pool record: operational state, backstop accounting and
// the administrative registry entries that are not keyed per asset.
type Pool struct {
	State               PoolState
	Admin               [20]byte
	RWAOracle           [20]byte
	ReflectorOracle     [20]byte
	BackstopThreshold   *big.Int
	BackstopTakeRateBps uint32
	BackstopTotal       *big.Int
	BackstopToken       [20]byte
	BackstopTokenSet    bool
	WithdrawalQueue     []WithdrawalRequest
}

// PriceData is the "last price" answer from an oracle, validated by the
// engine for positivity and staleness before use.
type PriceData struct {
	Price     *big.Int
	Timestamp uint64
}

const (
	// BasisPoints is the percentage scale: 10_000 = 100%.
	BasisPoints = 10_000
	// RateScale is the 1e9 fixed-point scale shared by share rates and the
	// rate modifier.
	RateScale = 1_000_000_000
	// SecondsPerYear converts annualized rates to per-second accrual.
	SecondsPerYear = 31_536_000

	// MinHealthFactor is the floor a position must keep after borrow or
	// collateral removal, in basis points.
	MinHealthFactor = 11_000
	// MaxHealthFactor bounds over-liquidation: a fill may not push the
	// position's health factor above this value, in basis points.
	MaxHealthFactor = 11_500

	// AuctionDurationSteps is the length of the rising half of the Dutch
	// auction curve in discrete steps; the falling half spans another
	// AuctionDurationSteps.
	AuctionDurationSteps = 200
	// SecondsPerAuctionStep converts wall-clock seconds to auction steps.
	SecondsPerAuctionStep = 5

	// BackstopWithdrawalQueueSeconds is the 17 day time lock on backstop
	// withdrawals.
	BackstopWithdrawalQueueSeconds = 17 * 24 * 60 * 60

	// maxOraclePriceAge rejects prices older than 24 hours.
	maxOraclePriceAge = 24 * 60 * 60

	// oraclePriceDecimals is the decimal convention of oracle quotes.
	oraclePriceDecimals = 7

	// defaultCollateralFactorBps applies when no factor was configured for
	// an RWA token.
	defaultCollateralFactorBps = 7500
)

var (
	bigBasisPoints = big.NewInt(BasisPoints)
	bigRateScale   = big.NewInt(RateScale)

	// rateModifierMax and rateModifierMin bound the adaptive modifier to
	// [0.1, 10.0] on the RateScale fixed-point scale.
	rateModifierMax = big.NewInt(10 * RateScale)
	rateModifierMin = big.NewInt(RateScale / 10)
)

func addressKey(addr crypto.Address) [20]byte {
	var key [20]byte
	copy(key[:], addr.Bytes())
	return key
}

func keyAddress(key [20]byte, prefix crypto.AddressPrefix) crypto.Address {
	return crypto.NewAddress(prefix, append([]byte(nil), key[:]...))
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
