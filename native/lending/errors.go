package lending

import "errors"

// Each named failure condition maps to a distinct sentinel so callers can
// branch on errors.Is. Operations either fully succeed or fail with exactly
// one of these; the engine performs no partial commits on failure paths.
var (
	ErrNilState           = errors.New("lending engine: state not configured")
	ErrNotInitialized     = errors.New("lending engine: pool not initialized")
	ErrAlreadyInitialized = errors.New("lending engine: pool already initialized")
	ErrNotAuthorized      = errors.New("lending engine: not authorized")

	ErrInvalidAmount = errors.New("lending engine: amount must be positive")
	ErrArithmetic    = errors.New("lending engine: arithmetic error")

	ErrPoolFrozen              = errors.New("lending engine: pool frozen")
	ErrPoolOnIce               = errors.New("lending engine: pool on ice")
	ErrInsufficientPoolBalance = errors.New("lending engine: insufficient pool balance")
	ErrInsufficientLiquidity   = errors.New("lending engine: insufficient liquidity")

	ErrInsufficientLenderShares = errors.New("lending engine: insufficient lender share balance")

	ErrInsufficientCollateral  = errors.New("lending engine: insufficient collateral")
	ErrInsufficientBorrowLimit = errors.New("lending engine: insufficient borrow limit")
	ErrDebtAssetAlreadySet     = errors.New("lending engine: debt asset already set")
	ErrDebtAssetNotSet         = errors.New("lending engine: debt asset not set")

	ErrCollateralNotFound      = errors.New("lending engine: no collateral held for token")
	ErrInvalidCollateralFactor = errors.New("lending engine: invalid collateral factor")

	ErrInvalidInterestRateParams = errors.New("lending engine: invalid interest rate params")
	ErrInvalidUtilization        = errors.New("lending engine: utilization at or above 100%")

	ErrPositionNotInsolvent = errors.New("lending engine: position not insolvent")
	ErrAuctionNotFound      = errors.New("lending engine: auction not found")
	ErrAuctionNotActive     = errors.New("lending engine: auction not active")
	ErrAuctionActive        = errors.New("lending engine: auction already active for pair")
	ErrHealthFactorTooHigh  = errors.New("lending engine: health factor too high")
	ErrHealthFactorTooLow   = errors.New("lending engine: health factor too low")

	ErrInsufficientBackstopDeposit = errors.New("lending engine: insufficient backstop deposit")
	ErrWithdrawalQueueActive       = errors.New("lending engine: withdrawal already queued")
	ErrWithdrawalNotQueued         = errors.New("lending engine: withdrawal not queued")
	ErrWithdrawalQueueNotExpired   = errors.New("lending engine: withdrawal queue not expired")

	ErrOraclePrice         = errors.New("lending engine: invalid or stale oracle price")
	ErrOracleUnavailable   = errors.New("lending engine: oracle price fetch failed")
	ErrTokenContractNotSet = errors.New("lending engine: token contract not set")
)
