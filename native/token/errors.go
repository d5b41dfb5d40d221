package token

import "errors"

var (
	ErrNilState           = errors.New("token ledger: state not configured")
	ErrNotFound           = errors.New("token ledger: token not registered")
	ErrAlreadyRegistered  = errors.New("token ledger: token already registered")
	ErrNotAuthorized      = errors.New("token ledger: not authorized")
	ErrAccountFrozen      = errors.New("token ledger: account not authorized to transact")
	ErrInvalidAmount      = errors.New("token ledger: amount must be positive")
	ErrInsufficientFunds  = errors.New("token ledger: insufficient balance")
	ErrAllowanceExceeded  = errors.New("token ledger: allowance exceeded")
	ErrAllowanceExpired   = errors.New("token ledger: allowance expired")
	ErrInvalidExpiration  = errors.New("token ledger: expiration in the past")
	ErrInvalidTokenConfig = errors.New("token ledger: invalid token config")
)
