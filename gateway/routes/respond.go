package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/akintewe/Neko-Oracle-RWA/crypto"
	"github.com/akintewe/Neko-Oracle-RWA/native/lending"
	nativecommon "github.com/akintewe/Neko-Oracle-RWA/native/common"
	"github.com/akintewe/Neko-Oracle-RWA/native/token"
)

const requestBodyLimit = 1 << 20 // 1 MiB

var errRefRequired = errors.New("ref is required")

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}

// writeEngineError maps engine and ledger sentinel errors onto HTTP statuses.
// Unrecognized errors surface as 500 without leaking internals.
func writeEngineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, lending.ErrInvalidAmount),
		errors.Is(err, lending.ErrInvalidCollateralFactor),
		errors.Is(err, lending.ErrInvalidInterestRateParams),
		errors.Is(err, token.ErrInvalidAmount),
		errors.Is(err, token.ErrInvalidExpiration),
		errors.Is(err, token.ErrInvalidTokenConfig):
		status = http.StatusBadRequest
	case errors.Is(err, lending.ErrNotAuthorized),
		errors.Is(err, token.ErrNotAuthorized),
		errors.Is(err, token.ErrAccountFrozen):
		status = http.StatusForbidden
	case errors.Is(err, lending.ErrAuctionNotFound),
		errors.Is(err, lending.ErrCollateralNotFound),
		errors.Is(err, lending.ErrNotInitialized),
		errors.Is(err, token.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, lending.ErrAlreadyInitialized),
		errors.Is(err, lending.ErrPoolFrozen),
		errors.Is(err, lending.ErrPoolOnIce),
		errors.Is(err, lending.ErrAuctionActive),
		errors.Is(err, lending.ErrAuctionNotActive),
		errors.Is(err, lending.ErrDebtAssetAlreadySet),
		errors.Is(err, lending.ErrDebtAssetNotSet),
		errors.Is(err, lending.ErrPositionNotInsolvent),
		errors.Is(err, lending.ErrHealthFactorTooHigh),
		errors.Is(err, lending.ErrHealthFactorTooLow),
		errors.Is(err, lending.ErrWithdrawalQueueActive),
		errors.Is(err, lending.ErrWithdrawalNotQueued),
		errors.Is(err, lending.ErrWithdrawalQueueNotExpired),
		errors.Is(err, token.ErrAlreadyRegistered),
		errors.Is(err, nativecommon.ErrModulePaused):
		status = http.StatusConflict
	case errors.Is(err, lending.ErrInsufficientPoolBalance),
		errors.Is(err, lending.ErrInsufficientLiquidity),
		errors.Is(err, lending.ErrInsufficientLenderShares),
		errors.Is(err, lending.ErrInsufficientCollateral),
		errors.Is(err, lending.ErrInsufficientBorrowLimit),
		errors.Is(err, lending.ErrInsufficientBackstopDeposit),
		errors.Is(err, lending.ErrInvalidUtilization),
		errors.Is(err, token.ErrInsufficientFunds),
		errors.Is(err, token.ErrAllowanceExceeded),
		errors.Is(err, token.ErrAllowanceExpired):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, lending.ErrOraclePrice),
		errors.Is(err, lending.ErrOracleUnavailable),
		errors.Is(err, lending.ErrTokenContractNotSet):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeRequest(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, requestBodyLimit))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

func parseAddress(raw, field string, prefix crypto.AddressPrefix) (crypto.Address, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return crypto.Address{}, fmt.Errorf("%s is required", field)
	}
	addr, err := crypto.DecodeAddress(trimmed)
	if err != nil {
		return crypto.Address{}, fmt.Errorf("%s: %w", field, err)
	}
	if addr.Prefix() != prefix {
		return crypto.Address{}, fmt.Errorf("%s: expected %q prefix", field, prefix)
	}
	return addr, nil
}

func parseAmount(raw, field string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("%s is required", field)
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("%s: not a base-10 integer", field)
	}
	return amount, nil
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
