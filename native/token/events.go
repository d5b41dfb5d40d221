package token

import (
	"math/big"
	"strconv"

	"github.com/akintewe/Neko-Oracle-RWA/core/types"
	"github.com/akintewe/Neko-Oracle-RWA/crypto"
)

const (
	EventTypeRegistered = "token.registered"
	EventTypeMint       = "token.mint"
	EventTypeClawback   = "token.clawback"
	EventTypeTransfer   = "token.transfer"
	EventTypeApprove    = "token.approve"
	EventTypeAuthorized = "token.authorized"
)

func newRegisteredEvent(token, admin crypto.Address, symbol string) *types.Event {
	return &types.Event{Type: EventTypeRegistered, Attributes: map[string]string{
		"token":  token.String(),
		"admin":  admin.String(),
		"symbol": symbol,
	}}
}

func newMintEvent(token, to crypto.Address, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeMint, Attributes: map[string]string{
		"token":  token.String(),
		"to":     to.String(),
		"amount": amount.String(),
	}}
}

func newClawbackEvent(token, from crypto.Address, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeClawback, Attributes: map[string]string{
		"token":  token.String(),
		"from":   from.String(),
		"amount": amount.String(),
	}}
}

func newTransferEvent(token, from, to crypto.Address, amount *big.Int) *types.Event {
	return &types.Event{Type: EventTypeTransfer, Attributes: map[string]string{
		"token":  token.String(),
		"from":   from.String(),
		"to":     to.String(),
		"amount": amount.String(),
	}}
}

func newApproveEvent(token, owner, spender crypto.Address, amount *big.Int, expiresAt uint64) *types.Event {
	return &types.Event{Type: EventTypeApprove, Attributes: map[string]string{
		"token":      token.String(),
		"owner":      owner.String(),
		"spender":    spender.String(),
		"amount":     amount.String(),
		"expires_at": strconv.FormatUint(expiresAt, 10),
	}}
}

func newAuthorizedEvent(token, account crypto.Address, authorized bool) *types.Event {
	return &types.Event{Type: EventTypeAuthorized, Attributes: map[string]string{
		"token":      token.String(),
		"account":    account.String(),
		"authorized": strconv.FormatBool(authorized),
	}}
}
