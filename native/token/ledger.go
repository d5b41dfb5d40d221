package token

import (
	"math/big"
	"time"

	"github.com/akintewe/Neko-Oracle-RWA/core/events"
	"github.com/akintewe/Neko-Oracle-RWA/crypto"
	nativecommon "github.com/akintewe/Neko-Oracle-RWA/native/common"
)

const moduleName = "token"

// Info is the registered metadata for one fungible token. Each RWA token pegs
// a real-world asset tracked by the RWA oracle under PeggedAsset.
type Info struct {
	Name        string
	Symbol      string
	Decimals    uint32
	Admin       [20]byte
	PeggedAsset string
	TotalSupply *big.Int
}

// Allowance grants a spender a capped, expiring right to move a holder's
// balance.
type Allowance struct {
	Amount    *big.Int
	ExpiresAt uint64
}

type ledgerState interface {
	TokenGetInfo(token crypto.Address) (*Info, bool, error)
	TokenPutInfo(token crypto.Address, info *Info) error
	TokenBalance(token, account crypto.Address) (*big.Int, error)
	TokenSetBalance(token, account crypto.Address, balance *big.Int) error
	TokenFrozen(token, account crypto.Address) (bool, error)
	TokenSetFrozen(token, account crypto.Address, frozen bool) error
	TokenAllowance(token, owner, spender crypto.Address) (*Allowance, bool, error)
	TokenPutAllowance(token, owner, spender crypto.Address, allowance *Allowance) error
}

// Ledger keeps fungible balances for every registered token, with the
// compliance hooks a regulated asset needs: per-account freezes, admin
// clawback and a module-wide pause switch.
type Ledger struct {
	state   ledgerState
	emitter events.Emitter
	pauses  nativecommon.PauseView
	nowFn   func() uint64
}

// NewLedger constructs an empty token ledger.
func NewLedger() *Ledger {
	return &Ledger{
		emitter: events.NoopEmitter{},
		nowFn:   func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// SetState wires the ledger to the persistence layer.
func (l *Ledger) SetState(state ledgerState) { l.state = state }

// SetPauses wires the administrative pause switches.
func (l *Ledger) SetPauses(p nativecommon.PauseView) {
	if l == nil {
		return
	}
	l.pauses = p
}

// SetEmitter configures the event sink. Passing nil resets to a no-op.
func (l *Ledger) SetEmitter(emitter events.Emitter) {
	if l == nil {
		return
	}
	if emitter == nil {
		l.emitter = events.NoopEmitter{}
		return
	}
	l.emitter = emitter
}

// SetNowFunc overrides the clock used for allowance expiry.
func (l *Ledger) SetNowFunc(now func() uint64) {
	if l == nil {
		return
	}
	if now == nil {
		l.nowFn = func() uint64 { return uint64(time.Now().Unix()) }
		return
	}
	l.nowFn = now
}

func (l *Ledger) emit(evt events.Event) {
	if l == nil || l.emitter == nil {
		return
	}
	l.emitter.Emit(evt)
}

// Register creates a token under the given address. The admin controls mint,
// clawback and account freezes for this token.
func (l *Ledger) Register(token crypto.Address, admin crypto.Address, name, symbol string, decimals uint32, peggedAsset string) error {
	if l == nil || l.state == nil {
		return ErrNilState
	}
	if name == "" || symbol == "" {
		return ErrInvalidTokenConfig
	}
	if _, ok, err := l.state.TokenGetInfo(token); err != nil {
		return err
	} else if ok {
		return ErrAlreadyRegistered
	}
	info := &Info{
		Name:        name,
		Symbol:      symbol,
		Decimals:    decimals,
		Admin:       addressKey(admin),
		PeggedAsset: peggedAsset,
		TotalSupply: big.NewInt(0),
	}
	if err := l.state.TokenPutInfo(token, info); err != nil {
		return err
	}
	l.emit(newRegisteredEvent(token, admin, symbol))
	return nil
}

func (l *Ledger) info(token crypto.Address) (*Info, error) {
	info, ok, err := l.state.TokenGetInfo(token)
	if err != nil {
		return nil, err
	}
	if !ok || info == nil {
		return nil, ErrNotFound
	}
	if info.TotalSupply == nil {
		info.TotalSupply = big.NewInt(0)
	}
	return info, nil
}

func (l *Ledger) requireAdmin(token crypto.Address, caller crypto.Address) (*Info, error) {
	info, err := l.info(token)
	if err != nil {
		return nil, err
	}
	if addressKey(caller) != info.Admin {
		return nil, ErrNotAuthorized
	}
	return info, nil
}

func (l *Ledger) requireUnfrozen(token, account crypto.Address) error {
	frozen, err := l.state.TokenFrozen(token, account)
	if err != nil {
		return err
	}
	if frozen {
		return ErrAccountFrozen
	}
	return nil
}

func (l *Ledger) credit(token, account crypto.Address, amount *big.Int) error {
	balance, err := l.state.TokenBalance(token, account)
	if err != nil {
		return err
	}
	return l.state.TokenSetBalance(token, account, new(big.Int).Add(balance, amount))
}

func (l *Ledger) debit(token, account crypto.Address, amount *big.Int) error {
	balance, err := l.state.TokenBalance(token, account)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	return l.state.TokenSetBalance(token, account, new(big.Int).Sub(balance, amount))
}

// Mint creates amount new units for the recipient. Admin-only.
func (l *Ledger) Mint(caller, token, to crypto.Address, amount *big.Int) error {
	if l == nil || l.state == nil {
		return ErrNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	info, err := l.requireAdmin(token, caller)
	if err != nil {
		return err
	}
	if err := l.requireUnfrozen(token, to); err != nil {
		return err
	}
	if err := l.credit(token, to, amount); err != nil {
		return err
	}
	info.TotalSupply = new(big.Int).Add(info.TotalSupply, amount)
	if err := l.state.TokenPutInfo(token, info); err != nil {
		return err
	}
	l.emit(newMintEvent(token, to, amount))
	return nil
}

// Clawback forcibly removes amount from an account, shrinking total supply.
// Admin-only; works on frozen accounts, that being the point.
func (l *Ledger) Clawback(caller, token, from crypto.Address, amount *big.Int) error {
	if l == nil || l.state == nil {
		return ErrNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	info, err := l.requireAdmin(token, caller)
	if err != nil {
		return err
	}
	if err := l.debit(token, from, amount); err != nil {
		return err
	}
	info.TotalSupply = new(big.Int).Sub(info.TotalSupply, amount)
	if info.TotalSupply.Sign() < 0 {
		info.TotalSupply = big.NewInt(0)
	}
	if err := l.state.TokenPutInfo(token, info); err != nil {
		return err
	}
	l.emit(newClawbackEvent(token, from, amount))
	return nil
}

// SetAuthorized freezes or unfreezes an account for the token. Admin-only.
func (l *Ledger) SetAuthorized(caller, token, account crypto.Address, authorized bool) error {
	if l == nil || l.state == nil {
		return ErrNilState
	}
	if _, err := l.requireAdmin(token, caller); err != nil {
		return err
	}
	if err := l.state.TokenSetFrozen(token, account, !authorized); err != nil {
		return err
	}
	l.emit(newAuthorizedEvent(token, account, authorized))
	return nil
}

// Authorized reports whether the account may transact in the token.
func (l *Ledger) Authorized(token, account crypto.Address) (bool, error) {
	if l == nil || l.state == nil {
		return false, ErrNilState
	}
	frozen, err := l.state.TokenFrozen(token, account)
	if err != nil {
		return false, err
	}
	return !frozen, nil
}

// Transfer moves amount between accounts. Both parties must be unfrozen and
// the module unpaused. Satisfies the lending engine's transfer boundary.
func (l *Ledger) Transfer(token, from, to crypto.Address, amount *big.Int) error {
	if l == nil || l.state == nil {
		return ErrNilState
	}
	if err := nativecommon.Guard(l.pauses, moduleName); err != nil {
		return err
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	if _, err := l.info(token); err != nil {
		return err
	}
	if err := l.requireUnfrozen(token, from); err != nil {
		return err
	}
	if err := l.requireUnfrozen(token, to); err != nil {
		return err
	}
	if err := l.debit(token, from, amount); err != nil {
		return err
	}
	if err := l.credit(token, to, amount); err != nil {
		return err
	}
	l.emit(newTransferEvent(token, from, to, amount))
	return nil
}

// Approve grants spender an expiring allowance over the owner's balance.
func (l *Ledger) Approve(token, owner, spender crypto.Address, amount *big.Int, expiresAt uint64) error {
	if l == nil || l.state == nil {
		return ErrNilState
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if amount.Sign() > 0 && expiresAt <= l.nowFn() {
		return ErrInvalidExpiration
	}
	if _, err := l.info(token); err != nil {
		return err
	}
	allowance := &Allowance{Amount: new(big.Int).Set(amount), ExpiresAt: expiresAt}
	if err := l.state.TokenPutAllowance(token, owner, spender, allowance); err != nil {
		return err
	}
	l.emit(newApproveEvent(token, owner, spender, amount, expiresAt))
	return nil
}

// Allowance returns the live allowance, zero when absent or expired.
func (l *Ledger) AllowanceOf(token, owner, spender crypto.Address) (*big.Int, error) {
	if l == nil || l.state == nil {
		return nil, ErrNilState
	}
	allowance, ok, err := l.state.TokenAllowance(token, owner, spender)
	if err != nil {
		return nil, err
	}
	if !ok || allowance == nil || allowance.Amount == nil {
		return big.NewInt(0), nil
	}
	if allowance.ExpiresAt <= l.nowFn() {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(allowance.Amount), nil
}

// TransferFrom spends from the owner's balance against the spender's
// allowance.
func (l *Ledger) TransferFrom(token, spender, owner, to crypto.Address, amount *big.Int) error {
	if l == nil || l.state == nil {
		return ErrNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	allowance, ok, err := l.state.TokenAllowance(token, owner, spender)
	if err != nil {
		return err
	}
	if !ok || allowance == nil || allowance.Amount == nil {
		return ErrAllowanceExceeded
	}
	if allowance.ExpiresAt <= l.nowFn() {
		return ErrAllowanceExpired
	}
	if allowance.Amount.Cmp(amount) < 0 {
		return ErrAllowanceExceeded
	}
	if err := l.Transfer(token, owner, to, amount); err != nil {
		return err
	}
	allowance.Amount = new(big.Int).Sub(allowance.Amount, amount)
	return l.state.TokenPutAllowance(token, owner, spender, allowance)
}

// BalanceOf returns the account's balance, zero for unknown accounts.
func (l *Ledger) BalanceOf(token, account crypto.Address) (*big.Int, error) {
	if l == nil || l.state == nil {
		return nil, ErrNilState
	}
	return l.state.TokenBalance(token, account)
}

// InfoOf returns the registered metadata for the token.
func (l *Ledger) InfoOf(token crypto.Address) (*Info, error) {
	if l == nil || l.state == nil {
		return nil, ErrNilState
	}
	return l.info(token)
}

func addressKey(addr crypto.Address) [20]byte {
	var key [20]byte
	copy(key[:], addr.Bytes())
	return key
}
