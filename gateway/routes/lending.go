package routes

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/akintewe/Neko-Oracle-RWA/crypto"
	"github.com/akintewe/Neko-Oracle-RWA/native/lending"
)

// lendingRoutes exposes the lending engine over HTTP. Amounts travel as
// base-10 strings so arbitrarily large values survive JSON.
type lendingRoutes struct {
	engine *lending.Engine
}

func newLendingRoutes(engine *lending.Engine) *lendingRoutes {
	return &lendingRoutes{engine: engine}
}

func (lr *lendingRoutes) mount(r chi.Router) {
	r.Get("/pool", lr.getPool)
	r.Get("/reserves/{asset}", lr.getReserve)
	r.Get("/positions/{address}", lr.getPosition)
	r.Get("/positions/{address}/health", lr.getHealthFactor)
	r.Get("/positions/{address}/limit", lr.getBorrowLimit)
	r.Get("/balances/{asset}/{address}", lr.getLenderBalance)
	r.Post("/supply", lr.supply)
	r.Post("/withdraw", lr.withdraw)
	r.Post("/borrow", lr.borrow)
	r.Post("/repay", lr.repay)
	r.Post("/collateral/add", lr.addCollateral)
	r.Post("/collateral/remove", lr.removeCollateral)
	r.Post("/liquidations/initiate", lr.initiateLiquidation)
	r.Post("/liquidations/fill", lr.fillAuction)
	r.Get("/auctions/{id}", lr.getAuction)
	r.Post("/backstop/deposit", lr.backstopDeposit)
	r.Post("/backstop/queue", lr.backstopQueue)
	r.Post("/backstop/withdraw", lr.backstopWithdraw)
	r.Get("/backstop/{address}", lr.getBackstopDeposit)
	r.Post("/accrue", lr.accrue)
}

type poolView struct {
	State               string `json:"state"`
	Admin               string `json:"admin"`
	BackstopThreshold   string `json:"backstopThreshold"`
	BackstopTakeRateBps uint32 `json:"backstopTakeRateBps"`
	BackstopTotal       string `json:"backstopTotal"`
	QueuedWithdrawals   int    `json:"queuedWithdrawals"`
}

type reserveView struct {
	PoolBalance    string `json:"poolBalance"`
	LenderRate     string `json:"lenderRate"`
	LenderSupply   string `json:"lenderSupply"`
	BorrowerRate   string `json:"borrowerRate"`
	BorrowerSupply string `json:"borrowerSupply"`
	RateModifier   string `json:"rateModifier"`
	BackstopCredit string `json:"backstopCredit"`
	LastAccrual    uint64 `json:"lastAccrual"`
}

type collateralView struct {
	Token  string `json:"token"`
	Amount string `json:"amount"`
}

type positionView struct {
	Collateral     []collateralView `json:"collateral"`
	DebtAsset      string           `json:"debtAsset,omitempty"`
	BorrowerShares string           `json:"borrowerShares"`
	CreatedAt      uint64           `json:"createdAt"`
	LastUpdate     uint64           `json:"lastUpdate"`
}

type auctionView struct {
	ID               string `json:"id"`
	Borrower         string `json:"borrower"`
	Token            string `json:"token"`
	DebtAsset        string `json:"debtAsset"`
	CollateralAmount string `json:"collateralAmount"`
	DebtAmount       string `json:"debtAmount"`
	StartedAt        uint64 `json:"startedAt"`
	Status           string `json:"status"`
}

func poolToView(pool *lending.Pool) poolView {
	return poolView{
		State:               pool.State.String(),
		Admin:               crypto.NewAddress(crypto.NekoPrefix, pool.Admin[:]).String(),
		BackstopThreshold:   bigString(pool.BackstopThreshold),
		BackstopTakeRateBps: pool.BackstopTakeRateBps,
		BackstopTotal:       bigString(pool.BackstopTotal),
		QueuedWithdrawals:   len(pool.WithdrawalQueue),
	}
}

func reserveToView(reserve *lending.Reserve) reserveView {
	return reserveView{
		PoolBalance:    bigString(reserve.PoolBalance),
		LenderRate:     bigString(reserve.LenderRate),
		LenderSupply:   bigString(reserve.LenderSupply),
		BorrowerRate:   bigString(reserve.BorrowerRate),
		BorrowerSupply: bigString(reserve.BorrowerSupply),
		RateModifier:   bigString(reserve.RateModifier),
		BackstopCredit: bigString(reserve.BackstopCredit),
		LastAccrual:    reserve.LastAccrual,
	}
}

func positionToView(position *lending.Position) positionView {
	view := positionView{
		Collateral:     make([]collateralView, 0, len(position.Collateral)),
		DebtAsset:      position.DebtAsset,
		BorrowerShares: bigString(position.BorrowerShares),
		CreatedAt:      position.CreatedAt,
		LastUpdate:     position.LastUpdate,
	}
	for _, entry := range position.Collateral {
		view.Collateral = append(view.Collateral, collateralView{
			Token:  crypto.NewAddress(crypto.RWAPrefix, entry.Token[:]).String(),
			Amount: bigString(entry.Amount),
		})
	}
	return view
}

func auctionToView(auction *lending.Auction) auctionView {
	return auctionView{
		ID:               "0x" + hex.EncodeToString(auction.ID[:]),
		Borrower:         crypto.NewAddress(crypto.NekoPrefix, auction.Borrower[:]).String(),
		Token:            crypto.NewAddress(crypto.RWAPrefix, auction.RWAToken[:]).String(),
		DebtAsset:        auction.DebtAsset,
		CollateralAmount: bigString(auction.CollateralAmount),
		DebtAmount:       bigString(auction.DebtAmount),
		StartedAt:        auction.StartedAt,
		Status:           auction.Status.String(),
	}
}

func (lr *lendingRoutes) getPool(w http.ResponseWriter, r *http.Request) {
	pool, err := lr.engine.Pool()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, poolToView(pool))
}

func (lr *lendingRoutes) getReserve(w http.ResponseWriter, r *http.Request) {
	asset := strings.TrimSpace(chi.URLParam(r, "asset"))
	if asset == "" {
		writeBadRequest(w, fmt.Errorf("asset is required"))
		return
	}
	reserve, err := lr.engine.Reserve(asset)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reserveToView(reserve))
}

func (lr *lendingRoutes) getPosition(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddress(chi.URLParam(r, "address"), "address", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	position, err := lr.engine.Position(addr)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, positionToView(position))
}

func (lr *lendingRoutes) getHealthFactor(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddress(chi.URLParam(r, "address"), "address", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	hf, err := lr.engine.CalculateHealthFactor(addr)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"healthFactor": hf})
}

func (lr *lendingRoutes) getBorrowLimit(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddress(chi.URLParam(r, "address"), "address", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	limit, err := lr.engine.BorrowLimit(addr)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"borrowLimit": bigString(limit)})
}

func (lr *lendingRoutes) getLenderBalance(w http.ResponseWriter, r *http.Request) {
	asset := strings.TrimSpace(chi.URLParam(r, "asset"))
	if asset == "" {
		writeBadRequest(w, fmt.Errorf("asset is required"))
		return
	}
	addr, err := parseAddress(chi.URLParam(r, "address"), "address", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	balance, err := lr.engine.LenderBalance(addr, asset)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"balance": bigString(balance)})
}

type supplyRequest struct {
	Supplier string `json:"supplier"`
	Asset    string `json:"asset"`
	Amount   string `json:"amount"`
}

func (lr *lendingRoutes) supply(w http.ResponseWriter, r *http.Request) {
	var req supplyRequest
	if err := decodeRequest(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	supplier, err := parseAddress(req.Supplier, "supplier", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	amount, err := parseAmount(req.Amount, "amount")
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	shares, err := lr.engine.Deposit(supplier, strings.TrimSpace(req.Asset), amount)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"sharesMinted": bigString(shares)})
}

func (lr *lendingRoutes) withdraw(w http.ResponseWriter, r *http.Request) {
	var req supplyRequest
	if err := decodeRequest(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	supplier, err := parseAddress(req.Supplier, "supplier", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	amount, err := parseAmount(req.Amount, "amount")
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	withdrawn, err := lr.engine.Withdraw(supplier, strings.TrimSpace(req.Asset), amount)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"amountWithdrawn": bigString(withdrawn)})
}

type borrowRequest struct {
	Borrower string `json:"borrower"`
	Asset    string `json:"asset"`
	Amount   string `json:"amount"`
}

func (lr *lendingRoutes) borrow(w http.ResponseWriter, r *http.Request) {
	var req borrowRequest
	if err := decodeRequest(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	borrower, err := parseAddress(req.Borrower, "borrower", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	amount, err := parseAmount(req.Amount, "amount")
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := lr.engine.Borrow(borrower, strings.TrimSpace(req.Asset), amount); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type repayRequest struct {
	Borrower string `json:"borrower"`
	Asset    string `json:"asset"`
	Shares   string `json:"shares"`
}

func (lr *lendingRoutes) repay(w http.ResponseWriter, r *http.Request) {
	var req repayRequest
	if err := decodeRequest(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	borrower, err := parseAddress(req.Borrower, "borrower", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	shares, err := parseAmount(req.Shares, "shares")
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	repaid, err := lr.engine.Repay(borrower, strings.TrimSpace(req.Asset), shares)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"amountRepaid": bigString(repaid)})
}

type collateralRequest struct {
	Borrower string `json:"borrower"`
	Token    string `json:"token"`
	Amount   string `json:"amount"`
}

func (lr *lendingRoutes) addCollateral(w http.ResponseWriter, r *http.Request) {
	borrower, tokenAddr, amount, err := parseCollateralRequest(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := lr.engine.AddCollateral(borrower, tokenAddr, amount); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (lr *lendingRoutes) removeCollateral(w http.ResponseWriter, r *http.Request) {
	borrower, tokenAddr, amount, err := parseCollateralRequest(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := lr.engine.RemoveCollateral(borrower, tokenAddr, amount); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func parseCollateralRequest(r *http.Request) (crypto.Address, crypto.Address, *big.Int, error) {
	var req collateralRequest
	if err := decodeRequest(r, &req); err != nil {
		return crypto.Address{}, crypto.Address{}, nil, err
	}
	borrower, err := parseAddress(req.Borrower, "borrower", crypto.NekoPrefix)
	if err != nil {
		return crypto.Address{}, crypto.Address{}, nil, err
	}
	tokenAddr, err := parseAddress(req.Token, "token", crypto.RWAPrefix)
	if err != nil {
		return crypto.Address{}, crypto.Address{}, nil, err
	}
	amount, err := parseAmount(req.Amount, "amount")
	if err != nil {
		return crypto.Address{}, crypto.Address{}, nil, err
	}
	return borrower, tokenAddr, amount, nil
}

type liquidationRequest struct {
	Borrower   string `json:"borrower"`
	Token      string `json:"token"`
	DebtAsset  string `json:"debtAsset"`
	PercentBps uint32 `json:"percentBps"`
}

func (lr *lendingRoutes) initiateLiquidation(w http.ResponseWriter, r *http.Request) {
	var req liquidationRequest
	if err := decodeRequest(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	borrower, err := parseAddress(req.Borrower, "borrower", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	tokenAddr, err := parseAddress(req.Token, "token", crypto.RWAPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	id, err := lr.engine.InitiateLiquidation(borrower, tokenAddr, strings.TrimSpace(req.DebtAsset), req.PercentBps)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"auctionId": "0x" + hex.EncodeToString(id[:])})
}

type fillRequest struct {
	Liquidator string `json:"liquidator"`
	AuctionID  string `json:"auctionId"`
}

func (lr *lendingRoutes) fillAuction(w http.ResponseWriter, r *http.Request) {
	var req fillRequest
	if err := decodeRequest(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	liquidator, err := parseAddress(req.Liquidator, "liquidator", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	id, err := parseAuctionID(req.AuctionID)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := lr.engine.FillAuction(liquidator, id); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (lr *lendingRoutes) getAuction(w http.ResponseWriter, r *http.Request) {
	id, err := parseAuctionID(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	auction, err := lr.engine.AuctionByID(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, auctionToView(auction))
}

func parseAuctionID(raw string) ([32]byte, error) {
	var id [32]byte
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return id, fmt.Errorf("auctionId: %w", err)
	}
	if len(decoded) != len(id) {
		return id, fmt.Errorf("auctionId: expected %d bytes, got %d", len(id), len(decoded))
	}
	copy(id[:], decoded)
	return id, nil
}

type backstopRequest struct {
	Depositor string `json:"depositor"`
	Amount    string `json:"amount"`
}

func (lr *lendingRoutes) backstopDeposit(w http.ResponseWriter, r *http.Request) {
	depositor, amount, err := parseBackstopRequest(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := lr.engine.DepositToBackstop(depositor, amount); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (lr *lendingRoutes) backstopQueue(w http.ResponseWriter, r *http.Request) {
	depositor, amount, err := parseBackstopRequest(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := lr.engine.InitiateBackstopWithdrawal(depositor, amount); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (lr *lendingRoutes) backstopWithdraw(w http.ResponseWriter, r *http.Request) {
	depositor, amount, err := parseBackstopRequest(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := lr.engine.WithdrawFromBackstop(depositor, amount); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func parseBackstopRequest(r *http.Request) (crypto.Address, *big.Int, error) {
	var req backstopRequest
	if err := decodeRequest(r, &req); err != nil {
		return crypto.Address{}, nil, err
	}
	depositor, err := parseAddress(req.Depositor, "depositor", crypto.NekoPrefix)
	if err != nil {
		return crypto.Address{}, nil, err
	}
	amount, err := parseAmount(req.Amount, "amount")
	if err != nil {
		return crypto.Address{}, nil, err
	}
	return depositor, amount, nil
}

func (lr *lendingRoutes) getBackstopDeposit(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddress(chi.URLParam(r, "address"), "address", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	deposit, err := lr.engine.BackstopDepositOf(addr)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"amount":            bigString(deposit.Amount),
		"depositedAt":       deposit.DepositedAt,
		"inWithdrawalQueue": deposit.InWithdrawalQueue,
		"queuedAt":          deposit.QueuedAt,
	})
}

type accrueRequest struct {
	Asset string `json:"asset"`
}

func (lr *lendingRoutes) accrue(w http.ResponseWriter, r *http.Request) {
	var req accrueRequest
	if err := decodeRequest(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	asset := strings.TrimSpace(req.Asset)
	if asset == "" {
		writeBadRequest(w, fmt.Errorf("asset is required"))
		return
	}
	if err := lr.engine.AccrueInterest(asset); err != nil {
		writeEngineError(w, err)
		return
	}
	reserve, err := lr.engine.Reserve(asset)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reserveToView(reserve))
}
