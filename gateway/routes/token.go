package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/akintewe/Neko-Oracle-RWA/crypto"
	"github.com/akintewe/Neko-Oracle-RWA/native/token"
)

// tokenRoutes exposes the RWA token ledger over HTTP.
type tokenRoutes struct {
	ledger *token.Ledger
}

func newTokenRoutes(ledger *token.Ledger) *tokenRoutes {
	return &tokenRoutes{ledger: ledger}
}

func (tr *tokenRoutes) mount(r chi.Router) {
	r.Post("/register", tr.register)
	r.Post("/mint", tr.mint)
	r.Post("/transfer", tr.transfer)
	r.Post("/transfer-from", tr.transferFrom)
	r.Post("/approve", tr.approve)
	r.Post("/clawback", tr.clawback)
	r.Post("/authorized", tr.setAuthorized)
	r.Get("/info/{token}", tr.getInfo)
	r.Get("/balance/{token}/{address}", tr.getBalance)
	r.Get("/allowance/{token}/{owner}/{spender}", tr.getAllowance)
}

type registerRequest struct {
	Token       string `json:"token"`
	Admin       string `json:"admin"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint32 `json:"decimals"`
	PeggedAsset string `json:"peggedAsset,omitempty"`
}

func (tr *tokenRoutes) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeRequest(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	tokenAddr, err := parseAddress(req.Token, "token", crypto.RWAPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	admin, err := parseAddress(req.Admin, "admin", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := tr.ledger.Register(tokenAddr, admin, strings.TrimSpace(req.Name), strings.TrimSpace(req.Symbol), req.Decimals, strings.TrimSpace(req.PeggedAsset)); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type mintRequest struct {
	Caller string `json:"caller"`
	Token  string `json:"token"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func (tr *tokenRoutes) mint(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if err := decodeRequest(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	caller, err := parseAddress(req.Caller, "caller", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	tokenAddr, err := parseAddress(req.Token, "token", crypto.RWAPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	to, err := parseAddress(req.To, "to", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	amount, err := parseAmount(req.Amount, "amount")
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := tr.ledger.Mint(caller, tokenAddr, to, amount); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type transferRequest struct {
	Token  string `json:"token"`
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func (tr *tokenRoutes) transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := decodeRequest(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	tokenAddr, err := parseAddress(req.Token, "token", crypto.RWAPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	from, err := parseAddress(req.From, "from", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	to, err := parseAddress(req.To, "to", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	amount, err := parseAmount(req.Amount, "amount")
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := tr.ledger.Transfer(tokenAddr, from, to, amount); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type transferFromRequest struct {
	Token   string `json:"token"`
	Spender string `json:"spender"`
	Owner   string `json:"owner"`
	To      string `json:"to"`
	Amount  string `json:"amount"`
}

func (tr *tokenRoutes) transferFrom(w http.ResponseWriter, r *http.Request) {
	var req transferFromRequest
	if err := decodeRequest(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	tokenAddr, err := parseAddress(req.Token, "token", crypto.RWAPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	spender, err := parseAddress(req.Spender, "spender", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	owner, err := parseAddress(req.Owner, "owner", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	to, err := parseAddress(req.To, "to", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	amount, err := parseAmount(req.Amount, "amount")
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := tr.ledger.TransferFrom(tokenAddr, spender, owner, to, amount); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type approveRequest struct {
	Token     string `json:"token"`
	Owner     string `json:"owner"`
	Spender   string `json:"spender"`
	Amount    string `json:"amount"`
	ExpiresAt uint64 `json:"expiresAt"`
}

func (tr *tokenRoutes) approve(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if err := decodeRequest(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	tokenAddr, err := parseAddress(req.Token, "token", crypto.RWAPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	owner, err := parseAddress(req.Owner, "owner", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	spender, err := parseAddress(req.Spender, "spender", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	amount, err := parseAmount(req.Amount, "amount")
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := tr.ledger.Approve(tokenAddr, owner, spender, amount, req.ExpiresAt); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type clawbackRequest struct {
	Caller string `json:"caller"`
	Token  string `json:"token"`
	From   string `json:"from"`
	Amount string `json:"amount"`
}

func (tr *tokenRoutes) clawback(w http.ResponseWriter, r *http.Request) {
	var req clawbackRequest
	if err := decodeRequest(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	caller, err := parseAddress(req.Caller, "caller", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	tokenAddr, err := parseAddress(req.Token, "token", crypto.RWAPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	from, err := parseAddress(req.From, "from", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	amount, err := parseAmount(req.Amount, "amount")
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := tr.ledger.Clawback(caller, tokenAddr, from, amount); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type authorizedRequest struct {
	Caller     string `json:"caller"`
	Token      string `json:"token"`
	Account    string `json:"account"`
	Authorized bool   `json:"authorized"`
}

func (tr *tokenRoutes) setAuthorized(w http.ResponseWriter, r *http.Request) {
	var req authorizedRequest
	if err := decodeRequest(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	caller, err := parseAddress(req.Caller, "caller", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	tokenAddr, err := parseAddress(req.Token, "token", crypto.RWAPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	account, err := parseAddress(req.Account, "account", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := tr.ledger.SetAuthorized(caller, tokenAddr, account, req.Authorized); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (tr *tokenRoutes) getInfo(w http.ResponseWriter, r *http.Request) {
	tokenAddr, err := parseAddress(chi.URLParam(r, "token"), "token", crypto.RWAPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	info, err := tr.ledger.InfoOf(tokenAddr)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        info.Name,
		"symbol":      info.Symbol,
		"decimals":    info.Decimals,
		"peggedAsset": info.PeggedAsset,
		"admin":       crypto.NewAddress(crypto.NekoPrefix, info.Admin[:]).String(),
		"totalSupply": bigString(info.TotalSupply),
	})
}

func (tr *tokenRoutes) getBalance(w http.ResponseWriter, r *http.Request) {
	tokenAddr, err := parseAddress(chi.URLParam(r, "token"), "token", crypto.RWAPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	account, err := parseAddress(chi.URLParam(r, "address"), "address", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	balance, err := tr.ledger.BalanceOf(tokenAddr, account)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"balance": bigString(balance)})
}

func (tr *tokenRoutes) getAllowance(w http.ResponseWriter, r *http.Request) {
	tokenAddr, err := parseAddress(chi.URLParam(r, "token"), "token", crypto.RWAPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	owner, err := parseAddress(chi.URLParam(r, "owner"), "owner", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	spender, err := parseAddress(chi.URLParam(r, "spender"), "spender", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	allowance, err := tr.ledger.AllowanceOf(tokenAddr, owner, spender)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"allowance": bigString(allowance)})
}
