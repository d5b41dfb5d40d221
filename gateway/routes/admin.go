package routes

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/akintewe/Neko-Oracle-RWA/crypto"
	"github.com/akintewe/Neko-Oracle-RWA/native/lending"
)

// adminRoutes exposes the governance surface of the lending pool. Every
// operation names its caller explicitly; the engine enforces that the caller
// matches the registered pool admin.
type adminRoutes struct {
	engine *lending.Engine
}

func newAdminRoutes(engine *lending.Engine) *adminRoutes {
	return &adminRoutes{engine: engine}
}

func (ar *adminRoutes) mount(r chi.Router) {
	r.Post("/initialize", ar.initialize)
	r.Post("/collateral-factor", ar.setCollateralFactor)
	r.Post("/interest-params", ar.setInterestParams)
	r.Post("/pool-state", ar.setPoolState)
	r.Post("/backstop/threshold", ar.setBackstopThreshold)
	r.Post("/backstop/take-rate", ar.setBackstopTakeRate)
	r.Post("/backstop/token", ar.setBackstopToken)
	r.Post("/token-contract", ar.setTokenContract)
}

type initializeRequest struct {
	Admin               string `json:"admin"`
	RWAOracle           string `json:"rwaOracle"`
	ReflectorOracle     string `json:"reflectorOracle"`
	BackstopThreshold   string `json:"backstopThreshold"`
	BackstopTakeRateBps uint32 `json:"backstopTakeRateBps"`
}

func (ar *adminRoutes) initialize(w http.ResponseWriter, r *http.Request) {
	var req initializeRequest
	if err := decodeRequest(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	admin, err := parseAddress(req.Admin, "admin", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	rwaOracle, err := parseAddress(req.RWAOracle, "rwaOracle", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	refOracle, err := parseAddress(req.ReflectorOracle, "reflectorOracle", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	threshold, err := parseAmount(req.BackstopThreshold, "backstopThreshold")
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := ar.engine.Initialize(admin, rwaOracle, refOracle, threshold, req.BackstopTakeRateBps); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type collateralFactorRequest struct {
	Caller    string `json:"caller"`
	Token     string `json:"token"`
	FactorBps uint32 `json:"factorBps"`
}

func (ar *adminRoutes) setCollateralFactor(w http.ResponseWriter, r *http.Request) {
	var req collateralFactorRequest
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
	if err := ar.engine.SetCollateralFactor(caller, tokenAddr, req.FactorBps); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type interestParamsRequest struct {
	Caller            string `json:"caller"`
	Asset             string `json:"asset"`
	TargetUtilization uint32 `json:"targetUtilization"`
	BaseRate          uint32 `json:"baseRate"`
	Slope1            uint32 `json:"slope1"`
	Slope2            uint32 `json:"slope2"`
	Slope3            uint32 `json:"slope3"`
	Reactivity        uint32 `json:"reactivity"`
}

func (ar *adminRoutes) setInterestParams(w http.ResponseWriter, r *http.Request) {
	var req interestParamsRequest
	if err := decodeRequest(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	caller, err := parseAddress(req.Caller, "caller", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	params := lending.InterestRateParams{
		TargetUtilization: req.TargetUtilization,
		BaseRate:          req.BaseRate,
		Slope1:            req.Slope1,
		Slope2:            req.Slope2,
		Slope3:            req.Slope3,
		Reactivity:        req.Reactivity,
	}
	if err := ar.engine.SetInterestRateParams(caller, strings.TrimSpace(req.Asset), params); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type poolStateRequest struct {
	Caller string `json:"caller"`
	State  string `json:"state"`
}

func (ar *adminRoutes) setPoolState(w http.ResponseWriter, r *http.Request) {
	var req poolStateRequest
	if err := decodeRequest(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	caller, err := parseAddress(req.Caller, "caller", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	state, err := parsePoolState(req.State)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := ar.engine.SetPoolState(caller, state); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func parsePoolState(raw string) (lending.PoolState, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "active":
		return lending.PoolActive, nil
	case "on_ice", "onice":
		return lending.PoolOnIce, nil
	case "frozen":
		return lending.PoolFrozen, nil
	}
	return 0, fmt.Errorf("state: expected active, on_ice or frozen")
}

type backstopThresholdRequest struct {
	Caller    string `json:"caller"`
	Threshold string `json:"threshold"`
}

func (ar *adminRoutes) setBackstopThreshold(w http.ResponseWriter, r *http.Request) {
	var req backstopThresholdRequest
	if err := decodeRequest(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	caller, err := parseAddress(req.Caller, "caller", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	threshold, err := parseAmount(req.Threshold, "threshold")
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := ar.engine.SetBackstopThreshold(caller, threshold); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type backstopTakeRateRequest struct {
	Caller      string `json:"caller"`
	TakeRateBps uint32 `json:"takeRateBps"`
}

func (ar *adminRoutes) setBackstopTakeRate(w http.ResponseWriter, r *http.Request) {
	var req backstopTakeRateRequest
	if err := decodeRequest(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	caller, err := parseAddress(req.Caller, "caller", crypto.NekoPrefix)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := ar.engine.SetBackstopTakeRate(caller, req.TakeRateBps); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type backstopTokenRequest struct {
	Caller string `json:"caller"`
	Token  string `json:"token"`
}

func (ar *adminRoutes) setBackstopToken(w http.ResponseWriter, r *http.Request) {
	var req backstopTokenRequest
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
	if err := ar.engine.SetBackstopToken(caller, tokenAddr); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type tokenContractRequest struct {
	Caller string `json:"caller"`
	Asset  string `json:"asset"`
	Token  string `json:"token"`
}

func (ar *adminRoutes) setTokenContract(w http.ResponseWriter, r *http.Request) {
	var req tokenContractRequest
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
	if err := ar.engine.SetTokenContract(caller, strings.TrimSpace(req.Asset), tokenAddr); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
