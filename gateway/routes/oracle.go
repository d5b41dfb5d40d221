package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/akintewe/Neko-Oracle-RWA/oracle"
)

// oracleRoutes exposes the static price book used as the engine's RWA and
// reflector feeds. Prices are posted by operators and read back by the
// engine on every valuation.
type oracleRoutes struct {
	prices *oracle.Static
}

func newOracleRoutes(prices *oracle.Static) *oracleRoutes {
	return &oracleRoutes{prices: prices}
}

func (or *oracleRoutes) mount(r chi.Router) {
	r.Post("/price", or.setPrice)
	r.Get("/price/{ref}", or.getPrice)
	r.Get("/refs", or.listRefs)
}

type setPriceRequest struct {
	Ref       string `json:"ref"`
	Price     string `json:"price"`
	Timestamp uint64 `json:"timestamp,omitempty"`
}

func (or *oracleRoutes) setPrice(w http.ResponseWriter, r *http.Request) {
	var req setPriceRequest
	if err := decodeRequest(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	ref := strings.TrimSpace(req.Ref)
	if ref == "" {
		writeBadRequest(w, errRefRequired)
		return
	}
	price, err := parseAmount(req.Price, "price")
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if req.Timestamp > 0 {
		or.prices.SetAt(ref, price, req.Timestamp)
	} else {
		or.prices.Set(ref, price)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (or *oracleRoutes) getPrice(w http.ResponseWriter, r *http.Request) {
	ref := strings.TrimSpace(chi.URLParam(r, "ref"))
	if ref == "" {
		writeBadRequest(w, errRefRequired)
		return
	}
	data, ok, err := or.prices.LastPrice(ref)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no price recorded for ref"})
		return
	}
	decimals, err := or.prices.Decimals()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ref":       ref,
		"price":     bigString(data.Price),
		"timestamp": data.Timestamp,
		"decimals":  decimals,
	})
}

func (or *oracleRoutes) listRefs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"refs": or.prices.Refs()})
}
