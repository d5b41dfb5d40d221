package routes

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/akintewe/Neko-Oracle-RWA/gateway/middleware"
	"github.com/akintewe/Neko-Oracle-RWA/native/lending"
	"github.com/akintewe/Neko-Oracle-RWA/native/token"
	"github.com/akintewe/Neko-Oracle-RWA/oracle"
)

// Config wires the daemon's components into the HTTP surface. The lending
// group covers pool usage, the admin group the governance surface, and the
// token and oracle groups their respective ledgers.
type Config struct {
	Engine *lending.Engine
	Ledger *token.Ledger
	Prices *oracle.Static

	Authenticator *middleware.Authenticator
	RateLimiter   *middleware.RateLimiter
	Observability *middleware.Observability
	CORS          middleware.CORSConfig

	AdminScopes []string
}

// New builds the gateway handler.
func New(cfg Config) (http.Handler, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("nil lending engine")
	}
	if cfg.Ledger == nil {
		return nil, fmt.Errorf("nil token ledger")
	}
	if cfg.Prices == nil {
		return nil, fmt.Errorf("nil price book")
	}

	r := chi.NewRouter()
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.RequestID())

	obs := cfg.Observability
	if obs != nil {
		r.Use(obs.Middleware("root"))
		r.Get("/metrics", obs.MetricsHandler().ServeHTTP)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	adminScopes := cfg.AdminScopes
	if len(adminScopes) == 0 {
		adminScopes = []string{"lending.admin"}
	}

	mountGroup(r, "/v1/lending", "lending", cfg, nil, newLendingRoutes(cfg.Engine).mount)
	mountGroup(r, "/v1/admin", "admin", cfg, adminScopes, newAdminRoutes(cfg.Engine).mount)
	mountGroup(r, "/v1/token", "token", cfg, nil, newTokenRoutes(cfg.Ledger).mount)
	mountGroup(r, "/v1/oracle", "admin", cfg, adminScopes, newOracleRoutes(cfg.Prices).mount)

	return r, nil
}

func mountGroup(r chi.Router, prefix, limitKey string, cfg Config, scopes []string, mount func(chi.Router)) {
	r.Route(prefix, func(sr chi.Router) {
		if cfg.RateLimiter != nil && limitKey != "" {
			sr.Use(cfg.RateLimiter.Middleware(limitKey))
		}
		if cfg.Authenticator != nil {
			sr.Use(cfg.Authenticator.Middleware(scopes...))
		}
		if cfg.Observability != nil {
			sr.Use(cfg.Observability.Middleware(prefix))
		}
		mount(sr)
	})
}
