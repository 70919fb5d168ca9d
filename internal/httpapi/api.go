// Package httpapi is the HTTP transport: routing, authentication, request
// decoding and the error-to-status mapping over the domain services.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"subcore.org/internal/account"
	"subcore.org/internal/auth"
	"subcore.org/internal/catalog"
	"subcore.org/internal/obs"
	"subcore.org/internal/payment"
	"subcore.org/internal/rbac"
	"subcore.org/internal/subscription"
)

// ReadyProbe pings the database for /readyz.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Services bundles the domain services the API serves.
type Services struct {
	Auth          *auth.Service
	Accounts      *account.Service
	Catalog       *catalog.Service
	Subscriptions *subscription.Service
	Payments      *payment.Service
	RBAC          *rbac.Service
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string
	svc        Services
}

func New(rp ReadyProbe, version string, svc Services) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: rp,
		version:    version,
		svc:        svc,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// auth
	a.mux.HandleFunc("/v1/auth/login", a.handleLogin)
	a.mux.HandleFunc("/v1/auth/register", a.handleRegister)
	a.mux.HandleFunc("/v1/auth/refresh", a.handleRefresh)
	a.mux.HandleFunc("/v1/auth/change-secret", a.handleChangeSecret)
	a.mux.HandleFunc("/v1/auth/me", a.handleMe)

	// accounts (delegation lives under the account resource)
	a.mux.HandleFunc("/v1/accounts/", a.handleAccountResource)

	// catalog reads
	a.mux.HandleFunc("/v1/plans", a.handlePlansCollection)
	a.mux.HandleFunc("/v1/plans/", a.handlePlanResource)
	a.mux.HandleFunc("/v1/resources", a.handleResourcesCollection)
	a.mux.HandleFunc("/v1/resources/", a.handleResourceResource)

	// subscriptions
	a.mux.HandleFunc("/v1/subscriptions", a.handleSubscriptionsCollection)
	a.mux.HandleFunc("/v1/subscriptions/", a.handleSubscriptionResource)

	// payments
	a.mux.HandleFunc("/v1/payments", a.handlePaymentsCollection)

	// administrative surface, gated on is_sys
	a.mux.HandleFunc("/v1/sys/login", a.handleSysLogin)
	a.mux.HandleFunc("/v1/sys/me", a.requireSys(a.handleSysMe))
	a.mux.HandleFunc("/v1/sys/accounts", a.requireSys(a.handleSysAccounts))
	a.mux.HandleFunc("/v1/sys/plans", a.requireSys(a.handleSysPlansCollection))
	a.mux.HandleFunc("/v1/sys/plans/", a.requireSys(a.handleSysPlanResource))
	a.mux.HandleFunc("/v1/sys/resources", a.requireSys(a.handleSysResourcesCollection))
	a.mux.HandleFunc("/v1/sys/resources/", a.requireSys(a.handleSysResourceResource))
	a.mux.HandleFunc("/v1/sys/subscriptions", a.requireSys(a.handleSysSubscriptions))
	a.mux.HandleFunc("/v1/sys/subscriptions/", a.requireSys(a.handleSysSubscriptionResource))
	a.mux.HandleFunc("/v1/sys/payments", a.requireSys(a.handleSysPayments))
	a.mux.HandleFunc("/v1/sys/roles", a.requireSys(a.handleRolesCollection))
	a.mux.HandleFunc("/v1/sys/roles/", a.requireSys(a.handleRoleResource))
	a.mux.HandleFunc("/v1/sys/permissions", a.requireSys(a.handlePermissionsCollection))

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler wraps the mux with authentication and metrics.
func (a *API) Handler() http.Handler {
	return obs.Instrument(a.withAuth(a.mux))
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "subcore-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "subcore-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
