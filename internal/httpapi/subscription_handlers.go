package httpapi

import (
	"net/http"
	"strings"

	"subcore.org/internal/audit"
	"subcore.org/internal/auth"
)

type createSubscriptionRequest struct {
	PlanID string `json:"plan_id"`
}

func (a *API) handleSubscriptionsCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok || claims.IsSys {
		writeError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createSubscriptionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	sub, err := a.svc.Subscriptions.Create(r.Context(), claims.AccountID, req.PlanID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "subscription.create", map[string]any{
		"subscription_id": sub.ID,
		"plan_id":         sub.PlanID,
	})
	w.Header().Set("Location", "/v1/subscriptions/"+sub.ID)
	writeJSON(w, http.StatusCreated, sub)
}

func (a *API) handleSubscriptionResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/subscriptions/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	sub, err := a.svc.Subscriptions.Get(r.Context(), id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// --- administrative surface ---

func (a *API) handleSysSubscriptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	subs, err := a.svc.Subscriptions.ListDetailed(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": subs})
}

// PATCH /v1/sys/subscriptions/{id} activates; a trailing /deactivate
// deactivates.
func (a *API) handleSysSubscriptionResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/sys/subscriptions/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodPatch {
		methodNotAllowed(w, r, http.MethodPatch)
		return
	}

	deactivate := false
	if rest, ok := strings.CutSuffix(path, "/deactivate"); ok {
		deactivate = true
		path = strings.TrimSuffix(rest, "/")
	}
	if path == "" || strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	var err error
	event := "subscription.activate"
	if deactivate {
		err = a.svc.Subscriptions.Deactivate(r.Context(), path)
		event = "subscription.deactivate"
	} else {
		err = a.svc.Subscriptions.Activate(r.Context(), path)
	}
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), event, map[string]any{"subscription_id": path})
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
