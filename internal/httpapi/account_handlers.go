package httpapi

import (
	"net/http"
	"strings"

	"subcore.org/internal/account"
	"subcore.org/internal/audit"
	"subcore.org/internal/auth"
)

type updateAccountRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

type delegateRequest struct {
	Username string `json:"username"`
}

func (a *API) handleAccountResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/accounts/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if rest, ok := strings.CutSuffix(path, "/children"); ok {
		a.listChildren(w, r, strings.TrimSuffix(rest, "/"))
		return
	}
	if rest, ok := strings.CutSuffix(path, "/delegate"); ok {
		a.delegate(w, r, strings.TrimSuffix(rest, "/"))
		return
	}
	if rest, ok := strings.CutSuffix(path, "/subscriptions"); ok {
		a.listAccountSubscriptions(w, r, strings.TrimSuffix(rest, "/"))
		return
	}
	if strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getAccount(w, r, path)
	case http.MethodPut:
		a.updateAccount(w, r, path)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut)
	}
}

func (a *API) getAccount(w http.ResponseWriter, r *http.Request, username string) {
	acc, err := a.svc.Accounts.Get(r.Context(), username)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

func (a *API) updateAccount(w http.ResponseWriter, r *http.Request, username string) {
	if err := requireSelfOrSys(r, username); err != nil {
		writeError(w, r, http.StatusForbidden, "forbidden")
		return
	}
	var req updateAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	acc, err := a.svc.Accounts.Update(r.Context(), username, account.UpdateParams{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "account.update", map[string]any{
		"account_id": acc.ID,
	})
	writeJSON(w, http.StatusOK, acc)
}

func (a *API) listChildren(w http.ResponseWriter, r *http.Request, username string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	links, err := a.svc.Subscriptions.Children(r.Context(), username)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": links})
}

// delegate copies the parent's subscription to the named child account.
func (a *API) delegate(w http.ResponseWriter, r *http.Request, parentUsername string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if err := requireSelfOrSys(r, parentUsername); err != nil {
		writeError(w, r, http.StatusForbidden, "forbidden")
		return
	}
	var req delegateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.svc.Subscriptions.Delegate(r.Context(), parentUsername, req.Username); err != nil {
		handleDomainError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "subscription.delegate", map[string]any{
		"parent": parentUsername,
		"child":  strings.TrimSpace(req.Username),
	})
	writeJSON(w, http.StatusOK, map[string]any{"status": "delegated"})
}

func (a *API) listAccountSubscriptions(w http.ResponseWriter, r *http.Request, username string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	subs, err := a.svc.Subscriptions.ListForAccount(r.Context(), username)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": subs})
}

// requireSelfOrSys lets an account act on its own resources and system actors
// act on any.
func requireSelfOrSys(r *http.Request, username string) error {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return auth.ErrUnauthorized
	}
	if claims.IsSys || strings.EqualFold(claims.Username, username) {
		return nil
	}
	return auth.ErrUnauthorized
}
