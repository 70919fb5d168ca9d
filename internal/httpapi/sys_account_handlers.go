package httpapi

import (
	"net/http"

	"subcore.org/internal/account"
	"subcore.org/internal/audit"
)

func (a *API) handleSysAccounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.sysCreateAccount(w, r)
	case http.MethodGet:
		a.sysListAccounts(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) sysCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	acc, err := a.svc.Accounts.Create(r.Context(), account.CreateParams{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Secret:   req.Password,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "account.sys_create", map[string]any{
		"account_id": acc.ID,
		"username":   acc.Username,
	})
	w.Header().Set("Location", "/v1/accounts/"+acc.Username)
	writeJSON(w, http.StatusCreated, acc)
}

func (a *API) sysListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := a.svc.Accounts.List(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": accounts})
}
