package httpapi

import (
	"net/http"

	"subcore.org/internal/audit"
	"subcore.org/internal/payment"
)

type createPaymentRequest struct {
	SubscriptionID string `json:"subscription_id"`
	Amount         int64  `json:"amount"`
	Method         string `json:"payment_method"`
}

func (a *API) handlePaymentsCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req createPaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	p, err := a.svc.Payments.Record(r.Context(), payment.RecordParams{
		SubscriptionID: req.SubscriptionID,
		Amount:         req.Amount,
		Method:         req.Method,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "payment.record", map[string]any{
		"payment_id":      p.ID,
		"subscription_id": p.SubscriptionID,
		"amount":          p.Amount,
	})
	writeJSON(w, http.StatusCreated, p)
}

func (a *API) handleSysPayments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	items, err := a.svc.Payments.ListDetailed(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
