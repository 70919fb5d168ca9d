package httpapi

import (
	"net/http"
	"strings"

	"subcore.org/internal/audit"
	"subcore.org/internal/catalog"
)

type planRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Active      bool     `json:"is_active"`
	Tags        []string `json:"tags"`
	TrialDays   *int32   `json:"trial_days"`
}

type resourceRequest struct {
	PlanID      string `json:"plan_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Max         int64  `json:"max"`
}

func (p planRequest) params() catalog.PlanParams {
	return catalog.PlanParams{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Active:      p.Active,
		Tags:        p.Tags,
		TrialDays:   p.TrialDays,
	}
}

func (p resourceRequest) params() catalog.ResourceParams {
	return catalog.ResourceParams{
		PlanID:      p.PlanID,
		Name:        p.Name,
		Description: p.Description,
		Max:         p.Max,
	}
}

// --- authenticated reads ---

func (a *API) handlePlansCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	plans, err := a.svc.Catalog.ListPlans(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": plans})
}

func (a *API) handlePlanResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/plans/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	plan, err := a.svc.Catalog.GetPlan(r.Context(), id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (a *API) handleResourcesCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	res, err := a.svc.Catalog.ListResources(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": res})
}

func (a *API) handleResourceResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/resources/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	if planID, ok := strings.CutPrefix(path, "plan/"); ok {
		res, err := a.svc.Catalog.ListResourcesForPlan(r.Context(), planID)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": res})
		return
	}
	if strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	res, err := a.svc.Catalog.GetResource(r.Context(), path)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// --- administrative writes ---

func (a *API) handleSysPlansCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req planRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	plan, err := a.svc.Catalog.CreatePlan(r.Context(), req.params())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "plan.create", map[string]any{"plan_id": plan.ID})
	w.Header().Set("Location", "/v1/plans/"+plan.ID)
	writeJSON(w, http.StatusCreated, plan)
}

func (a *API) handleSysPlanResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/sys/plans/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	var req planRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	plan, err := a.svc.Catalog.UpdatePlan(r.Context(), id, req.params())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "plan.update", map[string]any{"plan_id": plan.ID})
	writeJSON(w, http.StatusOK, plan)
}

func (a *API) handleSysResourcesCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req resourceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	res, err := a.svc.Catalog.CreateResource(r.Context(), req.params())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "resource.create", map[string]any{"resource_id": res.ID})
	w.Header().Set("Location", "/v1/resources/"+res.ID)
	writeJSON(w, http.StatusCreated, res)
}

func (a *API) handleSysResourceResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/sys/resources/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	var req resourceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	res, err := a.svc.Catalog.UpdateResource(r.Context(), id, req.params())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "resource.update", map[string]any{"resource_id": res.ID})
	writeJSON(w, http.StatusOK, res)
}
