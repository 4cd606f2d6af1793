package httpapi

import (
	"net/http"
	"strings"

	"teampulse.org/internal/audit"
)

type allocateBudgetRequest struct {
	UserID       string `json:"userId"`
	TotalDelta   int64  `json:"totalDelta"`
	MonthlyDelta int64  `json:"monthlyDelta"`
}

func (a *API) handleMyBudget(w http.ResponseWriter, r *http.Request) {
	act, ok := mustActor(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		b, err := a.budgets.Get(r.Context(), act.ID)
		if err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	case http.MethodPut:
		// self-allocation; the service enforces the staff gate
		var req allocateBudgetRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		b, err := a.budgets.Allocate(r.Context(), act, act.ID, req.TotalDelta, req.MonthlyDelta)
		if err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut)
	}
}

func (a *API) handleAllocateBudget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	act, ok := mustActor(w, r)
	if !ok {
		return
	}
	var req allocateBudgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, r, http.StatusBadRequest, "userId is required")
		return
	}
	b, err := a.budgets.Allocate(r.Context(), act, req.UserID, req.TotalDelta, req.MonthlyDelta)
	if err != nil {
		a.respondDomainError(w, r, err)
		return
	}
	_ = audit.LogEvent(audit.WithRequestID(r.Context(), RequestIDFromContext(r.Context())),
		"budget.allocated", map[string]any{
			"target":        req.UserID,
			"total_delta":   req.TotalDelta,
			"monthly_delta": req.MonthlyDelta,
		})
	writeJSON(w, http.StatusOK, b)
}

func (a *API) handleAllBudgets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	act, ok := mustActor(w, r)
	if !ok {
		return
	}
	offset, limit, page, err := pagination(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	items, total, err := a.budgets.ListAll(r.Context(), act, offset, limit)
	if err != nil {
		a.respondDomainError(w, r, err)
		return
	}
	writePage(w, items, total, page, limit)
}

func (a *API) handleUserBudget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	act, ok := mustActor(w, r)
	if !ok {
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/budgets/user/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	b, err := a.budgets.GetForUser(r.Context(), act, id)
	if err != nil {
		a.respondDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}
