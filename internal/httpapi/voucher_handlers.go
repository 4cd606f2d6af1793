package httpapi

import (
	"net/http"
	"strings"
	"time"

	"teampulse.org/internal/rewards"
)

type issueVoucherRequest struct {
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Value       int64      `json:"value"`
	Currency    string     `json:"currency"`
	ExpiresAt   *time.Time `json:"expiresAt"`
}

type updateVoucherRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Category    *string    `json:"category"`
	ExpiresAt   *time.Time `json:"expiresAt"`
}

func (a *API) handleVouchersCollection(w http.ResponseWriter, r *http.Request) {
	act, ok := mustActor(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodPost:
		var req issueVoucherRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		v, err := a.rewards.Issue(r.Context(), act, rewards.IssueInput{
			UserID:      req.UserID,
			Title:       req.Title,
			Description: req.Description,
			Category:    req.Category,
			Value:       req.Value,
			Currency:    req.Currency,
			ExpiresAt:   req.ExpiresAt,
		})
		if err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, v)
	case http.MethodGet:
		offset, limit, page, err := pagination(r)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		q := r.URL.Query()
		f := rewards.Filter{
			UserID:   q.Get("userId"),
			Category: q.Get("category"),
			Offset:   offset,
			Limit:    limit,
		}
		if raw := q.Get("isRedeemed"); raw != "" {
			redeemed := raw == "true"
			f.Redeemed = &redeemed
		}
		items, total, err := a.rewards.List(r.Context(), act, f)
		if err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		writePage(w, items, total, page, limit)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodGet)
	}
}

func (a *API) handleVoucherResource(w http.ResponseWriter, r *http.Request) {
	act, ok := mustActor(w, r)
	if !ok {
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/vouchers/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if id, action, found := strings.Cut(path, "/"); found {
		if action != "redeem" {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		v, err := a.rewards.Redeem(r.Context(), act, id)
		if err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
		return
	}

	switch r.Method {
	case http.MethodGet:
		v, err := a.rewards.Get(r.Context(), act, path)
		if err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	case http.MethodPut:
		var req updateVoucherRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		v, err := a.rewards.Update(r.Context(), act, path, rewards.UpdateInput{
			Title:       req.Title,
			Description: req.Description,
			Category:    req.Category,
			ExpiresAt:   req.ExpiresAt,
		})
		if err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	case http.MethodDelete:
		if err := a.rewards.Delete(r.Context(), act, path); err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}
