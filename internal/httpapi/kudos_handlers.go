package httpapi

import (
	"net/http"
	"strings"

	"teampulse.org/internal/audit"
	"teampulse.org/internal/recognition"
)

type createKudosRequest struct {
	ToUserID       string   `json:"toUserId"`
	Message        string   `json:"message"`
	TagIDs         []string `json:"tagIds"`
	IsPublic       *bool    `json:"isPublic"`
	MonetaryAmount int64    `json:"monetaryAmount"`
	Currency       string   `json:"currency"`
}

type updateKudosRequest struct {
	Message  *string   `json:"message"`
	IsPublic *bool     `json:"isPublic"`
	TagIDs   *[]string `json:"tagIds"`
}

type reviewRequest struct {
	Reason string `json:"reason"`
}

func (a *API) handleKudosCollection(w http.ResponseWriter, r *http.Request) {
	act, ok := mustActor(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodPost:
		var req createKudosRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		public := true
		if req.IsPublic != nil {
			public = *req.IsPublic
		}
		k, err := a.recognition.CreateKudos(r.Context(), act, recognition.CreateKudosInput{
			RecipientID: req.ToUserID,
			Message:     req.Message,
			TagIDs:      req.TagIDs,
			Public:      public,
			Amount:      req.MonetaryAmount,
			Currency:    req.Currency,
		})
		if err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, k)
	case http.MethodGet:
		offset, limit, page, err := pagination(r)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		q := r.URL.Query()
		f := recognition.KudosFilter{
			SenderID:    q.Get("fromUserId"),
			RecipientID: q.Get("toUserId"),
			Status:      recognition.KudosStatus(strings.ToUpper(q.Get("status"))),
			Offset:      offset,
			Limit:       limit,
		}
		if raw := q.Get("isPublic"); raw != "" {
			public := raw == "true"
			f.Public = &public
		}
		items, total, err := a.recognition.ListKudos(r.Context(), act, f)
		if err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		writePage(w, items, total, page, limit)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodGet)
	}
}

func (a *API) handleKudosResource(w http.ResponseWriter, r *http.Request) {
	act, ok := mustActor(w, r)
	if !ok {
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/kudos/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if id, action, found := strings.Cut(path, "/"); found {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		var req reviewRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		var (
			k   *recognition.Kudos
			err error
		)
		switch action {
		case "approve":
			k, err = a.recognition.ApproveKudos(r.Context(), act, id, req.Reason)
		case "reject":
			k, err = a.recognition.RejectKudos(r.Context(), act, id, req.Reason)
		default:
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		if err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		_ = audit.LogEvent(audit.WithRequestID(r.Context(), RequestIDFromContext(r.Context())),
			"kudos."+action, map[string]any{"kudos_id": id})
		writeJSON(w, http.StatusOK, k)
		return
	}

	switch r.Method {
	case http.MethodGet:
		k, err := a.recognition.GetKudos(r.Context(), act, path)
		if err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, k)
	case http.MethodPut:
		var req updateKudosRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		k, err := a.recognition.UpdateKudos(r.Context(), act, path, recognition.UpdateKudosInput{
			Message: req.Message,
			Public:  req.IsPublic,
			TagIDs:  req.TagIDs,
		})
		if err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, k)
	case http.MethodDelete:
		if err := a.recognition.DeleteKudos(r.Context(), act, path); err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) handleTags(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := mustActor(w, r); !ok {
		return
	}
	tags, err := a.recognition.Tags(r.Context())
	if err != nil {
		a.respondDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": tags})
}
