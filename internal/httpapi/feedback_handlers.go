package httpapi

import (
	"net/http"
	"strings"

	"teampulse.org/internal/recognition"
)

type createFeedbackRequest struct {
	ToUserID    string `json:"toUserId"`
	Type        string `json:"type"`
	Message     string `json:"message"`
	IsPublic    bool   `json:"isPublic"`
	IsAnonymous bool   `json:"isAnonymous"`
}

type updateFeedbackRequest struct {
	Message  *string `json:"message"`
	IsPublic *bool   `json:"isPublic"`
	Type     *string `json:"type"`
}

type reviewFeedbackRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

type createCommentRequest struct {
	KudosID    string `json:"kudosId"`
	FeedbackID string `json:"feedbackId"`
	Message    string `json:"message"`
}

type updateCommentRequest struct {
	Message string `json:"message"`
}

func (a *API) handleFeedbackCollection(w http.ResponseWriter, r *http.Request) {
	act, ok := mustActor(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodPost:
		var req createFeedbackRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		fb, err := a.recognition.CreateFeedback(r.Context(), act, recognition.CreateFeedbackInput{
			RecipientID: req.ToUserID,
			Type:        recognition.FeedbackType(strings.ToUpper(req.Type)),
			Message:     req.Message,
			Public:      req.IsPublic,
			Anonymous:   req.IsAnonymous,
		})
		if err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, fb)
	case http.MethodGet:
		offset, limit, page, err := pagination(r)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		q := r.URL.Query()
		f := recognition.FeedbackFilter{
			SenderID:    q.Get("fromUserId"),
			RecipientID: q.Get("toUserId"),
			Type:        recognition.FeedbackType(strings.ToUpper(q.Get("type"))),
			Status:      recognition.FeedbackStatus(strings.ToUpper(q.Get("status"))),
			Offset:      offset,
			Limit:       limit,
		}
		items, total, err := a.recognition.ListFeedback(r.Context(), act, f)
		if err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		writePage(w, items, total, page, limit)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodGet)
	}
}

func (a *API) handleFeedbackResource(w http.ResponseWriter, r *http.Request) {
	act, ok := mustActor(w, r)
	if !ok {
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/feedback/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if id, action, found := strings.Cut(path, "/"); found {
		if action != "review" {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		var req reviewFeedbackRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		fb, err := a.recognition.ReviewFeedback(r.Context(), act, id,
			recognition.FeedbackStatus(strings.ToUpper(req.Status)), req.Note)
		if err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, fb)
		return
	}

	switch r.Method {
	case http.MethodGet:
		fb, err := a.recognition.GetFeedback(r.Context(), act, path)
		if err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, fb)
	case http.MethodPut:
		var req updateFeedbackRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		in := recognition.UpdateFeedbackInput{Message: req.Message, Public: req.IsPublic}
		if req.Type != nil {
			t := recognition.FeedbackType(strings.ToUpper(*req.Type))
			in.Type = &t
		}
		fb, err := a.recognition.UpdateFeedback(r.Context(), act, path, in)
		if err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, fb)
	case http.MethodDelete:
		if err := a.recognition.DeleteFeedback(r.Context(), act, path); err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

// --- Comments ---

func (a *API) handleCommentsCollection(w http.ResponseWriter, r *http.Request) {
	act, ok := mustActor(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodPost:
		var req createCommentRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		c, err := a.recognition.CreateComment(r.Context(), act, recognition.CreateCommentInput{
			KudosID:    req.KudosID,
			FeedbackID: req.FeedbackID,
			Message:    req.Message,
		})
		if err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	case http.MethodGet:
		offset, limit, page, err := pagination(r)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		q := r.URL.Query()
		items, total, err := a.recognition.ListComments(r.Context(),
			q.Get("kudosId"), q.Get("feedbackId"), offset, limit)
		if err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		writePage(w, items, total, page, limit)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodGet)
	}
}

func (a *API) handleCommentResource(w http.ResponseWriter, r *http.Request) {
	act, ok := mustActor(w, r)
	if !ok {
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/comments/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req updateCommentRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		c, err := a.recognition.UpdateComment(r.Context(), act, id, req.Message)
		if err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	case http.MethodDelete:
		if err := a.recognition.DeleteComment(r.Context(), act, id); err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodPut, http.MethodDelete)
	}
}
