package httpapi

import (
	"net/http"
	"strings"
)

func (a *API) handleNotifications(w http.ResponseWriter, r *http.Request) {
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
	items, total, err := a.feed.Notifications(r.Context(), act.ID, offset, limit)
	if err != nil {
		a.respondDomainError(w, r, err)
		return
	}
	writePage(w, items, total, page, limit)
}

func (a *API) handleNotificationResource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	act, ok := mustActor(w, r)
	if !ok {
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/notifications/")

	if path == "read-all" {
		n, err := a.feed.MarkAllRead(r.Context(), act.ID)
		if err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"marked": n})
		return
	}

	id, ok := strings.CutSuffix(path, "/read")
	if !ok || id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if err := a.feed.MarkRead(r.Context(), act.ID, id); err != nil {
		a.respondDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (a *API) handleActivities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := mustActor(w, r); !ok {
		return
	}
	offset, limit, page, err := pagination(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	items, total, err := a.feed.Activities(r.Context(), offset, limit)
	if err != nil {
		a.respondDomainError(w, r, err)
		return
	}
	writePage(w, items, total, page, limit)
}
