package httpapi

import (
	"net/http"
	"strings"

	"teampulse.org/internal/directory"
)

func (a *API) handleUsersCollection(w http.ResponseWriter, r *http.Request) {
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
	f := directory.UserFilter{
		Department:      r.URL.Query().Get("department"),
		IncludeInactive: r.URL.Query().Get("includeInactive") == "true",
		Offset:          offset,
		Limit:           limit,
	}
	users, total, err := a.directory.List(r.Context(), act, f)
	if err != nil {
		a.respondDomainError(w, r, err)
		return
	}
	writePage(w, users, total, page, limit)
}

func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/users/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	if path == "leaderboard" {
		a.leaderboard(w, r)
		return
	}

	act, ok := mustActor(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		u, err := a.directory.Get(r.Context(), path)
		if err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	case http.MethodPut:
		a.updateUser(w, r, act, path)
	case http.MethodDelete:
		// soft delete: деактивация, записи kudos остаются
		if err := a.directory.Deactivate(r.Context(), act, path); err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) leaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := mustActor(w, r); !ok {
		return
	}
	limit, err := parsePositiveInt(r.URL.Query().Get("limit"), 10, 1, 100)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 100")
		return
	}
	users, err := a.directory.Leaderboard(r.Context(), limit)
	if err != nil {
		a.respondDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": users})
}

// --- Teams ---

type teamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type addMemberRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

func (a *API) handleTeamsCollection(w http.ResponseWriter, r *http.Request) {
	act, ok := mustActor(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodPost:
		var req teamRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		t, err := a.directory.CreateTeam(r.Context(), act, req.Name, req.Description)
		if err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, t)
	case http.MethodGet:
		offset, limit, page, err := pagination(r)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		teams, total, err := a.directory.ListTeams(r.Context(), offset, limit)
		if err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		writePage(w, teams, total, page, limit)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodGet)
	}
}

func (a *API) handleTeamResource(w http.ResponseWriter, r *http.Request) {
	act, ok := mustActor(w, r)
	if !ok {
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/teams/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	// /api/teams/{id}/members[/{userId}]
	if id, rest, found := strings.Cut(path, "/"); found {
		if rest == "members" {
			a.teamMembers(w, r, act, id)
			return
		}
		if memberID, ok := strings.CutPrefix(rest, "members/"); ok && memberID != "" {
			a.removeTeamMember(w, r, act, id, memberID)
			return
		}
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		t, err := a.directory.GetTeam(r.Context(), path)
		if err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	case http.MethodPut:
		var req teamRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		t, err := a.directory.UpdateTeam(r.Context(), act, path, req.Name, req.Description)
		if err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	case http.MethodDelete:
		if err := a.directory.DeleteTeam(r.Context(), act, path); err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) teamMembers(w http.ResponseWriter, r *http.Request, act directory.Actor, teamID string) {
	switch r.Method {
	case http.MethodGet:
		members, err := a.directory.TeamMembers(r.Context(), teamID)
		if err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": members})
	case http.MethodPost:
		var req addMemberRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		role := directory.TeamRole(strings.ToUpper(strings.TrimSpace(req.Role)))
		if req.Role == "" {
			role = directory.TeamRoleMember
		}
		if err := a.directory.AddTeamMember(r.Context(), act, teamID, req.UserID, role); err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) removeTeamMember(w http.ResponseWriter, r *http.Request, act directory.Actor, teamID, userID string) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, http.MethodDelete)
		return
	}
	if err := a.directory.RemoveTeamMember(r.Context(), act, teamID, userID); err != nil {
		a.respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
