package httpapi

import (
	"net/http"
	"strings"

	"teampulse.org/internal/audit"
	"teampulse.org/internal/auth"
	"teampulse.org/internal/directory"
)

type registerRequest struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Password   string `json:"password"`
	Department string `json:"department"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string          `json:"token"`
	User  *directory.User `json:"user"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type profileUpdateRequest struct {
	Name       *string `json:"name"`
	Department *string `json:"department"`
	Role       *string `json:"role"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Password) < 8 {
		writeError(w, r, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	u, err := a.directory.Register(r.Context(), directory.RegisterInput{
		Email:      req.Email,
		Name:       req.Name,
		Password:   req.Password,
		Department: req.Department,
	})
	if err != nil {
		a.respondDomainError(w, r, err)
		return
	}

	token, err := auth.GenerateToken(u.ID, string(u.Role), a.tokenTTL)
	if err != nil {
		a.respondDomainError(w, r, err)
		return
	}

	_ = audit.LogEvent(audit.WithRequestID(r.Context(), RequestIDFromContext(r.Context())),
		"user.registered", map[string]any{"email": u.Email})
	writeJSON(w, http.StatusCreated, tokenResponse{Token: token, User: u})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	u, err := a.directory.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		// no detail: не раскрываем, существует ли аккаунт
		writeError(w, r, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := auth.GenerateToken(u.ID, string(u.Role), a.tokenTTL)
	if err != nil {
		a.respondDomainError(w, r, err)
		return
	}

	_ = audit.LogEvent(audit.WithRequestID(auth.ContextWithUser(r.Context(), u.ID, string(u.Role)),
		RequestIDFromContext(r.Context())),
		"user.login", map[string]any{"email": u.Email})
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, User: u})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	act, ok := mustActor(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		u, err := a.directory.Get(r.Context(), act.ID)
		if err != nil {
			a.respondDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	case http.MethodPut:
		a.updateUser(w, r, act, act.ID)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut)
	}
}

func (a *API) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	act, ok := mustActor(w, r)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.NewPassword) < 8 {
		writeError(w, r, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}
	if err := a.directory.ChangePassword(r.Context(), act.ID, req.CurrentPassword, req.NewPassword); err != nil {
		a.respondDomainError(w, r, err)
		return
	}
	_ = audit.LogEvent(audit.WithRequestID(r.Context(), RequestIDFromContext(r.Context())),
		"user.password_changed", nil)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// updateUser is shared between PUT /api/auth/me and PUT /api/users/{id}.
func (a *API) updateUser(w http.ResponseWriter, r *http.Request, act directory.Actor, userID string) {
	var req profileUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	upd := directory.ProfileUpdate{Name: req.Name, Department: req.Department}
	if req.Role != nil {
		role := directory.Role(strings.ToUpper(strings.TrimSpace(*req.Role)))
		upd.Role = &role
	}
	u, err := a.directory.Update(r.Context(), act, userID, upd)
	if err != nil {
		a.respondDomainError(w, r, err)
		return
	}
	if req.Role != nil {
		_ = audit.LogEvent(audit.WithRequestID(r.Context(), RequestIDFromContext(r.Context())),
			"user.role_changed", map[string]any{"target": userID, "role": string(u.Role)})
	}
	writeJSON(w, http.StatusOK, u)
}
