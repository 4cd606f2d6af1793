// Package httpapi exposes the REST surface of the TeamPulse server.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"teampulse.org/internal/budget"
	"teampulse.org/internal/directory"
	"teampulse.org/internal/feed"
	"teampulse.org/internal/obs"
	"teampulse.org/internal/recognition"
	"teampulse.org/internal/rewards"
	"teampulse.org/internal/stream"
)

// ReadyProbe — простая проверка готовности (например, ping БД).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Deps carries everything the HTTP layer talks to.
type Deps struct {
	Directory   *directory.Service
	Budgets     *budget.Service
	Recognition *recognition.Service
	Rewards     *rewards.Service
	Feed        *feed.Service
	Stream      *stream.Stream
	ReadyProbe  ReadyProbe
	TokenTTL    time.Duration
	Version     string
	// Development switches the 500 responder to include error detail.
	Development bool
}

// API — HTTP слой.
type API struct {
	mux         *http.ServeMux
	directory   *directory.Service
	budgets     *budget.Service
	recognition *recognition.Service
	rewards     *rewards.Service
	feed        *feed.Service
	stream      *stream.Stream
	readyProbe  ReadyProbe
	tokenTTL    time.Duration
	version     string
	development bool
	started     time.Time
}

func New(d Deps) *API {
	a := &API{
		mux:         http.NewServeMux(),
		directory:   d.Directory,
		budgets:     d.Budgets,
		recognition: d.Recognition,
		rewards:     d.Rewards,
		feed:        d.Feed,
		stream:      d.Stream,
		readyProbe:  d.ReadyProbe,
		tokenTTL:    d.TokenTTL,
		version:     d.Version,
		development: d.Development,
		started:     time.Now(),
	}
	if a.tokenTTL <= 0 {
		a.tokenTTL = 24 * time.Hour
	}

	// health/ready
	a.mux.HandleFunc("/health", a.Health)
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// auth
	a.mux.HandleFunc("/api/auth/register", a.handleRegister)
	a.mux.HandleFunc("/api/auth/login", a.handleLogin)
	a.mux.HandleFunc("/api/auth/me", a.handleMe)
	a.mux.HandleFunc("/api/auth/change-password", a.handleChangePassword)

	// users and teams
	a.mux.HandleFunc("/api/users", a.handleUsersCollection)
	a.mux.HandleFunc("/api/users/", a.handleUserResource)
	a.mux.HandleFunc("/api/teams", a.handleTeamsCollection)
	a.mux.HandleFunc("/api/teams/", a.handleTeamResource)

	// kudos and tags
	a.mux.HandleFunc("/api/kudos", a.handleKudosCollection)
	a.mux.HandleFunc("/api/kudos/", a.handleKudosResource)
	a.mux.HandleFunc("/api/tags", a.handleTags)

	// budgets
	a.mux.HandleFunc("/api/budgets/me", a.handleMyBudget)
	a.mux.HandleFunc("/api/budgets/allocate", a.handleAllocateBudget)
	a.mux.HandleFunc("/api/budgets/all", a.handleAllBudgets)
	a.mux.HandleFunc("/api/budgets/user/", a.handleUserBudget)

	// feedback and comments
	a.mux.HandleFunc("/api/feedback", a.handleFeedbackCollection)
	a.mux.HandleFunc("/api/feedback/", a.handleFeedbackResource)
	a.mux.HandleFunc("/api/comments", a.handleCommentsCollection)
	a.mux.HandleFunc("/api/comments/", a.handleCommentResource)

	// notifications and activity feed
	a.mux.HandleFunc("/api/notifications", a.handleNotifications)
	a.mux.HandleFunc("/api/notifications/", a.handleNotificationResource)
	a.mux.HandleFunc("/api/activities", a.handleActivities)
	a.mux.HandleFunc("/api/events", a.StreamEvents)

	// vouchers
	a.mux.HandleFunc("/api/vouchers", a.handleVouchersCollection)
	a.mux.HandleFunc("/api/vouchers/", a.handleVoucherResource)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler возвращает http.Handler для сервера: метрики поверх авторизации.
func (a *API) Handler() http.Handler {
	return obs.Instrument(RequestID(a.withAuth(a.mux)))
}

// --- Probes ---

// Health mirrors what the web client polls: status, server time, uptime.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(a.started).Round(time.Second).String(),
	})
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "teampulse-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}
