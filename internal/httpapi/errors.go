package httpapi

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"teampulse.org/internal/budget"
	"teampulse.org/internal/directory"
	"teampulse.org/internal/feed"
	"teampulse.org/internal/recognition"
	"teampulse.org/internal/rewards"
)

// respondDomainError is the single place domain errors become HTTP statuses.
// Handlers do their own request validation; everything returned by a service
// goes through here.
func (a *API) respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, directory.ErrUnauthorized),
		errors.Is(err, budget.ErrUnauthorized),
		errors.Is(err, recognition.ErrUnauthorized),
		errors.Is(err, rewards.ErrUnauthorized):
		writeError(w, r, http.StatusForbidden, "forbidden")

	case errors.Is(err, directory.ErrNotFound),
		errors.Is(err, budget.ErrNotFound),
		errors.Is(err, recognition.ErrNotFound),
		errors.Is(err, rewards.ErrNotFound),
		errors.Is(err, feed.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "resource not found")

	case errors.Is(err, directory.ErrEmailTaken),
		errors.Is(err, directory.ErrAlreadyMember),
		errors.Is(err, rewards.ErrAlreadyRedeemed):
		writeError(w, r, http.StatusConflict, err.Error())

	case errors.Is(err, directory.ErrInvalidInput),
		errors.Is(err, directory.ErrInactive),
		errors.Is(err, recognition.ErrInvalidInput),
		errors.Is(err, recognition.ErrMessageLength),
		errors.Is(err, recognition.ErrUnknownTag),
		errors.Is(err, recognition.ErrNotPending),
		errors.Is(err, recognition.ErrCommentParent),
		errors.Is(err, budget.ErrInvalidAmount),
		errors.Is(err, budget.ErrNoBudget),
		errors.Is(err, budget.ErrInsufficientTotal),
		errors.Is(err, budget.ErrInsufficientMonthly),
		errors.Is(err, rewards.ErrInvalidInput),
		errors.Is(err, rewards.ErrExpired):
		writeError(w, r, http.StatusBadRequest, err.Error())

	default:
		log.WithFields(log.Fields{
			"request_id": RequestIDFromContext(r.Context()),
			"path":       r.URL.Path,
		}).WithError(err).Error("unhandled error")
		msg := "internal error"
		if a.development {
			msg = err.Error()
		}
		writeError(w, r, http.StatusInternalServerError, msg)
	}
}
