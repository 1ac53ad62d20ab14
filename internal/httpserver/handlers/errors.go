package handlers

import (
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/snooze/internal/domain"
)

// forbidden reports an auth error caused by acting on someone else's
// story rather than by a missing or stale login.
func forbidden(err error) bool {
	var apiErr *domain.APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusForbidden
}

// statusFor maps an error kind onto the status of the re-rendered page.
func statusFor(err error) int {
	if forbidden(err) {
		return http.StatusForbidden
	}
	switch kind := domain.KindOf(err); {
	case errors.Is(kind, domain.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(kind, domain.ErrValidation), errors.Is(kind, domain.ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(kind, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(kind, domain.ErrNetwork), errors.Is(kind, domain.ErrService), errors.Is(kind, domain.ErrMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// messageFor is the text shown to the user. Service-provided messages
// for client errors are passed through.
func messageFor(err error) string {
	var apiErr *domain.APIError
	kind := domain.KindOf(err)

	if errors.As(err, &apiErr) && apiErr.Message != "" &&
		(errors.Is(kind, domain.ErrAuth) || errors.Is(kind, domain.ErrValidation) || errors.Is(kind, domain.ErrNotFound)) {
		return apiErr.Message
	}

	switch {
	case forbidden(err):
		return "Only the story's author can do that."
	case errors.Is(kind, domain.ErrAuth):
		return "Please log in again."
	case errors.Is(kind, domain.ErrValidation):
		return "The story service rejected that request."
	case errors.Is(kind, domain.ErrInvalidURL):
		return "Story URL must be an absolute http(s) address."
	case errors.Is(kind, domain.ErrNotFound):
		return "That story no longer exists."
	case errors.Is(kind, domain.ErrNetwork):
		return "The story service is unreachable, try again shortly."
	case errors.Is(kind, domain.ErrMalformedResponse):
		return "The story service sent an unexpected response."
	case errors.Is(kind, domain.ErrService):
		return "The story service failed, try again shortly."
	default:
		return "Something went wrong."
	}
}
