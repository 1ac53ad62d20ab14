package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/MrSnakeDoc/snooze/internal/domain"
)

func TestStatusAndMessageFor(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "stale token",
			err:         &domain.APIError{Op: "get_user", Status: http.StatusUnauthorized, Kind: domain.ErrAuth},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Please log in again.",
		},
		{
			name:        "not the author, no message",
			err:         &domain.APIError{Op: "remove_story", Status: http.StatusForbidden, Kind: domain.ErrAuth},
			wantStatus:  http.StatusForbidden,
			wantMessage: "Only the story's author can do that.",
		},
		{
			name:        "not the author, with message",
			err:         &domain.APIError{Op: "remove_story", Status: http.StatusForbidden, Kind: domain.ErrAuth, Message: "Unauthorized"},
			wantStatus:  http.StatusForbidden,
			wantMessage: "Unauthorized",
		},
		{
			name:        "conflict",
			err:         &domain.APIError{Op: "signup", Status: http.StatusConflict, Kind: domain.ErrValidation, Message: "Username already taken"},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Username already taken",
		},
		{
			name:        "invalid url",
			err:         domain.ErrInvalidURL,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Story URL must be an absolute http(s) address.",
		},
		{
			name:        "missing story",
			err:         &domain.APIError{Op: "add_favorite", Status: http.StatusNotFound, Kind: domain.ErrNotFound},
			wantStatus:  http.StatusNotFound,
			wantMessage: "That story no longer exists.",
		},
		{
			name:        "unreachable",
			err:         &domain.APIError{Op: "get_stories", Kind: domain.ErrNetwork, Err: errors.New("dial tcp: refused")},
			wantStatus:  http.StatusBadGateway,
			wantMessage: "The story service is unreachable, try again shortly.",
		},
		{
			name:        "malformed",
			err:         &domain.SchemaError{Op: "get_stories", Fields: []string{"storyId"}},
			wantStatus:  http.StatusBadGateway,
			wantMessage: "The story service sent an unexpected response.",
		},
		{
			name:        "unknown",
			err:         errors.New("boom"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Something went wrong.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.wantStatus {
				t.Errorf("statusFor() = %v, want %v", got, tt.wantStatus)
			}
			if got := messageFor(tt.err); got != tt.wantMessage {
				t.Errorf("messageFor() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}
