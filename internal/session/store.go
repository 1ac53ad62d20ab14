package session

import (
	"context"
	"time"
)

// Credentials are what the browser would otherwise keep in local storage:
// the service token and the username it was issued for.
type Credentials struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store keeps credentials by session id.
// Get returns (nil, nil) when the session is unknown or expired.
type Store interface {
	Save(ctx context.Context, sessionID string, creds Credentials) error
	Get(ctx context.Context, sessionID string) (*Credentials, error)
	Delete(ctx context.Context, sessionID string) error
}
