// Package redis persists session credentials in Redis so that several
// server replicas can share signed-in users.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/snooze/internal/session"
)

// Store handles Redis operations for session credentials.
// Expiry is delegated to Redis key TTLs.
type Store struct {
	client *redis.Client
	now    func() time.Time
}

// NewStore creates a new Redis session store
func NewStore(client *redis.Client) *Store {
	return &Store{client: client, now: time.Now}
}

var _ session.Store = (*Store)(nil)

// Save stores credentials until creds.ExpiresAt
func (s *Store) Save(ctx context.Context, sessionID string, creds session.Credentials) error {
	ttl := creds.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("session already expired at %s", creds.ExpiresAt.Format(time.RFC3339))
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, SessionKey(sessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get retrieves credentials, returning nil when the key is absent
func (s *Store) Get(ctx context.Context, sessionID string) (*session.Credentials, error) {
	data, err := s.client.Get(ctx, SessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var creds session.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &creds, nil
}

// Delete removes a session
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, SessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Count returns the number of live sessions
func (s *Store) Count(ctx context.Context) (int, error) {
	n := 0
	iter := s.client.Scan(ctx, 0, KeyPrefixSession+"*", 100).Iterator()
	for iter.Next(ctx) {
		if _, err := ExtractSessionID(iter.Val()); err != nil {
			continue // bare prefix, not a session
		}
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}
