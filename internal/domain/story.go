package domain

import (
	"fmt"
	"net/url"
	"time"
)

// Story is a single story record as published by the remote service.
//
// A Story is a value: it is never mutated after construction, only
// replaced by a newer record carrying the same StoryID.
type Story struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// StoryID is the globally unique identifier assigned by the service.
	// It is the only key used for lookup and removal.
	StoryID string

	// ─────────────────────────────
	// Content
	// ─────────────────────────────

	Title  string
	Author string

	// URL is the link the story points at. It is stored as received and
	// only parsed when a hostname is needed.
	URL string

	// ─────────────────────────────
	// Provenance
	// ─────────────────────────────

	// Username is the account that posted the story.
	Username string

	CreatedAt time.Time
}

// HostName returns the authority component (host and optional port) of
// the story URL, e.g. "https://example.com/a/b?x=1" -> "example.com".
func (s Story) HostName() (string, error) {
	u, err := url.Parse(s.URL)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidURL, s.URL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not an absolute URL", ErrInvalidURL, s.URL)
	}
	return u.Host, nil
}

// NewStory holds the fields a user submits when posting a story.
type NewStory struct {
	Title  string
	Author string
	URL    string
}
