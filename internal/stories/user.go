package stories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/snooze/internal/domain"
	"github.com/MrSnakeDoc/snooze/internal/index"
)

// User is the signed-in account. Own stories and favorites are ordered
// id sequences resolved through the shared catalog.
type User struct {
	// Username is unique and never changes.
	Username  string
	Name      string
	CreatedAt time.Time

	token   string
	api     API
	catalog *index.Catalog

	mu        sync.RWMutex
	favorites []string
	own       []string
}

// Token returns the session token issued by the service.
func (u *User) Token() string {
	return u.token
}

// Favorites returns the user's favorite stories in favorite order.
func (u *User) Favorites() []domain.Story {
	u.mu.RLock()
	defer u.mu.RUnlock()

	return u.catalog.Resolve(u.favorites)
}

// OwnStories returns the stories posted by the user, newest first.
func (u *User) OwnStories() []domain.Story {
	u.mu.RLock()
	defer u.mu.RUnlock()

	return u.catalog.Resolve(u.own)
}

// IsFavorite reports whether storyID is among the user's favorites.
func (u *User) IsFavorite(storyID string) bool {
	u.mu.RLock()
	defer u.mu.RUnlock()

	return containsID(u.favorites, storyID)
}

// IsOwn reports whether the user posted storyID.
func (u *User) IsOwn(storyID string) bool {
	u.mu.RLock()
	defer u.mu.RUnlock()

	return containsID(u.own, storyID)
}

// AddFavorite marks story as a favorite on the server, then appends it
// locally.
func (u *User) AddFavorite(ctx context.Context, story domain.Story) error {
	if u.token == "" {
		return errNoToken("add_favorite")
	}

	if err := u.api.AddFavorite(ctx, u.token, u.Username, story.StoryID); err != nil {
		return fmt.Errorf("add favorite %s: %w", story.StoryID, err)
	}

	u.catalog.Put(story)

	u.mu.Lock()
	defer u.mu.Unlock()
	if !containsID(u.favorites, story.StoryID) {
		u.favorites = append(u.favorites, story.StoryID)
	}
	return nil
}

// RemoveFavorite unmarks storyID on the server, then drops it locally.
// A failed request leaves favorites untouched.
func (u *User) RemoveFavorite(ctx context.Context, storyID string) error {
	if u.token == "" {
		return errNoToken("remove_favorite")
	}

	if err := u.api.RemoveFavorite(ctx, u.token, u.Username, storyID); err != nil {
		return fmt.Errorf("remove favorite %s: %w", storyID, err)
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.favorites = withoutID(u.favorites, storyID)
	return nil
}

func (u *User) prependOwn(storyID string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.own = prependID(u.own, storyID)
}

// forget purges storyID from both of the user's sequences.
func (u *User) forget(storyID string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.own = withoutID(u.own, storyID)
	u.favorites = withoutID(u.favorites, storyID)
}
