package stories

import (
	"context"
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/snooze/internal/domain"
	"github.com/MrSnakeDoc/snooze/internal/index"
)

// StoryList is the ordered global list of stories, newest first once
// stories are added locally.
type StoryList struct {
	mu      sync.RWMutex
	api     API
	catalog *index.Catalog
	ids     []string
}

// Stories resolves the list against the catalog, in list order.
func (l *StoryList) Stories() []domain.Story {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.catalog.Resolve(l.ids)
}

// Len returns the number of stories in the list
func (l *StoryList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.ids)
}

// AddStory posts a story as user. On success the story is prepended to
// both the list and the user's own stories.
func (l *StoryList) AddStory(ctx context.Context, user *User, in domain.NewStory) (domain.Story, error) {
	if user == nil || user.Token() == "" {
		return domain.Story{}, errNoToken("add_story")
	}

	story, err := l.api.CreateStory(ctx, user.Token(), in)
	if err != nil {
		return domain.Story{}, fmt.Errorf("add story: %w", err)
	}

	l.catalog.Put(story)

	l.mu.Lock()
	l.ids = prependID(l.ids, story.StoryID)
	l.mu.Unlock()

	user.prependOwn(story.StoryID)
	return story, nil
}

// RemoveStory deletes a story as user. Only after the server confirms is
// the id purged from the list, the user's own stories and favorites.
func (l *StoryList) RemoveStory(ctx context.Context, user *User, storyID string) error {
	if user == nil || user.Token() == "" {
		return errNoToken("remove_story")
	}

	if err := l.api.DeleteStory(ctx, user.Token(), storyID); err != nil {
		return fmt.Errorf("remove story %s: %w", storyID, err)
	}

	l.mu.Lock()
	l.ids = withoutID(l.ids, storyID)
	l.mu.Unlock()

	user.forget(storyID)
	l.catalog.Delete(storyID)
	return nil
}
