package index

import (
	"sync"

	"github.com/MrSnakeDoc/snooze/internal/domain"
)

// Catalog is the canonical storyId -> Story mapping of one application
// state. Lists (global, own stories, favorites) only hold ids and resolve
// them here, so a story exists exactly once in memory.
type Catalog struct {
	mu      sync.RWMutex
	stories map[string]domain.Story // StoryID -> Story
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		stories: make(map[string]domain.Story),
	}
}

// Put adds or replaces stories and returns their ids in input order
func (c *Catalog) Put(stories ...domain.Story) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, len(stories))
	for _, story := range stories {
		c.stories[story.StoryID] = story
		ids = append(ids, story.StoryID)
	}
	return ids
}

// Get retrieves a story by id
func (c *Catalog) Get(id string) (domain.Story, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	story, ok := c.stories[id]
	return story, ok
}

// Resolve maps ids to stories, preserving order. Unknown ids are skipped.
func (c *Catalog) Resolve(ids []string) []domain.Story {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Story, 0, len(ids))
	for _, id := range ids {
		if story, ok := c.stories[id]; ok {
			out = append(out, story)
		}
	}
	return out
}

// Delete removes a story from the catalog
func (c *Catalog) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.stories, id)
}

// Count returns the number of stories in the catalog
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.stories)
}
