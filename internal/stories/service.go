// Package stories holds the data components of the site: the global
// StoryList and the signed-in User. Both are thin layers over the remote
// story API; every mutation is confirmed by the server before local state
// changes.
package stories

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/snooze/internal/domain"
	"github.com/MrSnakeDoc/snooze/internal/index"
	"github.com/MrSnakeDoc/snooze/internal/logger"
)

// API is the remote story service as seen by the data layer.
type API interface {
	GetStories(ctx context.Context) ([]domain.Story, error)
	CreateStory(ctx context.Context, token string, in domain.NewStory) (domain.Story, error)
	DeleteStory(ctx context.Context, token, storyID string) error

	Signup(ctx context.Context, username, password, name string) (domain.Session, error)
	Login(ctx context.Context, username, password string) (domain.Session, error)
	GetUser(ctx context.Context, token, username string) (domain.Profile, error)

	AddFavorite(ctx context.Context, token, username, storyID string) error
	RemoveFavorite(ctx context.Context, token, username, storyID string) error
}

// Service builds StoryList and User values bound to an API.
type Service struct {
	api    API
	logger logger.Logger
}

// NewService creates a new Service
func NewService(api API, log logger.Logger) *Service {
	return &Service{
		api:    api,
		logger: log,
	}
}

// EmptyList returns a list with no stories, bound to catalog.
func (s *Service) EmptyList(catalog *index.Catalog) *StoryList {
	return &StoryList{
		api:     s.api,
		catalog: catalog,
		ids:     []string{},
	}
}

// FetchAll loads every story from the service, in server order.
// No credential is needed.
func (s *Service) FetchAll(ctx context.Context, catalog *index.Catalog) (*StoryList, error) {
	records, err := s.api.GetStories(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch stories: %w", err)
	}

	list := s.EmptyList(catalog)
	list.ids = catalog.Put(records...)

	s.logger.Debug("fetched stories",
		logger.Int("count", list.Len()),
		logger.Int("catalog_size", catalog.Count()))
	return list, nil
}

// Signup registers a new account and returns it signed in.
func (s *Service) Signup(ctx context.Context, catalog *index.Catalog, username, password, name string) (*User, error) {
	sess, err := s.api.Signup(ctx, username, password, name)
	if err != nil {
		return nil, fmt.Errorf("signup %s: %w", username, err)
	}
	return s.newUser(catalog, sess.Profile, sess.Token), nil
}

// Login authenticates an existing account.
func (s *Service) Login(ctx context.Context, catalog *index.Catalog, username, password string) (*User, error) {
	sess, err := s.api.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("login %s: %w", username, err)
	}
	return s.newUser(catalog, sess.Profile, sess.Token), nil
}

// RestoreSession re-validates a stored token by fetching the profile.
// It never fails: any error yields nil so callers fall back to anonymous.
func (s *Service) RestoreSession(ctx context.Context, catalog *index.Catalog, token, username string) *User {
	if token == "" || username == "" {
		return nil
	}

	profile, err := s.api.GetUser(ctx, token, username)
	if err != nil {
		s.logger.Debug("restore session failed, continuing anonymous",
			logger.String("username", username),
			logger.Error(err))
		return nil
	}
	return s.newUser(catalog, profile, token)
}

func (s *Service) newUser(catalog *index.Catalog, p domain.Profile, token string) *User {
	return &User{
		Username:  p.Username,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
		token:     token,
		api:       s.api,
		catalog:   catalog,
		favorites: catalog.Put(p.Favorites...),
		own:       catalog.Put(p.Stories...),
	}
}

func errNoToken(op string) error {
	return &domain.APIError{Op: op, Kind: domain.ErrAuth, Message: "no session token"}
}
