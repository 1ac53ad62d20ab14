// Package state is the per-request application state: the shared catalog,
// the global story list and the signed-in user, if any.
package state

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/snooze/internal/index"
	"github.com/MrSnakeDoc/snooze/internal/stories"
)

// Credentials identify a stored session to restore.
type Credentials struct {
	Token    string
	Username string
}

// State starts anonymous with an empty list and a fresh catalog.
type State struct {
	svc *stories.Service

	mu      sync.RWMutex
	catalog *index.Catalog
	list    *stories.StoryList
	user    *stories.User
}

// New returns anonymous state with no stories loaded.
func New(svc *stories.Service) *State {
	catalog := index.NewCatalog()
	return &State{
		svc:     svc,
		catalog: catalog,
		list:    svc.EmptyList(catalog),
	}
}

// Load builds state for one page view: the story list is fetched and, when
// creds is non-nil, the session is restored at the same time. A failed
// restore leaves the state anonymous; a failed fetch is returned.
func Load(ctx context.Context, svc *stories.Service, creds *Credentials) (*State, error) {
	s := New(svc)

	var (
		list *stories.StoryList
		user *stories.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		list, err = svc.FetchAll(gctx, s.catalog)
		return err
	})
	if creds != nil {
		g.Go(func() error {
			user = svc.RestoreSession(gctx, s.catalog, creds.Token, creds.Username)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.list = list
	s.user = user
	return s, nil
}

// Catalog returns the canonical story records shared by every list.
func (s *State) Catalog() *index.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// Stories returns the global story list in server order.
func (s *State) Stories() *stories.StoryList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list
}

// User returns the signed-in user or nil.
func (s *State) User() *stories.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// SignedIn reports whether a user is signed in.
func (s *State) SignedIn() bool {
	return s.User() != nil
}

// Login authenticates against the service and signs the user in.
func (s *State) Login(ctx context.Context, username, password string) (*stories.User, error) {
	u, err := s.svc.Login(ctx, s.Catalog(), username, password)
	if err != nil {
		return nil, err
	}
	s.SignIn(u)
	return u, nil
}

// Signup creates the account and signs it in.
func (s *State) Signup(ctx context.Context, username, password, name string) (*stories.User, error) {
	u, err := s.svc.Signup(ctx, s.Catalog(), username, password, name)
	if err != nil {
		return nil, err
	}
	s.SignIn(u)
	return u, nil
}

// SignIn replaces the current user.
func (s *State) SignIn(u *stories.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

// SignOut drops everything and starts over anonymous.
func (s *State) SignOut() {
	catalog := index.NewCatalog()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = catalog
	s.list = s.svc.EmptyList(catalog)
	s.user = nil
}
