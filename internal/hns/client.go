// Package hns is the client for the remote hack-or-snooze story API.
// Every response is decoded into typed records and validated before it
// reaches the data layer; HTTP failures are mapped onto domain error
// kinds.
package hns

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/MrSnakeDoc/snooze/internal/domain"
	"github.com/MrSnakeDoc/snooze/internal/logger"
	"github.com/MrSnakeDoc/snooze/internal/metrics"
)

// DefaultBaseURL is the public hack-or-snooze deployment.
const DefaultBaseURL = "https://hack-or-snooze-v3.herokuapp.com"

// Options configures a Client.
type Options struct {
	BaseURL string        // API root, without trailing slash
	Timeout time.Duration // per-request timeout, 0 = none
}

// Client talks to the story API. It is safe for concurrent use.
type Client struct {
	http   *resty.Client
	logger logger.Logger
}

// New creates a new API client
func New(opts Options, log logger.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}

	rc := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	if opts.Timeout > 0 {
		rc.SetTimeout(opts.Timeout)
	}

	return &Client{http: rc, logger: log}
}

// BaseURL returns the API root the client was configured with.
func (c *Client) BaseURL() string {
	return c.http.BaseURL
}

// GetStories lists every story, unauthenticated.
func (c *Client) GetStories(ctx context.Context) ([]domain.Story, error) {
	var out storiesResponse
	if err := c.do(ctx, "get_stories", http.MethodGet, "/stories", c.http.R().SetResult(&out)); err != nil {
		return nil, err
	}
	if err := check("get_stories", out); err != nil {
		return nil, err
	}
	return toStories(out.Stories), nil
}

// CreateStory posts a new story on behalf of the token's owner.
func (c *Client) CreateStory(ctx context.Context, token string, in domain.NewStory) (domain.Story, error) {
	var out storyResponse
	req := c.http.R().
		SetBody(newStoryRequest{
			Token: token,
			Story: storyFields{Title: in.Title, Author: in.Author, URL: in.URL},
		}).
		SetResult(&out)

	if err := c.do(ctx, "create_story", http.MethodPost, "/stories", req); err != nil {
		return domain.Story{}, err
	}
	if err := check("create_story", out); err != nil {
		return domain.Story{}, err
	}
	return out.Story.toDomain(), nil
}

// DeleteStory removes a story the token's owner posted.
func (c *Client) DeleteStory(ctx context.Context, token, storyID string) error {
	req := c.http.R().
		SetPathParam("storyId", storyID).
		SetBody(tokenRequest{Token: token})
	return c.do(ctx, "delete_story", http.MethodDelete, "/stories/{storyId}", req)
}

// Signup creates an account and returns it with a fresh token.
func (c *Client) Signup(ctx context.Context, username, password, name string) (domain.Session, error) {
	return c.session(ctx, "signup", "/signup", credentials{Username: username, Password: password, Name: name})
}

// Login authenticates an account and returns it with a fresh token.
func (c *Client) Login(ctx context.Context, username, password string) (domain.Session, error) {
	return c.session(ctx, "login", "/login", credentials{Username: username, Password: password})
}

// GetUser fetches the profile of username, validating token in the process.
func (c *Client) GetUser(ctx context.Context, token, username string) (domain.Profile, error) {
	var out userResponse
	req := c.http.R().
		SetPathParam("username", username).
		SetQueryParam("token", token).
		SetResult(&out)

	if err := c.do(ctx, "get_user", http.MethodGet, "/users/{username}", req); err != nil {
		return domain.Profile{}, err
	}
	if err := check("get_user", out); err != nil {
		return domain.Profile{}, err
	}
	return out.User.toDomain(), nil
}

// AddFavorite marks storyID as a favorite of username.
func (c *Client) AddFavorite(ctx context.Context, token, username, storyID string) error {
	return c.favorite(ctx, "add_favorite", http.MethodPost, token, username, storyID)
}

// RemoveFavorite unmarks storyID as a favorite of username.
func (c *Client) RemoveFavorite(ctx context.Context, token, username, storyID string) error {
	return c.favorite(ctx, "remove_favorite", http.MethodDelete, token, username, storyID)
}

func (c *Client) favorite(ctx context.Context, op, method, token, username, storyID string) error {
	req := c.http.R().
		SetPathParams(map[string]string{"username": username, "storyId": storyID}).
		SetBody(tokenRequest{Token: token})
	return c.do(ctx, op, method, "/users/{username}/favorites/{storyId}", req)
}

func (c *Client) session(ctx context.Context, op, path string, creds credentials) (domain.Session, error) {
	var out sessionResponse
	req := c.http.R().
		SetBody(credentialsRequest{User: creds}).
		SetResult(&out)

	if err := c.do(ctx, op, http.MethodPost, path, req); err != nil {
		return domain.Session{}, err
	}
	if err := check(op, out); err != nil {
		return domain.Session{}, err
	}
	return domain.Session{Profile: out.User.toDomain(), Token: out.Token}, nil
}

// do executes req and maps any failure onto a *domain.APIError.
func (c *Client) do(ctx context.Context, op, method, path string, req *resty.Request) error {
	var errBody errorResponse
	req.SetContext(ctx).SetError(&errBody)

	start := time.Now()
	resp, err := req.Execute(method, path)
	elapsed := time.Since(start)

	callErr := classify(op, resp, err, errBody)
	outcome := "ok"
	if callErr != nil {
		outcome = outcomeLabel(callErr)
	}
	metrics.ObserveAPICall(op, outcome, elapsed)

	c.logger.Debug("api call",
		logger.String("op", op),
		logger.String("method", method),
		logger.String("path", path),
		logger.Int("status", statusOf(resp)),
		logger.String("outcome", outcome),
		logger.Duration("duration", elapsed))

	return callErr
}

func classify(op string, resp *resty.Response, err error, errBody errorResponse) error {
	status := statusOf(resp)

	if err != nil {
		// A response arrived but its body could not be decoded.
		if status >= 200 && status < 300 {
			return &domain.SchemaError{Op: op, Err: err}
		}
		if status == 0 {
			return &domain.APIError{Op: op, Kind: domain.ErrNetwork, Err: err}
		}
	}

	if status >= 200 && status < 300 {
		return nil
	}

	return &domain.APIError{
		Op:      op,
		Status:  status,
		Message: errBody.message(),
		Kind:    KindForStatus(status),
	}
}

// KindForStatus maps a non-success HTTP status onto an error kind.
func KindForStatus(status int) error {
	switch status {
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return domain.ErrValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrAuth
	case http.StatusNotFound:
		return domain.ErrNotFound
	default:
		return domain.ErrService
	}
}

func statusOf(resp *resty.Response) int {
	if resp == nil || resp.RawResponse == nil {
		return 0
	}
	return resp.StatusCode()
}

func outcomeLabel(err error) string {
	switch kind := domain.KindOf(err); {
	case errors.Is(kind, domain.ErrAuth):
		return "auth"
	case errors.Is(kind, domain.ErrValidation):
		return "validation"
	case errors.Is(kind, domain.ErrNotFound):
		return "not_found"
	case errors.Is(kind, domain.ErrMalformedResponse):
		return "malformed"
	case errors.Is(kind, domain.ErrNetwork):
		return "network"
	default:
		return "service"
	}
}
