package hns

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/snooze/internal/domain"
	"github.com/MrSnakeDoc/snooze/internal/logger"
)

const aliceJSON = `{
	"username": "alice",
	"name": "Alice",
	"createdAt": "2024-01-02T03:04:05.678Z",
	"favorites": [],
	"stories": []
}`

type recorded struct {
	method string
	path   string
	query  string
	body   map[string]any
}

func newTestClient(t *testing.T, routes func(r chi.Router, seen *[]recorded)) (*Client, *[]recorded) {
	t.Helper()
	seen := &[]recorded{}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			rec := recorded{method: req.Method, path: req.URL.Path, query: req.URL.RawQuery}
			if data, _ := io.ReadAll(req.Body); len(data) > 0 {
				_ = json.Unmarshal(data, &rec.body)
			}
			*seen = append(*seen, rec)
			next.ServeHTTP(w, req)
		})
	})
	routes(r, seen)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL, Timeout: 2 * time.Second}, logger.New("error", false)), seen
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestGetStories(t *testing.T) {
	c, seen := newTestClient(t, func(r chi.Router, _ *[]recorded) {
		r.Get("/stories", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"stories":[
				{"storyId":"s1","title":"One","author":"A","url":"https://one.example/x","username":"bob","createdAt":"2024-05-01T10:00:00.000Z"},
				{"storyId":"s2","title":"Two","author":"B","url":"https://two.example/y","username":"carol","createdAt":"t0"}
			]}`)
		})
	})

	got, err := c.GetStories(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "s1", got[0].StoryID)
	assert.Equal(t, "One", got[0].Title)
	assert.Equal(t, 2024, got[0].CreatedAt.Year())
	assert.Equal(t, "s2", got[1].StoryID)
	assert.True(t, got[1].CreatedAt.IsZero(), "unparseable timestamps map to zero")
	assert.Equal(t, http.MethodGet, (*seen)[0].method)
}

func TestGetStoriesSchemaViolation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing stories", `{"items":[]}`},
		{"story without id", `{"stories":[{"title":"x","username":"bob"}]}`},
		{"story without username", `{"stories":[{"storyId":"s1"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(r chi.Router, _ *[]recorded) {
				r.Get("/stories", func(w http.ResponseWriter, _ *http.Request) {
					writeJSON(w, http.StatusOK, tt.body)
				})
			})

			_, err := c.GetStories(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrMalformedResponse)

			var schemaErr *domain.SchemaError
			assert.ErrorAs(t, err, &schemaErr)
		})
	}
}

func TestGetStoriesBrokenJSON(t *testing.T) {
	c, _ := newTestClient(t, func(r chi.Router, _ *[]recorded) {
		r.Get("/stories", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"stories":[`)
		})
	})

	_, err := c.GetStories(context.Background())
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		kind   error
	}{
		{http.StatusBadRequest, domain.ErrValidation},
		{http.StatusConflict, domain.ErrValidation},
		{http.StatusUnauthorized, domain.ErrAuth},
		{http.StatusForbidden, domain.ErrAuth},
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusInternalServerError, domain.ErrService},
		{http.StatusBadGateway, domain.ErrService},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c, _ := newTestClient(t, func(r chi.Router, _ *[]recorded) {
				r.Delete("/stories/{storyId}", func(w http.ResponseWriter, _ *http.Request) {
					writeJSON(w, tt.status, `{"error":{"status":0,"title":"Nope","message":"rejected by service"}}`)
				})
			})

			err := c.DeleteStory(context.Background(), "tok", "s1")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)

			var apiErr *domain.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, "rejected by service", apiErr.Message)
			assert.Equal(t, "delete_story", apiErr.Op)
		})
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Options{BaseURL: url, Timeout: time.Second}, logger.New("error", false))
	_, err := c.GetStories(context.Background())
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestCreateStory(t *testing.T) {
	c, seen := newTestClient(t, func(r chi.Router, _ *[]recorded) {
		r.Post("/stories", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusCreated, `{"story":{"storyId":"new1","title":"T","author":"A","url":"https://x.example","username":"alice","createdAt":"2024-01-01T00:00:00Z"}}`)
		})
	})

	got, err := c.CreateStory(context.Background(), "tok1", domain.NewStory{Title: "T", Author: "A", URL: "https://x.example"})
	require.NoError(t, err)
	assert.Equal(t, "new1", got.StoryID)

	req := (*seen)[0]
	assert.Equal(t, "tok1", req.body["token"])
	story, ok := req.body["story"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "T", story["title"])
	assert.Equal(t, "A", story["author"])
	assert.Equal(t, "https://x.example", story["url"])
}

func TestDeleteStorySendsToken(t *testing.T) {
	c, seen := newTestClient(t, func(r chi.Router, _ *[]recorded) {
		r.Delete("/stories/{storyId}", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"message":"deleted"}`)
		})
	})

	require.NoError(t, c.DeleteStory(context.Background(), "tok1", "s1"))
	assert.Equal(t, "/stories/s1", (*seen)[0].path)
	assert.Equal(t, "tok1", (*seen)[0].body["token"])
}

func TestLoginAndSignup(t *testing.T) {
	c, seen := newTestClient(t, func(r chi.Router, _ *[]recorded) {
		r.Post("/login", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"user":`+aliceJSON+`,"token":"tok1"}`)
		})
		r.Post("/signup", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusCreated, `{"user":{"username":"dave","name":"Dave"},"token":"tok2"}`)
		})
	})

	sess, err := c.Login(context.Background(), "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "tok1", sess.Token)
	assert.Equal(t, "Alice", sess.Profile.Name)
	assert.NotNil(t, sess.Profile.Favorites)
	assert.Empty(t, sess.Profile.Favorites)
	assert.NotNil(t, sess.Profile.Stories)

	user, ok := (*seen)[0].body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "pw1", user["password"])
	_, hasName := user["name"]
	assert.False(t, hasName, "login must not send a name")

	sess, err = c.Signup(context.Background(), "dave", "pw", "Dave")
	require.NoError(t, err)
	assert.Equal(t, "tok2", sess.Token)
	assert.NotNil(t, sess.Profile.Favorites, "absent favorites decode to empty")
	assert.Equal(t, "Dave", (*seen)[1].body["user"].(map[string]any)["name"])
}

func TestLoginMissingToken(t *testing.T) {
	c, _ := newTestClient(t, func(r chi.Router, _ *[]recorded) {
		r.Post("/login", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"user":`+aliceJSON+`}`)
		})
	})

	_, err := c.Login(context.Background(), "alice", "pw1")
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestGetUserPassesToken(t *testing.T) {
	c, seen := newTestClient(t, func(r chi.Router, _ *[]recorded) {
		r.Get("/users/{username}", func(w http.ResponseWriter, req *http.Request) {
			if req.URL.Query().Get("token") != "tok1" {
				writeJSON(w, http.StatusUnauthorized, `{"error":{"status":401,"title":"Unauthorized","message":"Invalid token"}}`)
				return
			}
			writeJSON(w, http.StatusOK, `{"user":`+aliceJSON+`}`)
		})
	})

	p, err := c.GetUser(context.Background(), "tok1", "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "/users/alice", (*seen)[0].path)

	_, err = c.GetUser(context.Background(), "bad-token", "alice")
	assert.ErrorIs(t, err, domain.ErrAuth)
}

func TestFavorites(t *testing.T) {
	c, seen := newTestClient(t, func(r chi.Router, _ *[]recorded) {
		r.Post("/users/{username}/favorites/{storyId}", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"message":"Favorite Added!","user":`+aliceJSON+`}`)
		})
		r.Delete("/users/{username}/favorites/{storyId}", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"message":"Favorite Removed!","user":`+aliceJSON+`}`)
		})
	})

	require.NoError(t, c.AddFavorite(context.Background(), "tok1", "alice", "s1"))
	require.NoError(t, c.RemoveFavorite(context.Background(), "tok1", "alice", "s1"))

	require.Len(t, *seen, 2)
	assert.Equal(t, http.MethodPost, (*seen)[0].method)
	assert.Equal(t, http.MethodDelete, (*seen)[1].method)
	assert.Equal(t, "/users/alice/favorites/s1", (*seen)[1].path)
	assert.Equal(t, "tok1", (*seen)[1].body["token"])
}

func TestValidationMessageList(t *testing.T) {
	c, _ := newTestClient(t, func(r chi.Router, _ *[]recorded) {
		r.Post("/signup", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusBadRequest, `{"error":{"status":400,"title":"Bad Request","message":["instance.user requires property \"name\""]}}`)
		})
	})

	_, err := c.Signup(context.Background(), "x", "y", "")
	require.ErrorIs(t, err, domain.ErrValidation)

	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, `instance.user requires property "name"`, apiErr.Message)
}
