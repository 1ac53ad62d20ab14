package hns

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/MrSnakeDoc/snooze/internal/domain"
)

// Wire shapes of the remote API. Every decoded response is validated
// before it is turned into domain values.

type storyRecord struct {
	StoryID   string `json:"storyId" validate:"required"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	URL       string `json:"url"`
	Username  string `json:"username" validate:"required"`
	CreatedAt string `json:"createdAt"`
}

type profileRecord struct {
	Username  string        `json:"username" validate:"required"`
	Name      string        `json:"name"`
	CreatedAt string        `json:"createdAt"`
	Favorites []storyRecord `json:"favorites" validate:"dive"`
	Stories   []storyRecord `json:"stories" validate:"dive"`
}

type storiesResponse struct {
	Stories []storyRecord `json:"stories" validate:"required,dive"`
}

type storyResponse struct {
	Story *storyRecord `json:"story" validate:"required"`
}

type userResponse struct {
	User *profileRecord `json:"user" validate:"required"`
}

type sessionResponse struct {
	User  *profileRecord `json:"user" validate:"required"`
	Token string         `json:"token" validate:"required"`
}

type errorResponse struct {
	Error struct {
		Status  int    `json:"status"`
		Title   string `json:"title"`
		Message any    `json:"message"`
	} `json:"error"`
}

// Request bodies.

type tokenRequest struct {
	Token string `json:"token"`
}

type newStoryRequest struct {
	Token string      `json:"token"`
	Story storyFields `json:"story"`
}

type storyFields struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
}

type credentialsRequest struct {
	User credentials `json:"user"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

var validate = validator.New()

// check validates a decoded response and reports offending fields.
func check(op string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		fields := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields = append(fields, fe.Namespace())
		}
		return &domain.SchemaError{Op: op, Fields: fields, Err: err}
	}
	return &domain.SchemaError{Op: op, Err: err}
}

// parseTime accepts the service's RFC 3339 timestamps. Anything else maps
// to the zero time: timestamps are display-only.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (r storyRecord) toDomain() domain.Story {
	return domain.Story{
		StoryID:   r.StoryID,
		Title:     r.Title,
		Author:    r.Author,
		URL:       r.URL,
		Username:  r.Username,
		CreatedAt: parseTime(r.CreatedAt),
	}
}

func toStories(records []storyRecord) []domain.Story {
	out := make([]domain.Story, 0, len(records))
	for _, r := range records {
		out = append(out, r.toDomain())
	}
	return out
}

func (r profileRecord) toDomain() domain.Profile {
	return domain.Profile{
		Username:  r.Username,
		Name:      r.Name,
		CreatedAt: parseTime(r.CreatedAt),
		Favorites: toStories(r.Favorites),
		Stories:   toStories(r.Stories),
	}
}

func (e errorResponse) message() string {
	switch m := e.Error.Message.(type) {
	case string:
		return m
	case []any:
		// validation failures come back as a list of strings
		if len(m) > 0 {
			if s, ok := m[0].(string); ok {
				return s
			}
		}
	}
	return e.Error.Title
}
