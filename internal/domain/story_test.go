package domain

import (
	"errors"
	"net/http"
	"testing"
)

func TestStoryHostName(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"path and query", "https://example.com/a/b?x=1", "example.com"},
		{"plain http", "http://news.ycombinator.com", "news.ycombinator.com"},
		{"with port", "http://localhost:8080/x", "localhost:8080"},
		{"subdomain", "https://blog.golang.org/go1.22", "blog.golang.org"},
		{"userinfo stripped", "https://bob:pw@example.org/", "example.org"},
		{"ipv6", "http://[::1]:9000/", "[::1]:9000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Story{URL: tt.url}.HostName()
			if err != nil {
				t.Fatalf("HostName(%q) error = %v", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("HostName(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestStoryHostNameInvalid(t *testing.T) {
	tests := []string{
		"",
		"example.com",
		"/relative/path",
		"not a url",
		"http://%zz",
		"mailto:someone@example.com",
	}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			_, err := Story{URL: raw}.HostName()
			if !errors.Is(err, ErrInvalidURL) {
				t.Errorf("HostName(%q) error = %v, want ErrInvalidURL", raw, err)
			}
		})
	}
}

func TestAPIErrorMatchesKind(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(&APIError{Op: "get_stories", Kind: ErrNetwork, Err: cause})

	if !errors.Is(err, ErrNetwork) {
		t.Error("APIError should match its kind")
	}
	if !errors.Is(err, cause) {
		t.Error("APIError should match its cause")
	}
	if errors.Is(err, ErrAuth) {
		t.Error("APIError should not match other kinds")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Op != "get_stories" {
		t.Errorf("errors.As failed, got %+v", apiErr)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"auth", &APIError{Kind: ErrAuth, Status: http.StatusUnauthorized}, ErrAuth},
		{"not found", &APIError{Kind: ErrNotFound, Status: http.StatusNotFound}, ErrNotFound},
		{"schema", &SchemaError{Op: "login", Fields: []string{"token"}}, ErrMalformedResponse},
		{"url", Story{URL: "nope"}.hostNameErr(), ErrInvalidURL},
		{"foreign", errors.New("boom"), nil},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func (s Story) hostNameErr() error {
	_, err := s.HostName()
	return err
}
