package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	CookieName = "snooze_session"
)

// Claims is the signed payload of the session cookie.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// Options defines how session cookies are issued.
type Options struct {
	Secret []byte        // HMAC key for the cookie JWT
	TTL    time.Duration // lifetime of cookie and stored credentials
	Secure bool          // set the Secure attribute (HTTPS deployments)
}

// Manager ties the signed browser cookie to credentials in a Store.
type Manager struct {
	store Store
	opts  Options
	now   func() time.Time
}

// NewManager creates a session manager
func NewManager(store Store, opts Options) (*Manager, error) {
	if len(opts.Secret) < 16 {
		return nil, fmt.Errorf("session: secret must be at least 16 bytes, got %d", len(opts.Secret))
	}
	if opts.TTL <= 0 {
		return nil, fmt.Errorf("session: ttl must be > 0, got %v", opts.TTL)
	}
	return &Manager{store: store, opts: opts, now: time.Now}, nil
}

// Start stores credentials under a new session id and issues the cookie.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, token, username string) error {
	sid := uuid.NewString()
	expiresAt := m.now().Add(m.opts.TTL)

	if err := m.store.Save(ctx, sid, Credentials{Token: token, Username: username, ExpiresAt: expiresAt}); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}

	signed, err := m.sign(sid, expiresAt)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Load returns the stored credentials for the request's cookie, or nil
// when the request is anonymous. A bad or stale cookie is not an error.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Credentials, error) {
	sid, ok := m.sessionID(r)
	if !ok {
		return nil, nil
	}
	creds, err := m.store.Get(ctx, sid)
	if err != nil {
		return nil, fmt.Errorf("session: get: %w", err)
	}
	return creds, nil
}

// End forgets the request's session and clears the cookie.
func (m *Manager) End(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var err error
	if sid, ok := m.sessionID(r); ok {
		if delErr := m.store.Delete(ctx, sid); delErr != nil {
			err = fmt.Errorf("session: delete: %w", delErr)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return err
}

func (m *Manager) sign(sid string, expiresAt time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(m.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		SessionID: sid,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.opts.Secret)
	if err != nil {
		return "", fmt.Errorf("session: sign: %w", err)
	}
	return signed, nil
}

func (m *Manager) sessionID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.opts.Secret, nil
	})
	if err != nil || !token.Valid || claims.SessionID == "" {
		return "", false
	}
	return claims.SessionID, true
}
