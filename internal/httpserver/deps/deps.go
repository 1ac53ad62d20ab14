package deps

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/snooze/internal/logger"
	"github.com/MrSnakeDoc/snooze/internal/session"
	"github.com/MrSnakeDoc/snooze/internal/stories"
	"github.com/MrSnakeDoc/snooze/internal/version"
)

// Probe reports whether a dependency is reachable.
type Probe func(ctx context.Context) error

// Counter reports how many live entries a store holds.
type Counter func(ctx context.Context) (int, error)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Build     version.Info
	TimeNow   func() time.Time // for testing, defaults to time.Now

	Stories  *stories.Service // data layer bound to the remote API
	Sessions *session.Manager // cookie <-> stored credentials
	APIURL   string           // remote API root, reported by /infra

	SessionMode string // "redis" or "memory"
	APIProbe    Probe  // reachability of the remote API
	RedisProbe  Probe  // nil in memory mode

	SessionCount Counter // live sessions, reported by /infra

	AllowedHosts    []string      // Host headers allowed to access the server
	AllowedCIDRS    []string      // IPs allowed to access readyz/infra/metrics
	TrustProxy      bool          // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RateLimitBurst  int           // POST bucket size per client
	RateLimitRefill time.Duration // one POST token per period

	// PostLimit is the shared rate limiter of every form POST, set by the server.
	PostLimit func(http.Handler) http.Handler
}

// Now returns d.TimeNow() or time.Now().
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
