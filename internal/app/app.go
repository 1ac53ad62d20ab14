package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/snooze/internal/config"
	"github.com/MrSnakeDoc/snooze/internal/hns"
	"github.com/MrSnakeDoc/snooze/internal/httpserver"
	"github.com/MrSnakeDoc/snooze/internal/httpserver/deps"
	"github.com/MrSnakeDoc/snooze/internal/logger"
	"github.com/MrSnakeDoc/snooze/internal/redis"
	"github.com/MrSnakeDoc/snooze/internal/scheduler"
	"github.com/MrSnakeDoc/snooze/internal/session"
	redisstore "github.com/MrSnakeDoc/snooze/internal/store/redis"
	"github.com/MrSnakeDoc/snooze/internal/stories"
	"github.com/MrSnakeDoc/snooze/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	sweeper     *scheduler.SessionSweeper // nil when sessions live in Redis
}

// New loads configuration and wires every component. Redis, when
// configured, must answer before New returns.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)
	loggerClient.Debugf("cfg: %+v", cfg.Redacted())

	api := hns.New(hns.Options{BaseURL: cfg.APIBaseURL, Timeout: cfg.APITimeout}, loggerClient)

	var (
		store       session.Store
		redisClient *goredis.Client
		redisProbe  deps.Probe
		count       deps.Counter
		sweeper     *scheduler.SessionSweeper
		mode        string
	)
	if cfg.UseRedis() {
		redisClient, err = redis.Connect(context.Background(), redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		rs := redisstore.NewStore(redisClient)
		store, redisProbe, count, mode = rs, rs.Ping, rs.Count, "redis"
	} else {
		mem := session.NewMemoryStore()
		sweeper = scheduler.NewSessionSweeper(mem, loggerClient, cfg.SweepInterval)
		store, mode = mem, "memory"
		count = func(context.Context) (int, error) { return mem.Len(), nil }
		loggerClient.Warn("no redis configured, sessions are kept in memory and lost on restart")
	}

	sessions, err := session.NewManager(store, session.Options{
		Secret: []byte(cfg.SessionSecret),
		TTL:    cfg.SessionTTL,
		Secure: cfg.CookieSecure,
	})
	if err != nil {
		return nil, err
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Build:           version.Get(),
		TimeNow:         time.Now,
		Stories:         stories.NewService(api, loggerClient),
		Sessions:        sessions,
		APIURL:          api.BaseURL(),
		SessionMode:     mode,
		APIProbe:        func(ctx context.Context) error { _, err := api.GetStories(ctx); return err },
		RedisProbe:      redisProbe,
		SessionCount:    count,
		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitRefill: cfg.RateLimitRefill,
	}

	server := httpserver.New(httpserver.Options{
		Addr:           cfg.ListenAddr,
		RequestTimeout: 2*cfg.APITimeout + time.Second,
	}, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		sweeper:     sweeper,
	}, nil
}

func (a *App) Run() error {
	defer func() { _ = a.logger.Sync() }()

	build := version.Get()
	a.logger.Info("🚀 starting snooze",
		logger.String("version", build.Version),
		logger.String("commit", build.Commit),
		logger.String("built", build.BuildDate),
		logger.String("go", build.GoVersion),
		logger.String("addr", a.cfg.ListenAddr),
		logger.String("api", a.cfg.APIBaseURL))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.sweeper != nil {
		a.sweeper.Start(ctx)
		a.logger.Info("session sweeper started",
			logger.Duration("interval", a.cfg.SweepInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	if a.sweeper != nil {
		a.sweeper.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", logger.Error(err))
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	if runErr != nil {
		return runErr
	}
	a.logger.Info("✅ snooze stopped cleanly")
	return nil
}
