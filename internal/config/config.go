package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/snooze/internal/hns"
	"github.com/MrSnakeDoc/snooze/internal/logger"
)

// FileEnv names the optional YAML file applied before the environment.
const FileEnv = "SNOOZE_CONFIG_FILE"

type Config struct {
	ListenAddr      string        `yaml:"listen_addr" env:"SNOOZE_LISTEN_ADDR" validate:"required,hostname_port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SNOOZE_SHUTDOWN_TIMEOUT" validate:"min=1s"`

	LogLevel  string `yaml:"log_level" env:"SNOOZE_LOG_LEVEL" validate:"loglevel"` // "debug" | "info" | "warn" | "error"
	PrettyLog bool   `yaml:"pretty_log" env:"SNOOZE_PRETTY_LOG"`                   // true => zap dev (color), false => zap prod (JSON)

	// Remote story API
	APIBaseURL string        `yaml:"api_base_url" env:"SNOOZE_API_BASE_URL" validate:"required,url"`
	APITimeout time.Duration `yaml:"api_timeout" env:"SNOOZE_API_TIMEOUT" validate:"min=100ms"`

	// Sessions
	SessionSecret string        `yaml:"session_secret" env:"SNOOZE_SESSION_SECRET" validate:"required,min=16"`
	SessionTTL    time.Duration `yaml:"session_ttl" env:"SNOOZE_SESSION_TTL" validate:"min=1m"`
	CookieSecure  bool          `yaml:"cookie_secure" env:"SNOOZE_COOKIE_SECURE"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"SNOOZE_SWEEP_INTERVAL" validate:"min=1s"` // memory store only

	// Redis, empty addr => in-process session store
	RedisAddr           string        `yaml:"redis_addr" env:"SNOOZE_REDIS_ADDR" validate:"omitempty,hostname_port"`
	RedisUser           string        `yaml:"redis_username" env:"SNOOZE_REDIS_USERNAME"`
	RedisPassword       string        `yaml:"redis_password" env:"SNOOZE_REDIS_PASSWORD"`
	RedisDB             int           `yaml:"redis_db" env:"SNOOZE_REDIS_DB" validate:"min=0"`
	RedisDT             time.Duration `yaml:"redis_dial_timeout" env:"REDIS_DIAL_TIMEOUT"`
	RedisRT             time.Duration `yaml:"redis_read_timeout" env:"REDIS_READ_TIMEOUT"`
	RedisWT             time.Duration `yaml:"redis_write_timeout" env:"REDIS_WRITE_TIMEOUT"`
	RedisPoolSize       int           `yaml:"redis_pool_size" env:"REDIS_POOL_SIZE" validate:"min=1"`
	RedisConnectTimeout time.Duration `yaml:"redis_connect_timeout" env:"REDIS_CONNECT_TIMEOUT" validate:"min=1s"`
	RedisRetryInterval  time.Duration `yaml:"redis_retry_interval" env:"REDIS_RETRY_INTERVAL" validate:"min=10ms"`
	RedisMaxWait        time.Duration `yaml:"redis_max_wait" env:"REDIS_MAX_WAIT" validate:"min=10ms"`
	RedisPingTimeout    time.Duration `yaml:"redis_ping_timeout" env:"REDIS_PING_TIMEOUT" validate:"min=10ms"`
	RedisWarnThreshold  int           `yaml:"redis_warn_threshold" env:"REDIS_WARN_THRESHOLD" validate:"min=0"`

	// Access restrictions
	AllowedHosts []string `yaml:"allowed_hosts" env:"SNOOZE_ALLOWED_HOSTS" envSeparator:","`                         // optional, restrict Host headers
	AllowedCIDRS []string `yaml:"allowed_cidrs" env:"SNOOZE_ALLOWED_CIDRS" envSeparator:"," validate:"dive,cidr|ip"` // who may read /readyz, /infra, /metrics
	TrustProxy   bool     `yaml:"trust_proxy" env:"SNOOZE_TRUST_PROXY"`                                              // true => trust X-Forwarded-For headers

	RateLimitBurst  int           `yaml:"rate_limit_burst" env:"SNOOZE_RATE_LIMIT_BURST" validate:"min=1"`
	RateLimitRefill time.Duration `yaml:"rate_limit_refill" env:"SNOOZE_RATE_LIMIT_REFILL" validate:"min=1ms"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		ListenAddr:      ":8080",
		ShutdownTimeout: 5 * time.Second,

		LogLevel:  "info",
		PrettyLog: true,

		APIBaseURL: hns.DefaultBaseURL,
		APITimeout: 10 * time.Second,

		SessionTTL:    7 * 24 * time.Hour,
		CookieSecure:  false,
		SweepInterval: 10 * time.Minute,

		RedisUser:           "default",
		RedisDT:             5 * time.Second,
		RedisRT:             3 * time.Second,
		RedisWT:             3 * time.Second,
		RedisPoolSize:       10,
		RedisConnectTimeout: 30 * time.Second,
		RedisRetryInterval:  2 * time.Second,
		RedisMaxWait:        10 * time.Second,
		RedisPingTimeout:    5 * time.Second,
		RedisWarnThreshold:  3,

		TrustProxy:      false,
		RateLimitBurst:  20,
		RateLimitRefill: 500 * time.Millisecond,
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// SNOOZE_CONFIG_FILE, then .env, then the process environment.
func Load() (*Config, error) {
	return load(".env")
}

func load(dotenv string) (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv(FileEnv); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// A missing .env is normal outside development.
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", dotenv, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.AllowedHosts = splitAndTrim(cfg.AllowedHosts)
	cfg.AllowedCIDRS = splitAndTrim(cfg.AllowedCIDRS)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config yaml: %w", err)
	}
	return nil
}

// Validate checks every field rule.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.RegisterValidation("loglevel", validateLogLevel); err != nil {
		return err
	}

	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}

// UseRedis reports whether sessions live in Redis.
func (c *Config) UseRedis() bool {
	return c.RedisAddr != ""
}

// Redacted returns a copy safe to log.
func (c *Config) Redacted() Config {
	out := *c
	out.SessionSecret = "***REDACTED***"
	if out.RedisPassword != "" {
		out.RedisPassword = "***REDACTED***"
	}
	return out
}

func validateLogLevel(fl validator.FieldLevel) bool {
	_, ok := logger.ParseLevel(fl.Field().String())
	return ok
}

func splitAndTrim(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	parts := make([]string, 0, len(in))
	for _, part := range in {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return parts
}
