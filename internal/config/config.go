// Package config loads runtime settings from the environment and an optional dotenv file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/janisto/hello-kube/internal/greeting"
)

// DefaultEnvFile is read when Load is called without explicit files.
const DefaultEnvFile = ".env"

// Config holds all runtime configuration values.
type Config struct {
	Port            string
	Greeting        string
	LogLevel        string
	MetricsEnabled  bool
	ShutdownTimeout time.Duration
	Redis           Redis
	RateLimit       RateLimit
}

// Redis describes the optional Redis connection. An empty Addr disables Redis.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis address was configured.
func (r Redis) Enabled() bool {
	return r.Addr != ""
}

// RateLimit configures the sliding-window limiter. It only takes effect with Redis.
type RateLimit struct {
	Enabled  bool
	Requests int
	Window   time.Duration
	Prefix   string
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// Load builds a Config. Process environment variables win over values read from the
// dotenv files, which win over defaults. Missing dotenv files are ignored.
func Load(files ...string) (Config, error) {
	explicit := len(files) > 0
	if !explicit {
		files = []string{DefaultEnvFile}
	}
	fileVals := map[string]string{}
	for _, f := range files {
		vals, err := godotenv.Read(f)
		if err != nil {
			if !explicit && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("read env file %s: %w", f, err)
		}
		for k, v := range vals {
			if _, ok := fileVals[k]; !ok {
				fileVals[k] = v
			}
		}
	}

	src := source{file: fileVals}
	var errs []error

	cfg := Config{
		Port:            src.str("PORT", "8081"),
		Greeting:        src.raw("GREETING", greeting.Default),
		LogLevel:        strings.ToLower(src.str("LOG_LEVEL", "info")),
		MetricsEnabled:  src.boolean("METRICS_ENABLED", true, &errs),
		ShutdownTimeout: src.duration("SHUTDOWN_TIMEOUT", 10*time.Second, &errs),
		Redis: Redis{
			Addr:     src.str("REDIS_ADDR", ""),
			Password: src.raw("REDIS_PASSWORD", ""),
			DB:       src.integer("REDIS_DB", 0, &errs),
		},
		RateLimit: RateLimit{
			Enabled:  src.boolean("RATE_LIMIT_ENABLED", true, &errs),
			Requests: src.integer("RATE_LIMIT_REQUESTS", 60, &errs),
			Window:   src.duration("RATE_LIMIT_WINDOW", time.Minute, &errs),
			Prefix:   src.str("RATE_LIMIT_PREFIX", "rl"),
		},
	}
	errs = append(errs, cfg.validate()...)
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

func (c Config) validate() []error {
	var errs []error
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("PORT: %q is not a valid TCP port", c.Port))
	}
	if strings.TrimSpace(c.Greeting) == "" {
		errs = append(errs, errors.New("GREETING: must not be empty"))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL: unsupported level %q", c.LogLevel))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT: must be positive"))
	}
	if c.Redis.DB < 0 {
		errs = append(errs, errors.New("REDIS_DB: must not be negative"))
	}
	if c.RateLimit.Requests < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_REQUESTS: must be at least 1"))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW: must be positive"))
	}
	return errs
}

type source struct {
	file map[string]string
}

// raw returns the value untouched so greetings keep surrounding punctuation and spaces.
func (s source) raw(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	if v, ok := s.file[key]; ok && v != "" {
		return v
	}
	return def
}

func (s source) str(key, def string) string {
	return strings.TrimSpace(s.raw(key, def))
}

func (s source) boolean(key string, def bool, errs *[]error) bool {
	v := s.str(key, "")
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	*errs = append(*errs, fmt.Errorf("%s: invalid boolean %q", key, v))
	return def
}

func (s source) integer(key string, def int, errs *[]error) int {
	v := s.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return n
}

func (s source) duration(key string, def time.Duration, errs *[]error) time.Duration {
	v := s.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}
