// Package config reads process configuration from CHITFUND_ environment
// variables, after loading an optional .env file.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Prefix is prepended to every environment key.
const Prefix = "CHITFUND_"

// EnvProduction is the CHITFUND_ENV value that enables production behavior.
const EnvProduction = "production"

// Defaults
const (
	DefaultAddr          = ":8080"
	DefaultEnv           = "development"
	DefaultStoreDriver   = "sqlite"
	DefaultLoginDelayMin = 500 * time.Millisecond
	DefaultLoginDelayMax = 5500 * time.Millisecond
	DefaultSlowRequest   = 200 * time.Millisecond
	DefaultSlowQuery     = 50 * time.Millisecond
	DefaultReportFrom    = "Chit Fund Console <reports@chitfund.local>"
)

// Config errors
var (
	ErrCSRFKey      = errors.New("CHITFUND_CSRF_KEY must be 64 hex characters (32 bytes)")
	ErrCSRFRequired = errors.New("CHITFUND_CSRF_KEY is required in production")
	ErrStoreDriver  = errors.New("CHITFUND_STORE_DRIVER must be one of: memory, sqlite, postgres")
	ErrLoginDelay   = errors.New("CHITFUND_LOGIN_DELAY_MIN must not exceed CHITFUND_LOGIN_DELAY_MAX")
	ErrLogLevel     = errors.New("CHITFUND_LOG_LEVEL must be one of: debug, info, warn, error")
)

// Archive configures the optional S3 report archive.
type Archive struct {
	Bucket    string
	Region    string
	Endpoint  string
	Prefix    string
	PathStyle bool
}

// Enabled reports whether a bucket is configured.
func (a Archive) Enabled() bool { return a.Bucket != "" }

// Config is the full process configuration.
type Config struct {
	Addr     string
	Env      string
	LogLevel slog.Level

	StoreDriver string
	StoreDSN    string

	// CSRFKey is nil when unset outside production; the server then
	// generates a per-process key.
	CSRFKey []byte

	LoginDelayMin time.Duration
	LoginDelayMax time.Duration

	CredentialsFile string

	ResendKey  string
	ReportFrom string
	ReportTo   []string

	Archive Archive

	SlowRequest time.Duration
	SlowQuery   time.Duration
}

// IsProduction reports whether CHITFUND_ENV is "production".
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, which receives full keys such as
// "CHITFUND_ADDR". Blank values count as unset.
// POST: Returns the first validation error encountered
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(Prefix + key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}

	c := Config{
		Addr:            get("ADDR", DefaultAddr),
		Env:             strings.ToLower(get("ENV", DefaultEnv)),
		StoreDriver:     strings.ToLower(get("STORE_DRIVER", DefaultStoreDriver)),
		StoreDSN:        get("STORE_DSN", ""),
		CredentialsFile: get("CREDENTIALS_FILE", ""),
		ResendKey:       get("RESEND_KEY", ""),
		ReportFrom:      get("REPORT_FROM", DefaultReportFrom),
		ReportTo:        splitList(get("REPORT_TO", "")),
		Archive: Archive{
			Bucket:   get("ARCHIVE_S3_BUCKET", ""),
			Region:   get("ARCHIVE_S3_REGION", ""),
			Endpoint: get("ARCHIVE_S3_ENDPOINT", ""),
			Prefix:   get("ARCHIVE_S3_PREFIX", "reports"),
		},
	}

	var err error
	if c.LogLevel, err = parseLevel(get("LOG_LEVEL", "info")); err != nil {
		return Config{}, err
	}
	switch c.StoreDriver {
	case "memory", "sqlite", "postgres":
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrStoreDriver, c.StoreDriver)
	}
	if c.Archive.PathStyle, err = strconv.ParseBool(get("ARCHIVE_S3_PATH_STYLE", "false")); err != nil {
		return Config{}, fmt.Errorf("CHITFUND_ARCHIVE_S3_PATH_STYLE: %w", err)
	}

	durations := []struct {
		key  string
		unit time.Duration
		def  time.Duration
		dst  *time.Duration
	}{
		{"LOGIN_DELAY_MIN", time.Millisecond, DefaultLoginDelayMin, &c.LoginDelayMin},
		{"LOGIN_DELAY_MAX", time.Millisecond, DefaultLoginDelayMax, &c.LoginDelayMax},
		{"SLOW_REQUEST_MS", time.Millisecond, DefaultSlowRequest, &c.SlowRequest},
		{"SLOW_QUERY_MS", time.Millisecond, DefaultSlowQuery, &c.SlowQuery},
	}
	for _, d := range durations {
		raw := get(d.key, "")
		if raw == "" {
			*d.dst = d.def
			continue
		}
		v, err := parseDuration(raw, d.unit)
		if err != nil {
			return Config{}, fmt.Errorf("%s%s: %w", Prefix, d.key, err)
		}
		*d.dst = v
	}
	if c.LoginDelayMin > c.LoginDelayMax {
		return Config{}, ErrLoginDelay
	}

	if keyHex := get("CSRF_KEY", ""); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return Config{}, ErrCSRFKey
		}
		c.CSRFKey = key
	} else if c.IsProduction() {
		return Config{}, ErrCSRFRequired
	}

	return c, nil
}

// parseDuration accepts a bare integer in unit, or a Go duration string.
func parseDuration(raw string, unit time.Duration) (time.Duration, error) {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative duration %d", n)
		}
		return time.Duration(n) * unit, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", raw)
	}
	return d, nil
}

func parseLevel(raw string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(raw)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrLogLevel, raw)
	}
	return l, nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
