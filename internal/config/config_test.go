package config

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

// TestFromEnv_Defaults verifies an empty environment yields a usable development config.
func TestFromEnv_Defaults(t *testing.T) {
	c, err := FromEnv(envMap(nil))
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if c.Addr != DefaultAddr || c.StoreDriver != "sqlite" || c.IsProduction() {
		t.Errorf("got %+v", c)
	}
	if c.LoginDelayMin != 500*time.Millisecond || c.LoginDelayMax != 5500*time.Millisecond {
		t.Errorf("login delay = [%v, %v], want [500ms, 5.5s]", c.LoginDelayMin, c.LoginDelayMax)
	}
	if c.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", c.LogLevel)
	}
	if c.CSRFKey != nil || c.Archive.Enabled() || len(c.ReportTo) != 0 {
		t.Errorf("optional settings should be empty: %+v", c)
	}
	if c.Archive.Prefix != "reports" {
		t.Errorf("Archive.Prefix = %q, want reports", c.Archive.Prefix)
	}
}

// TestFromEnv_Overrides verifies every key is read with the CHITFUND_ prefix.
func TestFromEnv_Overrides(t *testing.T) {
	key := strings.Repeat("ab", 32)
	c, err := FromEnv(envMap(map[string]string{
		"CHITFUND_ADDR":                  "127.0.0.1:9000",
		"CHITFUND_ENV":                   "Production",
		"CHITFUND_LOG_LEVEL":             "debug",
		"CHITFUND_STORE_DRIVER":          "postgres",
		"CHITFUND_STORE_DSN":             "postgres://db/chitfund",
		"CHITFUND_CSRF_KEY":              key,
		"CHITFUND_LOGIN_DELAY_MIN":       "0",
		"CHITFUND_LOGIN_DELAY_MAX":       "2s",
		"CHITFUND_CREDENTIALS_FILE":      "/etc/chitfund/creds.yaml",
		"CHITFUND_RESEND_KEY":            "re_123",
		"CHITFUND_REPORT_TO":             "a@example.com, b@example.com,,",
		"CHITFUND_ARCHIVE_S3_BUCKET":     "reports",
		"CHITFUND_ARCHIVE_S3_ENDPOINT":   "http://minio:9000",
		"CHITFUND_ARCHIVE_S3_PATH_STYLE": "true",
		"CHITFUND_SLOW_QUERY_MS":         "10",
	}))
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if !c.IsProduction() || c.StoreDriver != "postgres" || c.StoreDSN != "postgres://db/chitfund" {
		t.Errorf("got %+v", c)
	}
	if len(c.CSRFKey) != 32 {
		t.Errorf("CSRFKey len = %d, want 32", len(c.CSRFKey))
	}
	if c.LoginDelayMin != 0 || c.LoginDelayMax != 2*time.Second {
		t.Errorf("login delay = [%v, %v]", c.LoginDelayMin, c.LoginDelayMax)
	}
	if len(c.ReportTo) != 2 || c.ReportTo[1] != "b@example.com" {
		t.Errorf("ReportTo = %v", c.ReportTo)
	}
	if !c.Archive.Enabled() || !c.Archive.PathStyle {
		t.Errorf("Archive = %+v", c.Archive)
	}
	if c.SlowQuery != 10*time.Millisecond || c.SlowRequest != DefaultSlowRequest {
		t.Errorf("slow thresholds = %v/%v", c.SlowQuery, c.SlowRequest)
	}
	if c.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v", c.LogLevel)
	}
}

// TestFromEnv_Errors verifies invalid settings are rejected rather than defaulted.
func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
		wantMsg string
	}{
		{"production without csrf key", map[string]string{"CHITFUND_ENV": "production"}, ErrCSRFRequired, ""},
		{"short csrf key", map[string]string{"CHITFUND_CSRF_KEY": "abcd"}, ErrCSRFKey, ""},
		{"unknown driver", map[string]string{"CHITFUND_STORE_DRIVER": "mongo"}, ErrStoreDriver, ""},
		{"inverted delay", map[string]string{"CHITFUND_LOGIN_DELAY_MIN": "900", "CHITFUND_LOGIN_DELAY_MAX": "100"}, ErrLoginDelay, ""},
		{"bad level", map[string]string{"CHITFUND_LOG_LEVEL": "loud"}, ErrLogLevel, ""},
		{"bad duration", map[string]string{"CHITFUND_SLOW_REQUEST_MS": "soon"}, nil, "CHITFUND_SLOW_REQUEST_MS"},
		{"negative duration", map[string]string{"CHITFUND_LOGIN_DELAY_MAX": "-5"}, nil, "negative"},
		{"bad path style", map[string]string{"CHITFUND_ARCHIVE_S3_PATH_STYLE": "maybe"}, nil, "PATH_STYLE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(envMap(tt.env))
			if err == nil {
				t.Fatal("FromEnv() error = nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %v, want containing %q", err, tt.wantMsg)
			}
		})
	}
}

// TestLoad_ReadsProcessEnv verifies Load consults the real environment.
func TestLoad_ReadsProcessEnv(t *testing.T) {
	t.Setenv("CHITFUND_ADDR", ":7070")
	t.Setenv("CHITFUND_STORE_DRIVER", "memory")
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Addr != ":7070" || c.StoreDriver != "memory" {
		t.Errorf("got Addr=%q StoreDriver=%q", c.Addr, c.StoreDriver)
	}
}
