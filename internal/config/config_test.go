package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/trendtower/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trendtower.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("Backend = %q, want file", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL.Duration != time.Hour {
		t.Errorf("TTL = %s, want 1h", cfg.Cache.TTL.Duration)
	}
	if cfg.Stream.Interval.Duration != 30*time.Second {
		t.Errorf("Interval = %s, want 30s", cfg.Stream.Interval.Duration)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
addr = "127.0.0.1:9000"

[github]
token = "file-token"

[cache]
backend = "redis"
redis_addr = "localhost:6379"
ttl = "15m"

[stream]
interval = "1m"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.GitHub.Token != "file-token" {
		t.Errorf("Token = %q", cfg.GitHub.Token)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Cache.TTL.Duration != 15*time.Minute {
		t.Errorf("TTL = %s, want 15m", cfg.Cache.TTL.Duration)
	}
	if cfg.Stream.Interval.Duration != time.Minute {
		t.Errorf("Interval = %s, want 1m", cfg.Stream.Interval.Duration)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
addr = ":9999"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("Backend = %q, want default kept", cfg.Cache.Backend)
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown backend", "[cache]\nbackend = \"memcached\"\n"},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n"},
		{"bad duration", "[stream]\ninterval = \"soon\"\n"},
		{"not toml", "{\"json\": true}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load succeeded, want error")
			}
			if !errors.IsValidation(err) {
				t.Errorf("code = %v, want a validation code", errors.GetCode(err))
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("Load succeeded, want error for missing file")
	}
}

func TestGitHubTokenPrecedence(t *testing.T) {
	cfg := Config{GitHub: GitHubConfig{Token: "from-file"}}

	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GITHUB_PAT", "")
	if got := cfg.GitHubToken(); got != "from-file" {
		t.Errorf("token = %q, want file value", got)
	}

	t.Setenv("GITHUB_PAT", "from-pat")
	if got := cfg.GitHubToken(); got != "from-pat" {
		t.Errorf("token = %q, want GITHUB_PAT over file", got)
	}

	t.Setenv("GITHUB_TOKEN", "from-env")
	if got := cfg.GitHubToken(); got != "from-env" {
		t.Errorf("token = %q, want GITHUB_TOKEN first", got)
	}
}
