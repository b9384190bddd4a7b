package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Addr() != ":3000" {
		t.Fatalf("expected :3000, got %s", cfg.Addr())
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("expected 24h session ttl, got %s", cfg.SessionTTL)
	}
	if cfg.Production() {
		t.Fatalf("default env must not be production")
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "PORT=8081\nAPP_ENV=production\nSUPABASE_URL=https://x.supabase.co\nSUPABASE_ANON_KEY=anon\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Cleanup(func() {
		for _, k := range []string{"PORT", "APP_ENV", "SUPABASE_URL", "SUPABASE_ANON_KEY"} {
			os.Unsetenv(k)
		}
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Addr() != ":8081" || !cfg.Production() || !cfg.SupabaseConfigured() {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoad_RejectsHalfConfiguredAdmin(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "admin@clinic.test")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatalf("expected error when ADMIN_PASSWORD_HASH is missing")
	}
}

func TestLoad_RejectsBadTimezone(t *testing.T) {
	t.Setenv("REPORT_TIMEZONE", "Mars/Olympus")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatalf("expected error for unknown timezone")
	}
}
