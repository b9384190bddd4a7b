package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config agrupa toda la configuración del proceso (env vars, opcionalmente desde .env).
type Config struct {
	Port      string `env:"PORT" envDefault:"3000"`
	AppEnv    string `env:"APP_ENV" envDefault:"development"`
	AppName   string `env:"APP_NAME" envDefault:"vet-clinic"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	StaticDir  string `env:"STATIC_DIR" envDefault:"public"`
	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"http://localhost:3000"`

	SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionCookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"vet_session"`

	// Record Store: el primero configurado gana (supabase > postgres > sqlite > memoria).
	DBDSN           string        `env:"DB_DSN"`
	SQLitePath      string        `env:"SQLITE_PATH"`
	SupabaseURL     string        `env:"SUPABASE_URL"`
	SupabaseAnonKey string        `env:"SUPABASE_ANON_KEY"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"10s"`

	// Auth local (sin Supabase): un único admin con hash bcrypt.
	AdminEmail        string `env:"ADMIN_EMAIL"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`

	ResendAPIKey string `env:"RESEND_API_KEY"`
	NotifyFrom   string `env:"NOTIFY_FROM"`
	NotifyTo     string `env:"NOTIFY_TO"`

	ReportTimezone string        `env:"REPORT_TIMEZONE" envDefault:"Europe/Moscow"`
	PDFTimeout     time.Duration `env:"PDF_TIMEOUT" envDefault:"30s"`
}

// Load lee .env (si existe) y luego parsea el entorno.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("config: PORT is empty")
	}
	if c.SessionTTL <= 0 {
		return errors.New("config: SESSION_TTL must be positive")
	}
	if strings.TrimSpace(c.SessionCookieName) == "" {
		return errors.New("config: SESSION_COOKIE_NAME is empty")
	}
	if _, err := c.ReportLocation(); err != nil {
		return err
	}
	if (c.AdminEmail == "") != (c.AdminPasswordHash == "") {
		return errors.New("config: ADMIN_EMAIL and ADMIN_PASSWORD_HASH must be set together")
	}
	return nil
}

func (c Config) Production() bool {
	return strings.EqualFold(strings.TrimSpace(c.AppEnv), "production")
}

func (c Config) SupabaseConfigured() bool {
	return strings.TrimSpace(c.SupabaseURL) != "" && strings.TrimSpace(c.SupabaseAnonKey) != ""
}

func (c Config) NotifyConfigured() bool {
	return c.ResendAPIKey != "" && c.NotifyFrom != "" && c.NotifyTo != ""
}

func (c Config) ReportLocation() (*time.Location, error) {
	name := strings.TrimSpace(c.ReportTimezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("config: REPORT_TIMEZONE: %w", err)
	}
	return loc, nil
}

func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
}
