package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	localauth "vet-clinic/internal/adapters/auth/local"
	resendnotify "vet-clinic/internal/adapters/notify/resend"
	pdfpw "vet-clinic/internal/adapters/pdf/playwright"
	mem "vet-clinic/internal/adapters/storage/memory"
	pg "vet-clinic/internal/adapters/storage/postgres"
	"vet-clinic/internal/adapters/storage/sqlite"
	"vet-clinic/internal/adapters/supabase"
	"vet-clinic/internal/domain/clients"
	"vet-clinic/internal/platform/config"
	"vet-clinic/internal/platform/logger"
	"vet-clinic/internal/ports/auth"
	"vet-clinic/internal/router"
)

// @title Vet Clinic API
// @version 1.0
// @description Sitio público y panel de administración de la clínica veterinaria.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{}).Error("config error", logger.Fields{"err": err})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	if err := run(cfg, log); err != nil {
		log.Error("server error", logger.Fields{"err": err})
		os.Exit(1)
	}
}

func run(cfg config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		repo     clients.Repository
		provider auth.Provider
		db       *sql.DB
	)

	// Record Store + Auth: supabase > postgres > sqlite > memoria
	switch {
	case cfg.SupabaseConfigured():
		sb, err := supabase.NewClient(supabase.Config{
			URL:     cfg.SupabaseURL,
			AnonKey: cfg.SupabaseAnonKey,
			Timeout: cfg.UpstreamTimeout,
		})
		if err != nil {
			return err
		}
		repo = supabase.NewClientsRepo(sb)
		provider = supabase.NewAuthProvider(sb)
		log.Info("record store: supabase", logger.Fields{"url": cfg.SupabaseURL})

	case cfg.DBDSN != "":
		opened, err := pg.Open(ctx, cfg.DBDSN)
		if err != nil {
			return err
		}
		if err := pg.EnsureSchema(ctx, opened); err != nil {
			_ = opened.Close()
			return err
		}
		db = opened
		repo = pg.NewClientsRepo(db)
		log.Info("record store: postgres", nil)

	case cfg.SQLitePath != "":
		opened, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return err
		}
		db = opened
		repo = sqlite.NewClientsRepo(db)
		log.Info("record store: sqlite", logger.Fields{"path": cfg.SQLitePath})

	default:
		repo = mem.NewClientRepo()
		log.Warn("record store: in-memory (demo mode, data is lost on restart)", nil)
	}
	if db != nil {
		defer db.Close()
	}

	if provider == nil {
		if cfg.AdminEmail != "" {
			p, err := localauth.NewProvider(cfg.AdminEmail, cfg.AdminPasswordHash)
			if err != nil {
				return err
			}
			provider = p
			log.Info("auth provider: local admin", nil)
		} else {
			provider = auth.RejectAll{}
			log.Warn("auth provider: none configured, every login is rejected", nil)
		}
	}

	var notifier clients.Notifier
	if cfg.NotifyConfigured() {
		n, err := resendnotify.New(resendnotify.Config{
			APIKey:   cfg.ResendAPIKey,
			From:     cfg.NotifyFrom,
			To:       splitList(cfg.NotifyTo),
			Location: mustLocation(cfg),
		}, log)
		if err != nil {
			return err
		}
		notifier = n
	}

	raster := pdfpw.New(pdfpw.Options{Timeout: cfg.PDFTimeout})
	defer func() {
		if err := raster.Close(); err != nil {
			log.Warn("rasterizer close failed", logger.Fields{"err": err})
		}
	}()

	clientOpts := []clients.Option{clients.WithLogger(log)}
	if notifier != nil {
		clientOpts = append(clientOpts, clients.WithNotifier(notifier))
	}
	clientsSvc := clients.NewService(repo, clientOpts...)
	defer clientsSvc.WaitNotifications()

	sessions := mem.NewSessionStore(cfg.SessionTTL)
	go purgeSessions(ctx, sessions, time.Hour, log)

	r := router.NewRouter(router.Options{
		ClientsService: clientsSvc,
		Auth:           provider,
		Sessions:       sessions,
		Rasterizer:     raster,
		ReportLocation: mustLocation(cfg),
		Logger:         log,
		CookieName:     cfg.SessionCookieName,
		SessionTTL:     cfg.SessionTTL,
		SecureCookies:  cfg.Production(),
		CORSOrigin:     cfg.CORSOrigin,
		StaticDir:      cfg.StaticDir,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.PDFTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", logger.Fields{"addr": srv.Addr, "env": cfg.AppEnv})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func purgeSessions(ctx context.Context, store *mem.SessionStore, every time.Duration, log logger.Logger) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := store.Purge(); n > 0 {
				log.Debug("expired sessions purged", logger.Fields{"count": n})
			}
		}
	}
}

// mustLocation: Validate ya chequeó REPORT_TIMEZONE en Load.
func mustLocation(cfg config.Config) *time.Location {
	loc, err := cfg.ReportLocation()
	if err != nil {
		return time.Local
	}
	return loc
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
