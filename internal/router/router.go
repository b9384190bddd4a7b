package router

import (
	"net/http"
	"time"

	mem "vet-clinic/internal/adapters/storage/memory"
	_ "vet-clinic/internal/docs"
	"vet-clinic/internal/domain/admin"
	"vet-clinic/internal/domain/clients"
	"vet-clinic/internal/domain/site"
	"vet-clinic/internal/middleware"
	"vet-clinic/internal/platform/logger"
	"vet-clinic/internal/ports/auth"
	"vet-clinic/internal/ports/session"
	"vet-clinic/internal/report"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

const defaultCookieName = "vet_session"

type Options struct {
	// Opcionales: si vienen nil se usa la variante in-memory / que rechaza todo.
	Clients  clients.Repository
	Auth     auth.Provider
	Sessions session.Store
	Notifier clients.Notifier

	// ClientsService ya armado (p.ej. para esperar avisos pendientes en el shutdown).
	// Si viene, Clients y Notifier se ignoran.
	ClientsService *clients.Service

	// Rasterizer nil => /api/admin/export responde 500.
	Rasterizer     report.Rasterizer
	ReportLocation *time.Location
	ClinicName     string

	Logger logger.Logger

	CookieName    string
	SessionTTL    time.Duration
	SecureCookies bool

	CORSOrigin string
	StaticDir  string
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	repo := opts.Clients
	if repo == nil {
		repo = mem.NewClientRepo()
	}
	provider := opts.Auth
	if provider == nil {
		provider = auth.RejectAll{}
	}
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = mem.DefaultSessionTTL
	}
	sessions := opts.Sessions
	if sessions == nil {
		sessions = mem.NewSessionStore(ttl)
	}
	cookie := middleware.CookieOptions{
		Name:   opts.CookieName,
		Secure: opts.SecureCookies,
		TTL:    ttl,
	}
	if cookie.Name == "" {
		cookie.Name = defaultCookieName
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(log))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5, "application/json", "text/html", "text/css", "application/javascript"))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(opts.CORSOrigin))
	r.Use(middleware.SessionContext(sessions, cookie.Name, log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Services por módulo
	clientsSvc := opts.ClientsService
	if clientsSvc == nil {
		clientOpts := []clients.Option{clients.WithLogger(log)}
		if opts.Notifier != nil {
			clientOpts = append(clientOpts, clients.WithNotifier(opts.Notifier))
		}
		clientsSvc = clients.NewService(repo, clientOpts...)
	}

	reports := report.NewGenerator(opts.Rasterizer, report.Options{
		Location:   opts.ReportLocation,
		ClinicName: opts.ClinicName,
	})
	adminSvc := admin.NewService(provider, sessions, clientsSvc, reports, log)

	// Rutas por módulo
	clients.RegisterRoutes(r, clientsSvc, log)
	admin.RegisterRoutes(r, adminSvc, cookie, log)
	site.RegisterRoutes(r, opts.StaticDir, log)

	return r
}
