package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"vet-clinic/internal/middleware"
	"vet-clinic/internal/platform/logger"
	"vet-clinic/internal/platform/respond"
	"vet-clinic/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

const (
	msgInvalidCredentials = "Неверный логин или пароль"
	msgAuthFailure        = "Ошибка сервера при аутентификации"
	msgExportFailure      = "Ошибка генерации PDF: "

	maxLoginBody = 16 << 10
)

// RegisterRoutes espera que middleware.SessionContext ya esté montado en r.
func RegisterRoutes(r chi.Router, svc *Service, cookie middleware.CookieOptions, log logger.Logger) {
	r.Route("/api/admin", func(ar chi.Router) {
		ar.Post("/login", loginHandler(svc, cookie))
		ar.Post("/logout", logoutHandler(svc, cookie))

		ar.Group(func(pr chi.Router) {
			pr.Use(middleware.RequireSession(log))
			pr.Get("/session", sessionHandler())
			pr.Get("/stats", statsHandler(svc, log))
			pr.Get("/clients", clientsHandler(svc, log))
			pr.Get("/export", exportHandler(svc))
		})
	})
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool `json:"success"`
	User    User `json:"user"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type sessionResponse struct {
	Authenticated bool `json:"authenticated"`
	User          User `json:"user"`
}

// loginHandler godoc
// @Summary Login del administrador
// @Description Verifica credenciales con el Auth Provider y emite la cookie de sesión (HttpOnly, 24h).
// @Tags admin
// @Accept json
// @Produce json
// @Param payload body loginRequest true "Credenciales"
// @Success 200 {object} loginResponse
// @Failure 401 {object} respond.ErrorBody
// @Failure 500 {object} respond.ErrorBody
// @Router /api/admin/login [post]
func loginHandler(svc *Service, cookie middleware.CookieOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLoginBody)).Decode(&req); err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		var prevID string
		if prev, ok := middleware.GetSession(r.Context()); ok {
			prevID = prev.ID
		}

		sess, user, err := svc.Login(r.Context(), req.Login, req.Password, prevID)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				respond.Error(w, http.StatusUnauthorized, msgInvalidCredentials)
				return
			}
			respond.Error(w, http.StatusInternalServerError, msgAuthFailure)
			return
		}

		middleware.SetSessionCookie(w, cookie, sess)
		respond.JSON(w, http.StatusOK, loginResponse{Success: true, User: user})
	}
}

// logoutHandler godoc
// @Summary Logout
// @Description Destruye la sesión local siempre; el sign-out del proveedor es best-effort.
// @Tags admin
// @Produce json
// @Success 200 {object} successResponse
// @Router /api/admin/logout [post]
func logoutHandler(svc *Service, cookie middleware.CookieOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.GetSession(r.Context())
		svc.Logout(r.Context(), sess, ok)

		middleware.ClearSessionCookie(w, cookie)
		respond.JSON(w, http.StatusOK, successResponse{Success: true})
	}
}

// sessionHandler godoc
// @Summary Sesión actual
// @Tags admin
// @Produce json
// @Success 200 {object} sessionResponse
// @Failure 401 {object} respond.ErrorBody
// @Router /api/admin/session [get]
func sessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.GetSession(r.Context())
		respond.JSON(w, http.StatusOK, sessionResponse{
			Authenticated: true,
			User:          User{ID: sess.UserID, Email: sess.UserEmail},
		})
	}
}

// statsHandler godoc
// @Summary Estadísticas de clientes
// @Tags admin
// @Produce json
// @Success 200 {object} Stats
// @Failure 401 {object} respond.ErrorBody
// @Failure 500 {object} respond.ErrorBody
// @Router /api/admin/stats [get]
func statsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.Stats(r.Context())
		if err != nil {
			logger.FromContext(r.Context(), log).Error("admin stats failed", logger.Fields{"err": err})
			respond.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		respond.JSON(w, http.StatusOK, st)
	}
}

// clientsHandler godoc
// @Summary Listado completo de clientes
// @Tags admin
// @Produce json
// @Success 200 {array} clients.Client
// @Failure 401 {object} respond.ErrorBody
// @Failure 500 {object} respond.ErrorBody
// @Router /api/admin/clients [get]
func clientsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.Clients(r.Context())
		if err != nil {
			logger.FromContext(r.Context(), log).Error("admin clients failed", logger.Fields{"err": err})
			respond.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		respond.JSON(w, http.StatusOK, items)
	}
}

// exportHandler godoc
// @Summary Exportar clientes a PDF
// @Tags admin
// @Produce application/pdf
// @Success 200 {file} binary
// @Failure 401 {object} respond.ErrorBody
// @Failure 500 {object} respond.ErrorBody
// @Router /api/admin/export [get]
func exportHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pdf, filename, err := svc.Export(r.Context())
		if err != nil {
			respond.Error(w, http.StatusInternalServerError, msgExportFailure+err.Error())
			return
		}

		h := w.Header()
		h.Set("Content-Type", "application/pdf")
		h.Set("Content-Disposition", "attachment; filename="+filename)
		h.Set("Content-Length", strconv.Itoa(len(pdf)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(pdf)
	}
}
