// Package admin implementa el panel: login/logout contra el Auth Provider y
// las vistas protegidas (stats, clientes, export PDF).
package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vet-clinic/internal/domain/clients"
	"vet-clinic/internal/platform/logger"
	"vet-clinic/internal/ports/auth"
	"vet-clinic/internal/ports/session"
	"vet-clinic/internal/report"
)

// ErrSession: el Session Store falló al emitir la sesión.
var ErrSession = errors.New("session store error")

type Service struct {
	provider auth.Provider
	sessions session.Store
	clients  *clients.Service
	reports  *report.Generator
	log      logger.Logger
	now      func() time.Time
}

func NewService(provider auth.Provider, sessions session.Store, clientsSvc *clients.Service, reports *report.Generator, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		provider: provider,
		sessions: sessions,
		clients:  clientsSvc,
		reports:  reports,
		log:      log,
		now:      time.Now,
	}
}

// User es lo único que se devuelve del login: nunca tokens ni password.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Login verifica con el proveedor y emite una sesión NUEVA. Si había una sesión
// previa (prevID) se destruye: el id siempre rota.
func (s *Service) Login(ctx context.Context, login, password, prevID string) (session.Session, User, error) {
	log := logger.FromContext(ctx, s.log)

	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return session.Session{}, User{}, auth.ErrInvalidCredentials
	}

	id, err := s.provider.SignIn(ctx, login, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			log.Warn("login rejected", nil)
			return session.Session{}, User{}, err
		}
		log.Error("login provider failure", logger.Fields{"err": err})
		return session.Session{}, User{}, err
	}

	if prevID != "" {
		_ = s.sessions.Delete(ctx, prevID)
	}

	sess, err := s.sessions.Create(ctx, session.Data{
		IsAuthenticated: true,
		UserID:          id.UserID,
		UserEmail:       id.Email,
		AccessToken:     id.AccessToken,
	})
	if err != nil {
		return session.Session{}, User{}, fmt.Errorf("%w: create: %w", ErrSession, err)
	}

	log.Info("login ok", logger.Fields{"user_id": id.UserID, "session": logger.ShortID(sess.ID)})
	return sess, User{ID: id.UserID, Email: id.Email}, nil
}

// Logout: sign-out en el proveedor es best-effort; la sesión local se destruye siempre.
func (s *Service) Logout(ctx context.Context, sess session.Session, ok bool) {
	if !ok {
		return
	}
	log := logger.FromContext(ctx, s.log)

	if sess.IsAuthenticated {
		err := s.provider.SignOut(ctx, auth.Identity{
			UserID:      sess.UserID,
			Email:       sess.UserEmail,
			AccessToken: sess.AccessToken,
		})
		if err != nil {
			log.Warn("provider sign-out failed", logger.Fields{"user_id": sess.UserID, "err": err})
		}
	}

	if err := s.sessions.Delete(ctx, sess.ID); err != nil {
		log.Warn("session delete failed", logger.Fields{"session": logger.ShortID(sess.ID), "err": err})
	}
	log.Info("logout", logger.Fields{"user_id": sess.UserID})
}

type Stats struct {
	TotalClients int                  `json:"totalClients"`
	PetTypeStats clients.PetTypeStats `json:"petTypeStats"`
	LastUpdated  string               `json:"lastUpdated"`
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	total, err := s.clients.CountAll(ctx)
	if err != nil {
		return Stats{}, err
	}
	byType, err := s.clients.PetTypeStats(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		TotalClients: total,
		PetTypeStats: byType,
		LastUpdated:  s.now().UTC().Format(time.RFC3339),
	}, nil
}

func (s *Service) Clients(ctx context.Context) ([]clients.Client, error) {
	return s.clients.List(ctx)
}

// Export devuelve el PDF completo y su nombre de archivo; nunca salida parcial.
func (s *Service) Export(ctx context.Context) ([]byte, string, error) {
	log := logger.FromContext(ctx, s.log)

	records, err := s.clients.List(ctx)
	if err != nil {
		return nil, "", err
	}

	start := s.now()
	log.Info("pdf export started", logger.Fields{"records": len(records)})

	pdf, err := s.reports.Generate(ctx, records)
	if err != nil {
		log.Error("pdf export failed", logger.Fields{"err": err})
		return nil, "", err
	}

	log.Info("pdf export done", logger.Fields{
		"bytes":    len(pdf),
		"duration": s.now().Sub(start).String(),
	})
	return pdf, report.Filename(start), nil
}
