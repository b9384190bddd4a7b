package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"vet-clinic/internal/platform/logger"
)

var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrStore envuelve cualquier falla del Record Store.
	ErrStore = errors.New("record store error")
)

// DefaultNotifyTimeout acota cada aviso en segundo plano.
const DefaultNotifyTimeout = 15 * time.Second

type Service struct {
	repo          Repository
	notifier      Notifier
	notifyTimeout time.Duration
	log           logger.Logger

	pending sync.WaitGroup
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithNotifyTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.notifyTimeout = d
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:          repo,
		notifyTimeout: DefaultNotifyTimeout,
		log:           logger.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type CreateInput struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
	PetName   string
	PetType   string
	Message   string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Client, error) {
	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	if first == "" || last == "" {
		return Client{}, fmt.Errorf("%w: first name and last name are required", ErrInvalidInput)
	}

	c, err := s.repo.Insert(ctx, NewClient{
		FirstName: first,
		LastName:  last,
		Phone:     optional(in.Phone),
		Email:     optional(in.Email),
		PetName:   optional(in.PetName),
		PetType:   optional(in.PetType),
		Message:   optional(in.Message),
	})
	if err != nil {
		return Client{}, fmt.Errorf("%w: insert: %w", ErrStore, err)
	}

	if s.notifier != nil {
		// el 201 no espera al proveedor de email; el aviso sobrevive al request
		s.pending.Add(1)
		go s.notify(context.WithoutCancel(ctx), c)
	}

	return c, nil
}

func (s *Service) notify(ctx context.Context, c Client) {
	defer s.pending.Done()

	ctx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()

	if err := s.notifier.NotifyNewClient(ctx, c); err != nil {
		logger.FromContext(ctx, s.log).Warn("new client notification failed", logger.Fields{
			"client_id": c.ID,
			"err":       err,
		})
	}
}

// WaitNotifications bloquea hasta que terminen los avisos en curso (shutdown, tests).
func (s *Service) WaitNotifications() {
	s.pending.Wait()
}

func (s *Service) List(ctx context.Context) ([]Client, error) {
	items, err := s.repo.ListNewestFirst(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %w", ErrStore, err)
	}
	if items == nil {
		items = []Client{}
	}
	return items, nil
}

func (s *Service) CountAll(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: count: %w", ErrStore, err)
	}
	return n, nil
}

// PetTypeStats agrupa por pet_type; los clientes sin tipo no cuentan.
func (s *Service) PetTypeStats(ctx context.Context) (PetTypeStats, error) {
	types, err := s.repo.ListPetTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: pet types: %w", ErrStore, err)
	}
	return GroupPetTypes(types), nil
}

func GroupPetTypes(types []string) PetTypeStats {
	out := PetTypeStats{}
	for _, t := range types {
		out[t]++
	}
	return out
}

// optional: "" (o solo espacios) => nil.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
