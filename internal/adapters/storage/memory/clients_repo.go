package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"vet-clinic/internal/domain/clients"

	"github.com/google/uuid"
)

var ErrMissingName = errors.New("first_name and last_name are required")

// clientRepo es el Record Store en modo demo (sin Supabase/DB).
type clientRepo struct {
	mu    sync.RWMutex
	items []clients.Client
	now   func() time.Time
}

func NewClientRepo() clients.Repository {
	return newClientRepo(time.Now)
}

func newClientRepo(now func() time.Time) *clientRepo {
	return &clientRepo{now: now}
}

func (r *clientRepo) Insert(ctx context.Context, in clients.NewClient) (clients.Client, error) {
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return clients.Client{}, ErrMissingName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	createdAt := r.now().UTC()
	// created_at estrictamente creciente aunque el reloj repita valor
	if n := len(r.items); n > 0 && !createdAt.After(r.items[n-1].CreatedAt) {
		createdAt = r.items[n-1].CreatedAt.Add(time.Microsecond)
	}

	c := clients.Client{
		ID:        uuid.NewString(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Email:     in.Email,
		PetName:   in.PetName,
		PetType:   in.PetType,
		Message:   in.Message,
		CreatedAt: createdAt,
	}
	r.items = append(r.items, c)
	return c, nil
}

func (r *clientRepo) ListNewestFirst(ctx context.Context) ([]clients.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]clients.Client, len(r.items))
	copy(out, r.items)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *clientRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items), nil
}

func (r *clientRepo) ListPetTypes(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.items))
	for _, c := range r.items {
		if c.PetType != nil {
			out = append(out, *c.PetType)
		}
	}
	return out, nil
}
