package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"vet-clinic/internal/ports/session"

	"github.com/google/uuid"
)

const DefaultSessionTTL = 24 * time.Hour

// SessionStore guarda sesiones en memoria del proceso (se pierden al reiniciar).
type SessionStore struct {
	mu   sync.RWMutex
	byID map[string]session.Session
	ttl  time.Duration
	now  func() time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		byID: make(map[string]session.Session),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (s *SessionStore) Create(ctx context.Context, d session.Data) (session.Session, error) {
	now := s.now()
	sess := session.Session{
		ID:              uuid.NewString(),
		IsAuthenticated: d.IsAuthenticated,
		UserID:          d.UserID,
		UserEmail:       d.UserEmail,
		AccessToken:     d.AccessToken,
		IssuedAt:        now,
		ExpiresAt:       now.Add(s.ttl),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID[sess.ID] = sess
	return sess, nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (session.Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return session.Session{}, session.ErrNotFound
	}

	s.mu.RLock()
	sess, ok := s.byID[id]
	s.mu.RUnlock()

	if !ok {
		return session.Session{}, session.ErrNotFound
	}
	if sess.Expired(s.now()) {
		s.mu.Lock()
		// re-chequeo: pudo haber sido reemplazada entre locks
		if cur, ok := s.byID[id]; ok && cur.Expired(s.now()) {
			delete(s.byID, id)
		}
		s.mu.Unlock()
		return session.Session{}, session.ErrNotFound
	}
	return sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byID, id)
	return nil
}

// Purge elimina todas las sesiones expiradas y devuelve cuántas borró.
func (s *SessionStore) Purge() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, sess := range s.byID {
		if sess.Expired(now) {
			delete(s.byID, id)
			n++
		}
	}
	return n
}

// Len es para tests/diagnóstico.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
