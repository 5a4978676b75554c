package http

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/InvenScan-api/internal/scanner"
)

// ScanSession una sesión de escaneo viva: un filtro de decodificación por
// sesión, atado al usuario que la abrió.
type ScanSession struct {
	ID     string
	UserID string
	Filter *scanner.DecodeFilter

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *ScanSession) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *ScanSession) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// SessionRegistry registro en memoria de sesiones de escaneo con expiración
// por inactividad. Un janitor periódico retira las sesiones vencidas; cerrar
// una sesión inexistente no es error (DELETE idempotente).
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*ScanSession

	cooldown time.Duration
	rearm    time.Duration
	ttl      time.Duration

	stop chan struct{}
	once sync.Once
}

// NewSessionRegistry construye el registro y arranca el janitor.
func NewSessionRegistry(cooldown, rearm, ttl time.Duration) *SessionRegistry {
	r := &SessionRegistry{
		sessions: make(map[string]*ScanSession),
		cooldown: cooldown,
		rearm:    rearm,
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
	go r.janitor()
	return r
}

// Create abre una sesión nueva para el usuario.
func (r *SessionRegistry) Create(userID string) *ScanSession {
	s := &ScanSession{
		ID:       uuid.New().String(),
		UserID:   userID,
		Filter:   scanner.NewDecodeFilter(r.cooldown, scanner.WithRearmDelay(r.rearm)),
		lastSeen: time.Now(),
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	n := len(r.sessions)
	r.mu.Unlock()
	scanSessionsActive.Set(float64(n))
	return s
}

// Get devuelve la sesión del usuario, o nil si no existe o pertenece a otro.
// Refresca el reloj de inactividad.
func (r *SessionRegistry) Get(id, userID string) *ScanSession {
	r.mu.RLock()
	s := r.sessions[id]
	r.mu.RUnlock()
	if s == nil || s.UserID != userID {
		return nil
	}
	s.touch(time.Now())
	return s
}

// Close retira la sesión del usuario. Devuelve false si no existía o
// pertenece a otro usuario; cerrar dos veces es un no-op.
func (r *SessionRegistry) Close(id, userID string) bool {
	r.mu.Lock()
	s := r.sessions[id]
	if s == nil || s.UserID != userID {
		r.mu.Unlock()
		return false
	}
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()
	scanSessionsActive.Set(float64(n))
	return true
}

// Stop detiene el janitor. Las sesiones restantes se descartan.
func (r *SessionRegistry) Stop() {
	r.once.Do(func() { close(r.stop) })
}

func (r *SessionRegistry) janitor() {
	interval := r.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case now := <-ticker.C:
			r.sweep(now)
		}
	}
}

func (r *SessionRegistry) sweep(now time.Time) {
	r.mu.Lock()
	for id, s := range r.sessions {
		if s.idleSince(now) > r.ttl {
			delete(r.sessions, id)
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()
	scanSessionsActive.Set(float64(n))
}
