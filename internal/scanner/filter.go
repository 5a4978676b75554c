package scanner

import (
	"sync"
	"time"
)

// FilterState estados del filtro de decodificación.
type FilterState int

const (
	// StateIdle listo para aceptar un escaneo.
	StateIdle FilterState = iota
	// StateLocked un código fue aceptado y espera inicio de resolución.
	StateLocked
	// StateProcessing la resolución del código aceptado está en vuelo.
	StateProcessing
	// StateCooldown ventana de espera antes de volver a Idle.
	StateCooldown
)

// String nombre legible del estado (para logs y respuestas).
func (s FilterState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLocked:
		return "locked"
	case StateProcessing:
		return "processing"
	case StateCooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

// Verdict resultado de ofrecer un código al filtro.
type Verdict string

const (
	// VerdictAccepted el código pasa a resolución.
	VerdictAccepted Verdict = "accepted"
	// VerdictDuplicate mismo código que el último aceptado dentro de la ventana.
	VerdictDuplicate Verdict = "duplicate"
	// VerdictBusy ya hay un escaneo en vuelo (Locked o Processing).
	VerdictBusy Verdict = "busy"
	// VerdictCooldown el filtro está en ventana de cooldown.
	VerdictCooldown Verdict = "cooldown"
)

// DefaultCooldown ventana por defecto de supresión de duplicados,
// medida desde la aceptación del código.
const DefaultCooldown = time.Second

// DefaultRearmDelay espera por defecto tras una resolución (tiempo de
// exhibición del feedback) antes de volver a Idle.
const DefaultRearmDelay = 500 * time.Millisecond

// DecodeFilter serializa los callbacks de decodificación de la cámara:
// el decoder dispara muchas veces por segundo mientras un código sigue en
// cuadro, y sin supresión un solo escaneo físico generaría decenas de
// lookups duplicados. El filtro garantiza como máximo un escaneo aceptado
// por presentación del código y como máximo uno en vuelo a la vez.
//
// La expiración del cooldown se evalúa de forma perezosa contra el reloj
// inyectado, así los tests no necesitan dormir.
type DecodeFilter struct {
	mu       sync.Mutex
	now      func() time.Time
	cooldown time.Duration // ventana anti-duplicados desde la aceptación
	rearm    time.Duration // espera Processing -> Idle (exhibición del feedback)

	state FilterState
	code  string    // código en vuelo (Locked/Processing)
	since time.Time // momento de aceptación del código en vuelo
	until time.Time // fin de la ventana de cooldown

	lastCode     string    // último código aceptado (memo anti-duplicados)
	lastAccepted time.Time // momento de esa aceptación
}

// FilterOption configura el DecodeFilter.
type FilterOption func(*DecodeFilter)

// WithClock inyecta un reloj (tests).
func WithClock(now func() time.Time) FilterOption {
	return func(f *DecodeFilter) { f.now = now }
}

// WithRearmDelay fija la espera entre el fin de una resolución y el
// re-armado del filtro. d <= 0 usa DefaultRearmDelay.
func WithRearmDelay(d time.Duration) FilterOption {
	return func(f *DecodeFilter) {
		if d > 0 {
			f.rearm = d
		}
	}
}

// NewDecodeFilter crea el filtro con la ventana de cooldown indicada.
// cooldown <= 0 usa DefaultCooldown.
func NewDecodeFilter(cooldown time.Duration, opts ...FilterOption) *DecodeFilter {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	f := &DecodeFilter{
		now:      time.Now,
		cooldown: cooldown,
		rearm:    DefaultRearmDelay,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Offer presenta un código decodificado al filtro y devuelve el veredicto.
// Solo VerdictAccepted habilita una resolución; cualquier otro veredicto
// significa que el evento debe descartarse.
func (f *DecodeFilter) Offer(code string) Verdict {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	f.expireCooldown(now)

	switch f.state {
	case StateLocked, StateProcessing:
		return VerdictBusy
	case StateCooldown:
		return VerdictCooldown
	}

	// Idle: suprime el mismo código dentro de la ventana desde su aceptación.
	if code != "" && code == f.lastCode && now.Sub(f.lastAccepted) < f.cooldown {
		return VerdictDuplicate
	}

	f.state = StateLocked
	f.code = code
	f.since = now
	f.lastCode = code
	f.lastAccepted = now
	return VerdictAccepted
}

// BeginProcessing transición Locked -> Processing. Devuelve false si el
// filtro no estaba Locked (no hay código aceptado pendiente).
func (f *DecodeFilter) BeginProcessing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateLocked {
		return false
	}
	f.state = StateProcessing
	return true
}

// Complete cierra la resolución en vuelo, con éxito o con error, y entra
// siempre a Cooldown por el tiempo de re-armado: la política es
// determinista, nunca re-armar de inmediato tras un fallo. Devuelve el
// instante en que el filtro vuelve a Idle. El memo de último código sigue
// vigente después del re-armado, así un código que permanece en cuadro no
// se vuelve a aceptar hasta que venza su ventana de cooldown.
func (f *DecodeFilter) Complete() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateProcessing && f.state != StateLocked {
		return f.until
	}
	f.state = StateCooldown
	f.code = ""
	f.until = f.now().Add(f.rearm)
	return f.until
}

// State devuelve el estado actual, aplicando primero la expiración
// perezosa del cooldown.
func (f *DecodeFilter) State() FilterState {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expireCooldown(f.now())
	return f.state
}

// InFlight devuelve el código aceptado actualmente en vuelo, o vacío.
func (f *DecodeFilter) InFlight() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.code
}

// expireCooldown pasa Cooldown -> Idle si la ventana ya venció. Llamar con el lock tomado.
func (f *DecodeFilter) expireCooldown(now time.Time) {
	if f.state == StateCooldown && !now.Before(f.until) {
		f.state = StateIdle
	}
}
