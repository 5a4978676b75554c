// Package scanner implementa el pipeline de escaneo de códigos de barras:
// sesión de cámara, filtro de decodificación con supresión de duplicados,
// resolución código -> producto -> incremento de stock, y feedback.
//
// Flujo: frames -> decoder -> DecodeFilter -> Resolver -> Notifier -> re-armado.
package scanner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Callbacks expuestos hacia la UI contenedora. Cualquiera puede ser nil.
type Callbacks struct {
	// OnStockUpdated se invoca tras un incremento exitoso.
	OnStockUpdated func(r Resolution)
	// OnProductNotFound entrega el código para el flujo de "crear producto
	// con el código prellenado". El escaneo no se re-arma en silencio:
	// el llamador decide si retoma la sesión.
	OnProductNotFound func(code string)
	// OnClose se invoca exactamente una vez al cerrar el escáner.
	OnClose func()
}

// Config dependencias del escáner.
type Config struct {
	Enumerator Enumerator
	Source     Source
	Resolver   Resolver
	Notifier   Notifier // nil -> NopNotifier
	Cooldown   time.Duration
	Rearm      time.Duration    // exhibición del feedback antes de re-armar
	Clock      func() time.Time // nil -> time.Now
	Logger     zerolog.Logger
	Callbacks  Callbacks
}

// Scanner orquesta cámara, filtro y resolución. Una sola goroutine consume
// el stream de decodificación, así nunca hay dos resoluciones en vuelo.
type Scanner struct {
	camera   *CameraSession
	filter   *DecodeFilter
	resolver Resolver
	notifier Notifier
	cb       Callbacks
	log      zerolog.Logger

	closed atomic.Bool
	once   sync.Once
	wg     sync.WaitGroup
	cancel context.CancelFunc

	// dispatching indica que la única goroutine del loop está dentro de un
	// notifier o callback. Close desde ahí no debe esperar al loop: sería
	// esperarse a sí mismo.
	dispatching atomic.Bool
}

// New construye el escáner. No toca hardware hasta Start.
func New(cfg Config) *Scanner {
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = NopNotifier{}
	}
	var opts []FilterOption
	if cfg.Clock != nil {
		opts = append(opts, WithClock(cfg.Clock))
	}
	if cfg.Rearm > 0 {
		opts = append(opts, WithRearmDelay(cfg.Rearm))
	}
	return &Scanner{
		camera:   NewCameraSession(cfg.Enumerator, cfg.Source),
		filter:   NewDecodeFilter(cfg.Cooldown, opts...),
		resolver: cfg.Resolver,
		notifier: notifier,
		cb:       cfg.Callbacks,
		log:      cfg.Logger,
	}
}

// Filter expone el filtro (estado observable para la UI).
func (s *Scanner) Filter() *DecodeFilter { return s.filter }

// Start adquiere la cámara y arranca el loop de decodificación.
// Los fallos de cámara se notifican con su kind y texto de remediación.
func (s *Scanner) Start(ctx context.Context) error {
	if s.closed.Load() {
		return errors.New("scanner cerrado")
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	stream, err := s.camera.Start(runCtx)
	if err != nil {
		cancel()
		s.notifier.Error(Classify(err), Remediation(err))
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for ev := range stream.Events() {
			s.handleDecode(runCtx, ev)
		}
	}()
	return nil
}

// handleDecode aplica el filtro y, si el evento es aceptado, ejecuta la
// resolución. El loop es secuencial: la siguiente decodificación no se
// procesa hasta que esta resolución termine y el filtro quede en Cooldown.
func (s *Scanner) handleDecode(ctx context.Context, ev DecodeEvent) {
	if s.closed.Load() {
		return
	}
	verdict := s.filter.Offer(ev.Code)
	if verdict != VerdictAccepted {
		s.log.Trace().Str("code", ev.Code).Str("verdict", string(verdict)).Msg("decode descartado")
		return
	}
	s.filter.BeginProcessing()

	res, err := s.resolver.Resolve(ctx, ev.Code)
	// Éxito o error, siempre Cooldown: el escáner nunca queda atascado.
	s.filter.Complete()

	// Si el escáner se cerró con la resolución en vuelo, la llamada terminó
	// (o falló) por su cuenta y el resultado se descarta en silencio.
	if s.closed.Load() {
		s.log.Debug().Str("code", ev.Code).Msg("resolución descartada: escáner cerrado")
		return
	}

	s.dispatching.Store(true)
	defer s.dispatching.Store(false)

	switch {
	case err == nil:
		s.log.Info().Str("code", ev.Code).Int("stock_before", res.StockBefore).
			Int("stock_after", res.StockAfter).Msg("stock incrementado por escaneo")
		s.notifier.Success(res, SuccessMessage(res))
		if s.cb.OnStockUpdated != nil {
			s.cb.OnStockUpdated(res)
		}
	case errors.Is(err, ErrProductNotFound):
		s.notifier.Info(NotFoundMessage(ev.Code))
		if s.cb.OnProductNotFound != nil {
			s.cb.OnProductNotFound(ev.Code)
		}
	default:
		s.log.Warn().Err(err).Str("code", ev.Code).Str("kind", string(Classify(err))).
			Msg("resolución de escaneo fallida")
		s.notifier.Error(Classify(err), FailureMessage(err))
	}
}

// Close libera la cámara de inmediato, aunque haya una resolución en vuelo;
// esa llamada termina sola y su resultado se descarta. Idempotente.
// Es seguro llamar Close desde los propios callbacks (por ejemplo al
// recibir OnProductNotFound): en ese caso no se espera al loop, que
// termina solo al ver el escáner cerrado.
func (s *Scanner) Close() {
	s.once.Do(func() {
		s.closed.Store(true)
		s.camera.Stop()
		if s.cancel != nil {
			s.cancel()
		}
		if !s.dispatching.Load() {
			s.wg.Wait()
		}
		if s.cb.OnClose != nil {
			s.cb.OnClose()
		}
	})
}
