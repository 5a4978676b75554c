package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingResolver resolver falso que cuenta llamadas y devuelve lo configurado.
type countingResolver struct {
	mu    sync.Mutex
	calls []string
	res   Resolution
	err   error
}

func (r *countingResolver) Resolve(_ context.Context, code string) (Resolution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, code)
	if r.err != nil {
		return Resolution{Code: code}, r.err
	}
	res := r.res
	res.Code = code
	return res, nil
}

func (r *countingResolver) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// recordingNotifier captura el feedback emitido.
type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	infos     []string
	errorKind []ErrorKind
}

func (n *recordingNotifier) Success(_ Resolution, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *recordingNotifier) Info(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.infos = append(n.infos, msg)
}

func (n *recordingNotifier) Error(kind ErrorKind, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errorKind = append(n.errorKind, kind)
}

type scannerFixture struct {
	scanner  *Scanner
	stream   *fakeStream
	resolver *countingResolver
	notifier *recordingNotifier
	clock    *fakeClock
}

func newScannerFixture(t *testing.T, resolver *countingResolver, cb Callbacks) *scannerFixture {
	t.Helper()
	stream := newFakeStream()
	notifier := &recordingNotifier{}
	clock := newFakeClock()
	sc := New(Config{
		Enumerator: &fakeEnumerator{devices: []DeviceInfo{{ID: "back-1", Facing: FacingBack}}},
		Source:     &fakeSource{stream: stream},
		Resolver:   resolver,
		Notifier:   notifier,
		Cooldown:   time.Second,
		Rearm:      500 * time.Millisecond,
		Clock:      clock.Now,
		Logger:     zerolog.Nop(),
		Callbacks:  cb,
	})
	return &scannerFixture{scanner: sc, stream: stream, resolver: resolver, notifier: notifier, clock: clock}
}

// emit entrega un decode al loop.
func (f *scannerFixture) emit(code string) {
	f.stream.events <- DecodeEvent{Code: code, Timestamp: f.clock.Now()}
}

// waitDrained espera a que el loop consuma todos los decodes pendientes.
func (f *scannerFixture) waitDrained(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool { return len(f.stream.events) == 0 },
		time.Second, 5*time.Millisecond)
}

// Escaneo feliz: stock 4 -> 5, el mensaje incluye ambos valores y se invoca el callback.
func TestScanner_EscaneoExitoso(t *testing.T) {
	var updated atomic.Int32
	resolver := &countingResolver{res: Resolution{
		ProductID:   "p-1",
		ProductName: "Café Águila Roja 500g",
		StockBefore: 4,
		StockAfter:  5,
	}}
	fx := newScannerFixture(t, resolver, Callbacks{
		OnStockUpdated: func(r Resolution) {
			updated.Add(1)
			assert.Equal(t, 4, r.StockBefore)
			assert.Equal(t, 5, r.StockAfter)
		},
	})
	require.NoError(t, fx.scanner.Start(context.Background()))

	fx.emit("7701234567890")
	require.Eventually(t, func() bool { return updated.Load() == 1 },
		time.Second, 5*time.Millisecond)
	fx.scanner.Close()

	assert.Equal(t, 1, resolver.callCount())
	require.Len(t, fx.notifier.successes, 1)
	assert.Contains(t, fx.notifier.successes[0], "4")
	assert.Contains(t, fx.notifier.successes[0], "5")
}

// Dos decodes del mismo código a 100ms: el segundo se suprime, una sola resolución.
func TestScanner_DuplicadoSuprimido(t *testing.T) {
	resolver := &countingResolver{res: Resolution{ProductID: "p-1", ProductName: "X", StockBefore: 1, StockAfter: 2}}
	fx := newScannerFixture(t, resolver, Callbacks{})
	require.NoError(t, fx.scanner.Start(context.Background()))

	fx.emit("7701234567890")
	require.Eventually(t, func() bool { return resolver.callCount() == 1 },
		time.Second, 5*time.Millisecond)

	fx.clock.Advance(100 * time.Millisecond)
	fx.emit("7701234567890")
	fx.waitDrained(t)
	fx.scanner.Close()

	assert.Equal(t, 1, resolver.callCount(), "el segundo decode dentro de la ventana no debe resolver")
}

// Código inexistente: se invoca OnProductNotFound con el código y no hay éxito.
func TestScanner_ProductoNoEncontrado(t *testing.T) {
	resolver := &countingResolver{err: fmt.Errorf("%w", ErrProductNotFound)}
	var notFoundCode atomic.Value
	fx := newScannerFixture(t, resolver, Callbacks{
		OnProductNotFound: func(code string) { notFoundCode.Store(code) },
	})
	require.NoError(t, fx.scanner.Start(context.Background()))

	fx.emit("7701234567890")
	require.Eventually(t, func() bool { return notFoundCode.Load() != nil },
		time.Second, 5*time.Millisecond)
	fx.scanner.Close()

	assert.Equal(t, "7701234567890", notFoundCode.Load())
	assert.Empty(t, fx.notifier.successes)
	require.Len(t, fx.notifier.infos, 1)
	assert.Contains(t, fx.notifier.infos[0], "7701234567890")
}

// Fallo de red en la consulta: feedback con kind de red y el filtro pasa a Cooldown y luego Idle.
func TestScanner_ErrorDeRedNoAtascaElFiltro(t *testing.T) {
	resolver := &countingResolver{err: fmt.Errorf("%w: connection refused", ErrLookup)}
	fx := newScannerFixture(t, resolver, Callbacks{})
	require.NoError(t, fx.scanner.Start(context.Background()))

	fx.emit("7701234567890")
	// Espera activa corta: el loop es asíncrono respecto al emit.
	require.Eventually(t, func() bool { return fx.scanner.Filter().State() == StateCooldown },
		time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, resolver.callCount())
	fx.clock.Advance(time.Second)
	assert.Equal(t, StateIdle, fx.scanner.Filter().State(), "tras el re-armado el filtro vuelve a Idle")

	fx.scanner.Close()
	require.Len(t, fx.notifier.errorKind, 1)
	assert.Equal(t, ErrorKindLookup, fx.notifier.errorKind[0])
}

// Close repetido no lanza; la cámara se libera una sola vez y OnClose se invoca una vez.
func TestScanner_CloseIdempotente(t *testing.T) {
	resolver := &countingResolver{res: Resolution{StockBefore: 0, StockAfter: 1}}
	var closes atomic.Int32
	fx := newScannerFixture(t, resolver, Callbacks{
		OnClose: func() { closes.Add(1) },
	})
	require.NoError(t, fx.scanner.Start(context.Background()))

	fx.scanner.Close()
	fx.scanner.Close()
	fx.scanner.Close()

	assert.Equal(t, int32(1), fx.stream.closes.Load())
	assert.Equal(t, int32(1), closes.Load())
}

// Cerrar con una resolución en vuelo: la llamada termina y su resultado se descarta.
func TestScanner_CierreConResolucionEnVuelo(t *testing.T) {
	started := make(chan struct{})
	unblock := make(chan struct{})
	var calls atomic.Int32
	resolver := ResolverFunc(func(_ context.Context, code string) (Resolution, error) {
		calls.Add(1)
		close(started)
		<-unblock
		return Resolution{Code: code, StockBefore: 2, StockAfter: 3}, nil
	})

	stream := newFakeStream()
	notifier := &recordingNotifier{}
	var updated atomic.Int32
	sc := New(Config{
		Enumerator: &fakeEnumerator{devices: []DeviceInfo{{ID: "back-1", Facing: FacingBack}}},
		Source:     &fakeSource{stream: stream},
		Resolver:   resolver,
		Notifier:   notifier,
		Cooldown:   time.Second,
		Logger:     zerolog.Nop(),
		Callbacks:  Callbacks{OnStockUpdated: func(Resolution) { updated.Add(1) }},
	})
	require.NoError(t, sc.Start(context.Background()))

	stream.events <- DecodeEvent{Code: "7701234567890", Timestamp: time.Now()}
	<-started

	done := make(chan struct{})
	go func() {
		sc.Close()
		close(done)
	}()
	// La cámara se libera de inmediato aunque la resolución siga en vuelo.
	require.Eventually(t, func() bool { return stream.closes.Load() == 1 },
		time.Second, 5*time.Millisecond)

	close(unblock)
	<-done

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(0), updated.Load(), "el resultado en vuelo se descarta tras el cierre")
	assert.Empty(t, notifier.successes)
}

// El fallo de arranque de cámara notifica el kind correcto.
func TestScanner_FalloDeCamaraNotificado(t *testing.T) {
	stream := newFakeStream()
	notifier := &recordingNotifier{}
	sc := New(Config{
		Enumerator: &fakeEnumerator{err: ErrPermissionDenied},
		Source:     &fakeSource{stream: stream},
		Resolver:   &countingResolver{},
		Notifier:   notifier,
		Logger:     zerolog.Nop(),
	})
	err := sc.Start(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPermissionDenied))
	require.Len(t, notifier.errorKind, 1)
	assert.Equal(t, ErrorKindPermission, notifier.errorKind[0])
}

// Cerrar el escáner desde un callback (la reacción natural al handoff de
// "producto no encontrado") debe retornar: el loop no puede esperarse a sí mismo.
func TestScanner_CierreDesdeCallbackNoBloquea(t *testing.T) {
	resolver := &countingResolver{err: ErrProductNotFound}
	var fx *scannerFixture
	closedFromCallback := make(chan struct{})
	fx = newScannerFixture(t, resolver, Callbacks{
		OnProductNotFound: func(code string) {
			fx.scanner.Close()
			close(closedFromCallback)
		},
	})
	require.NoError(t, fx.scanner.Start(context.Background()))

	fx.emit("0000000000000")
	select {
	case <-closedFromCallback:
	case <-time.After(time.Second):
		t.Fatal("Close desde el callback quedó bloqueado")
	}

	// La cámara se liberó una sola vez y un Close externo posterior es no-op.
	fx.scanner.Close()
	assert.Equal(t, int32(1), fx.stream.closes.Load())
	assert.Equal(t, 1, resolver.callCount())
}

// También vale cerrar desde el callback de éxito.
func TestScanner_CierreDesdeOnStockUpdated(t *testing.T) {
	resolver := &countingResolver{res: Resolution{ProductID: "p-1", ProductName: "X", StockBefore: 1, StockAfter: 2}}
	var fx *scannerFixture
	done := make(chan struct{})
	fx = newScannerFixture(t, resolver, Callbacks{
		OnStockUpdated: func(r Resolution) {
			fx.scanner.Close()
			close(done)
		},
	})
	require.NoError(t, fx.scanner.Start(context.Background()))

	fx.emit("7701234567890")
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close desde OnStockUpdated quedó bloqueado")
	}
}
