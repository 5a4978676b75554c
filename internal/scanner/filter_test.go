package scanner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock reloj manual para no dormir en los tests.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// Filtro con ventana de duplicados de 1s y re-armado de 500ms.
func newTestFilter(clock *fakeClock) *DecodeFilter {
	return NewDecodeFilter(time.Second, WithClock(clock.Now), WithRearmDelay(500*time.Millisecond))
}

// Un código aceptado pasa a Locked y el filtro reporta busy hasta completar.
func TestFilter_AceptaYBloquea(t *testing.T) {
	clock := newFakeClock()
	f := newTestFilter(clock)

	require.Equal(t, VerdictAccepted, f.Offer("7701234567890"))
	assert.Equal(t, StateLocked, f.State())
	assert.Equal(t, "7701234567890", f.InFlight())

	// Mientras está Locked o Processing, todo se rechaza como busy.
	assert.Equal(t, VerdictBusy, f.Offer("7701234567890"))
	assert.Equal(t, VerdictBusy, f.Offer("otro-codigo"))

	require.True(t, f.BeginProcessing())
	assert.Equal(t, StateProcessing, f.State())
	assert.Equal(t, VerdictBusy, f.Offer("7701234567890"))
}

// Dos decodes con el mismo código a 100ms: el segundo se suprime.
func TestFilter_SuprimeDuplicadoDentroDeVentana(t *testing.T) {
	clock := newFakeClock()
	f := newTestFilter(clock)

	require.Equal(t, VerdictAccepted, f.Offer("7701234567890"))
	f.BeginProcessing()
	f.Complete() // re-armado en 500ms

	clock.Advance(500 * time.Millisecond)
	require.Equal(t, StateIdle, f.State())

	// 600ms desde la aceptación: dentro de la ventana de 1s -> duplicado.
	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, VerdictDuplicate, f.Offer("7701234567890"))

	// Un código distinto sí se acepta de inmediato.
	assert.Equal(t, VerdictAccepted, f.Offer("5901234123457"))
}

// La ventana de duplicados se mide desde la aceptación; en el borde exacto ya no aplica.
func TestFilter_VentanaVencidaAceptaMismoCodigo(t *testing.T) {
	clock := newFakeClock()
	f := newTestFilter(clock)

	require.Equal(t, VerdictAccepted, f.Offer("7701234567890"))
	f.BeginProcessing()
	f.Complete()
	clock.Advance(time.Second) // 1s desde la aceptación, re-armado ya vencido

	assert.Equal(t, VerdictAccepted, f.Offer("7701234567890"),
		"pasada la ventana, el mismo código es una nueva presentación")
}

// Durante el cooldown de re-armado todo se rechaza, incluso códigos distintos.
func TestFilter_CooldownRechazaTodo(t *testing.T) {
	clock := newFakeClock()
	f := newTestFilter(clock)

	require.Equal(t, VerdictAccepted, f.Offer("AAA"))
	f.BeginProcessing()
	f.Complete()
	assert.Equal(t, StateCooldown, f.State())

	clock.Advance(300 * time.Millisecond)
	assert.Equal(t, VerdictCooldown, f.Offer("BBB"))
	assert.Equal(t, VerdictCooldown, f.Offer("AAA"))

	// Vencido el re-armado, vuelve a Idle: acepta un código distinto y
	// sigue suprimiendo el último aceptado dentro de su ventana.
	clock.Advance(200 * time.Millisecond)
	assert.Equal(t, VerdictDuplicate, f.Offer("AAA"))
	assert.Equal(t, VerdictAccepted, f.Offer("BBB"))
}

// Complete siempre entra a Cooldown, haya o no BeginProcessing previo.
func TestFilter_CompleteDesdeLocked(t *testing.T) {
	clock := newFakeClock()
	f := newTestFilter(clock)

	require.Equal(t, VerdictAccepted, f.Offer("AAA"))
	until := f.Complete()
	assert.Equal(t, StateCooldown, f.State())
	assert.Equal(t, clock.Now().Add(500*time.Millisecond), until)
}

// Ráfaga de decodes idénticos dentro de la ventana: exactamente uno aceptado.
func TestFilter_RafagaDeDecodesUnSoloAceptado(t *testing.T) {
	clock := newFakeClock()
	f := newTestFilter(clock)

	accepted := 0
	// El decoder dispara ~10 veces por segundo mientras el código está en cuadro.
	for i := 0; i < 10; i++ {
		if f.Offer("7701234567890") == VerdictAccepted {
			accepted++
			f.BeginProcessing()
			f.Complete()
		}
		clock.Advance(100 * time.Millisecond)
	}
	assert.Equal(t, 1, accepted, "una presentación del código debe producir exactamente un escaneo aceptado")
}

func TestFilter_BeginProcessingSinLocked(t *testing.T) {
	f := newTestFilter(newFakeClock())
	assert.False(t, f.BeginProcessing(), "sin código aceptado no hay transición a Processing")
}
