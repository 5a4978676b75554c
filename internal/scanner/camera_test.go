package scanner

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStream stream de decodificación controlado por el test.
type fakeStream struct {
	events chan DecodeEvent
	closes atomic.Int32
}

func newFakeStream() *fakeStream {
	return &fakeStream{events: make(chan DecodeEvent, 16)}
}

func (s *fakeStream) Events() <-chan DecodeEvent { return s.events }

func (s *fakeStream) Close() error {
	if s.closes.Add(1) == 1 {
		close(s.events)
	}
	return nil
}

// fakeEnumerator devuelve una lista fija de dispositivos (o un error).
type fakeEnumerator struct {
	devices []DeviceInfo
	err     error
}

func (e *fakeEnumerator) Devices(_ context.Context) ([]DeviceInfo, error) {
	return e.devices, e.err
}

// fakeSource abre siempre el mismo stream y registra el dispositivo pedido.
type fakeSource struct {
	stream   *fakeStream
	openedID string
	err      error
}

func (s *fakeSource) Open(_ context.Context, deviceID string) (Stream, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.openedID = deviceID
	return s.stream, nil
}

func TestSelectDevice_PrefiereTrasera(t *testing.T) {
	devices := []DeviceInfo{
		{ID: "front-1", Label: "Cámara frontal", Facing: FacingFront},
		{ID: "back-1", Label: "Cámara trasera", Facing: FacingBack},
		{ID: "front-2", Label: "Cámara selfie", Facing: FacingFront},
	}
	d, err := SelectDevice(devices)
	require.NoError(t, err)
	assert.Equal(t, "back-1", d.ID)
}

func TestSelectDevice_SinOrientacionCaeAlUltimo(t *testing.T) {
	devices := []DeviceInfo{
		{ID: "cam-0", Facing: FacingUnknown},
		{ID: "cam-1", Facing: FacingUnknown},
	}
	d, err := SelectDevice(devices)
	require.NoError(t, err)
	assert.Equal(t, "cam-1", d.ID, "sin hints de orientación se usa el último listado")
}

func TestSelectDevice_UnSoloDispositivo(t *testing.T) {
	d, err := SelectDevice([]DeviceInfo{{ID: "cam-0", Facing: FacingFront}})
	require.NoError(t, err)
	assert.Equal(t, "cam-0", d.ID)
}

func TestSelectDevice_SinDispositivos(t *testing.T) {
	_, err := SelectDevice(nil)
	assert.ErrorIs(t, err, ErrNoDevice)
}

// stop() repetido tras un solo start(): libera la cámara exactamente una vez y nunca lanza.
func TestCameraSession_StopIdempotente(t *testing.T) {
	stream := newFakeStream()
	session := NewCameraSession(
		&fakeEnumerator{devices: []DeviceInfo{{ID: "back-1", Facing: FacingBack}}},
		&fakeSource{stream: stream},
	)

	_, err := session.Start(context.Background())
	require.NoError(t, err)

	session.Stop()
	session.Stop()
	session.Stop()

	assert.Equal(t, int32(1), stream.closes.Load(), "el hardware debe liberarse exactamente una vez")
}

func TestCameraSession_StopSinStartEsNoOp(t *testing.T) {
	session := NewCameraSession(&fakeEnumerator{}, &fakeSource{})
	assert.NotPanics(t, func() {
		session.Stop()
		session.Stop()
	})
}

// Cada fallo de cámara se clasifica en un kind distinto con su remediación.
func TestClassify_ErroresDeCamara(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind ErrorKind
	}{
		{"sin cámara", ErrNoDevice, ErrorKindCamera},
		{"permiso denegado", ErrPermissionDenied, ErrorKindPermission},
		{"cámara en uso", ErrDeviceBusy, ErrorKindCamera},
		{"contexto inseguro", ErrInsecureContext, ErrorKindCamera},
		{"fallo de consulta", ErrLookup, ErrorKindLookup},
		{"fallo de incremento", ErrUpdate, ErrorKindUpdate},
		{"inesperado", assert.AnError, ErrorKindProcessing},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.kind, Classify(tc.err))
			assert.NotEmpty(t, Remediation(tc.err))
		})
	}
}

func TestCameraSession_StartPropagaErrorClasificable(t *testing.T) {
	session := NewCameraSession(
		&fakeEnumerator{devices: []DeviceInfo{{ID: "back-1", Facing: FacingBack}}},
		&fakeSource{err: ErrDeviceBusy},
	)
	_, err := session.Start(context.Background())
	assert.ErrorIs(t, err, ErrDeviceBusy)
}
