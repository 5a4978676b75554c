package scanner

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Facing orientación declarada por el dispositivo de cámara.
type Facing string

const (
	FacingBack    Facing = "back"
	FacingFront   Facing = "front"
	FacingUnknown Facing = "unknown"
)

// DeviceInfo describe una cámara enumerable.
type DeviceInfo struct {
	ID     string
	Label  string
	Facing Facing
}

// DecodeEvent evento crudo del decodificador: un código leído en un frame.
type DecodeEvent struct {
	Code      string
	Timestamp time.Time
}

// Stream flujo de eventos de decodificación de una cámara abierta.
// Close libera el hardware subyacente; el canal de Events se cierra después.
type Stream interface {
	Events() <-chan DecodeEvent
	Close() error
}

// Enumerator lista las cámaras disponibles.
type Enumerator interface {
	Devices(ctx context.Context) ([]DeviceInfo, error)
}

// Source abre un stream de decodificación sobre un dispositivo concreto.
type Source interface {
	Open(ctx context.Context, deviceID string) (Stream, error)
}

// Errores de cámara. Cada uno se clasifica en un kind distinto para que el
// llamador pueda mostrar un texto de remediación específico.
var (
	ErrNoDevice         = errors.New("no hay cámara disponible")
	ErrPermissionDenied = errors.New("permiso de cámara denegado")
	ErrDeviceBusy       = errors.New("la cámara está en uso por otra aplicación")
	ErrInsecureContext  = errors.New("el acceso a la cámara requiere un contexto seguro (HTTPS)")
)

// ErrorKind taxonomía de fallos del pipeline de escaneo.
type ErrorKind string

const (
	ErrorKindCamera     ErrorKind = "camera"
	ErrorKindPermission ErrorKind = "permission"
	ErrorKindLookup     ErrorKind = "network_lookup"
	ErrorKindUpdate     ErrorKind = "network_update"
	ErrorKindProcessing ErrorKind = "processing"
)

// Classify mapea un error del pipeline a su kind.
func Classify(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return ErrorKindPermission
	case errors.Is(err, ErrNoDevice), errors.Is(err, ErrDeviceBusy), errors.Is(err, ErrInsecureContext):
		return ErrorKindCamera
	case errors.Is(err, ErrLookup):
		return ErrorKindLookup
	case errors.Is(err, ErrUpdate):
		return ErrorKindUpdate
	default:
		return ErrorKindProcessing
	}
}

// Remediation texto de remediación para fallos de cámara.
func Remediation(err error) string {
	switch {
	case errors.Is(err, ErrNoDevice):
		return "Conecta una cámara o usa un dispositivo con cámara para escanear"
	case errors.Is(err, ErrPermissionDenied):
		return "Autoriza el acceso a la cámara en la configuración del navegador"
	case errors.Is(err, ErrDeviceBusy):
		return "Cierra la otra aplicación que está usando la cámara e intenta de nuevo"
	case errors.Is(err, ErrInsecureContext):
		return "Abre la aplicación por HTTPS para poder usar la cámara"
	default:
		return "No se pudo iniciar la cámara, intenta de nuevo"
	}
}

// SelectDevice elige la cámara a usar: prefiere una trasera si el
// dispositivo expone orientación; si no hay, cae al último listado
// (en móviles suele ser la trasera principal) y por último al primero.
func SelectDevice(devices []DeviceInfo) (DeviceInfo, error) {
	if len(devices) == 0 {
		return DeviceInfo{}, ErrNoDevice
	}
	for _, d := range devices {
		if d.Facing == FacingBack {
			return d, nil
		}
	}
	return devices[len(devices)-1], nil
}

// CameraSession administra el ciclo de vida de la cámara: adquirir el
// stream, entregarlo al decodificador y liberarlo limpiamente al cerrar.
type CameraSession struct {
	enum   Enumerator
	source Source

	mu     sync.Mutex
	stream Stream
}

// NewCameraSession construye la sesión con el enumerador y la fuente inyectados.
func NewCameraSession(enum Enumerator, source Source) *CameraSession {
	return &CameraSession{enum: enum, source: source}
}

// Start enumera dispositivos, selecciona uno y abre el stream.
// Falla con uno de los errores de cámara clasificables.
func (s *CameraSession) Start(ctx context.Context) (Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream != nil {
		return s.stream, nil
	}
	devices, err := s.enum.Devices(ctx)
	if err != nil {
		return nil, err
	}
	device, err := SelectDevice(devices)
	if err != nil {
		return nil, err
	}
	stream, err := s.source.Open(ctx, device.ID)
	if err != nil {
		return nil, err
	}
	s.stream = stream
	return stream, nil
}

// Stop libera el hardware. Es idempotente: la cámara se libera exactamente
// una vez y llamadas repetidas son no-ops, incluso con un decode en vuelo.
func (s *CameraSession) Stop() {
	s.mu.Lock()
	stream := s.stream
	s.stream = nil
	s.mu.Unlock()
	if stream != nil {
		_ = stream.Close()
	}
}
