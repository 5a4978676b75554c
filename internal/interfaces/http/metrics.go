package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Métricas del pipeline de escaneo. Los veredictos del filtro y los
// resultados de resolución se cuentan por separado: el primero mide el
// ruido de la cámara, el segundo la salud del backend.
var (
	scanDecodesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invenscan_scan_decodes_total",
		Help: "Decodes recibidos por veredicto del filtro (accepted, duplicate, busy, cooldown).",
	}, []string{"verdict"})

	scanResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invenscan_scan_resolutions_total",
		Help: "Resoluciones de escaneo por resultado (found, not_found, failed).",
	}, []string{"outcome"})

	scanSessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "invenscan_scan_sessions_active",
		Help: "Sesiones de escaneo vivas en el registro.",
	})
)

// MetricsHandler expone el endpoint /metrics de Prometheus sobre Fiber.
func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(
		prometheus.DefaultGatherer,
		promhttp.HandlerOpts{ErrorHandling: promhttp.ContinueOnError},
	))
}
