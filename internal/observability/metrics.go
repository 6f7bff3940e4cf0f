package observability

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa las métricas Prometheus del servicio. Un *Metrics nil es válido y no registra nada.
type Metrics struct {
	registry        *prometheus.Registry
	operations      *prometheus.CounterVec
	stockNegative   *prometheus.CounterVec
	auditFailures   prometheus.Counter
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics inicializa el registry y las métricas.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "licoreria_pipeline_operations_total",
		Help: "Operaciones del pipeline de producción por operación y resultado.",
	}, []string{"op", "result"})
	stockNegative := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "licoreria_stock_negative_total",
		Help: "Ajustes que dejaron un material con saldo negativo.",
	}, []string{"material"})
	auditFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "licoreria_audit_write_failures_total",
		Help: "Movimientos de auditoría que no se pudieron escribir.",
	})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "licoreria_http_requests_total",
		Help: "Peticiones HTTP por ruta y código.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "licoreria_http_request_duration_seconds",
		Help:    "Duración de peticiones HTTP por ruta.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	registry.MustRegister(operations, stockNegative, auditFailures, requests, duration)
	return &Metrics{
		registry:        registry,
		operations:      operations,
		stockNegative:   stockNegative,
		auditFailures:   auditFailures,
		requestsTotal:   requests,
		requestDuration: duration,
	}
}

// Operation cuenta una operación del pipeline.
func (m *Metrics) Operation(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.operations.WithLabelValues(op, result).Inc()
}

// StockNegative cuenta un saldo negativo.
func (m *Metrics) StockNegative(materialID string) {
	if m == nil {
		return
	}
	m.stockNegative.WithLabelValues(materialID).Inc()
}

// AuditWriteFailed cuenta una escritura de auditoría fallida.
func (m *Metrics) AuditWriteFailed() {
	if m == nil {
		return
	}
	m.auditFailures.Inc()
}

// Handler expone /metrics para fiber.
func (m *Metrics) Handler() fiber.Handler {
	if m == nil {
		return func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusServiceUnavailable) }
	}
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Middleware registra conteo y duración por ruta.
func (m *Metrics) Middleware() fiber.Handler {
	if m == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		route := c.Route().Path
		if route == "" {
			route = "unknown"
		}
		code := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			} else {
				code = fiber.StatusInternalServerError
			}
		}
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Registry expone el registry para pruebas o métricas adicionales.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}
