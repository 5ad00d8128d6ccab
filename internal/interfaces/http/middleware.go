package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/jhoicas/tienda-pos/internal/infrastructure/metrics"
	"github.com/jhoicas/tienda-pos/pkg/logger"
)

// HeaderRequestID cabecera de correlación; la consola la envía en cada petición.
const HeaderRequestID = "X-Request-ID"

const localsRequestIDKey = "requestid"

// RequestID reutiliza el X-Request-ID entrante o genera un UUID.
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     HeaderRequestID,
		Generator:  uuid.NewString,
		ContextKey: localsRequestIDKey,
	})
}

// GetRequestID obtiene el request id guardado por RequestID.
func GetRequestID(c *fiber.Ctx) string {
	v, _ := c.Locals(localsRequestIDKey).(string)
	return v
}

// RequestLogger registra cada petición con zerolog (método, ruta, status, latencia, request id).
// Resuelve el error de la cadena con el ErrorHandler de la app para loguear el status final.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		ev := log.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = log.Error()
		case status >= fiber.StatusBadRequest:
			ev = log.Warn()
		}
		if msg, ok := c.Locals(localsErrorKey).(string); ok {
			ev = ev.Str("error", msg)
		}
		ev.Str("request_id", GetRequestID(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("petición HTTP")
		return nil
	}
}

// Metrics cuenta peticiones por patrón de ruta. Debe registrarse después de RequestLogger.
func Metrics(m *metrics.HTTPMetrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		m.Observe(c.Method(), c.Route().Path, c.Response().StatusCode(), time.Since(start))
		return nil
	}
}
