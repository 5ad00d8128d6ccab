package http

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-pos/internal/application/dto"
)

const healthTimeout = 2 * time.Second

// HealthCheck comprueba una dependencia (PostgreSQL, Redis).
type HealthCheck func(ctx context.Context) error

// HealthHandler GET /api/health y /health.
type HealthHandler struct {
	appName string
	names   []string
	checks  map[string]HealthCheck
}

// NewHealthHandler construye el handler. checks puede ser nil.
func NewHealthHandler(appName string, checks map[string]HealthCheck) *HealthHandler {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return &HealthHandler{appName: appName, names: names, checks: checks}
}

// Check corre todas las comprobaciones y responde 503 si alguna falla.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), healthTimeout)
	defer cancel()

	var failed []string
	var results map[string]string
	if len(h.names) > 0 {
		results = make(map[string]string, len(h.names))
	}
	for _, name := range h.names {
		if err := h.checks[name](ctx); err != nil {
			results[name] = err.Error()
			failed = append(failed, name)
			continue
		}
		results[name] = "ok"
	}

	if len(failed) > 0 {
		c.Locals(localsErrorKey, strings.Join(failed, ",")+": "+results[failed[0]])
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.HealthResponse{
			Status:  "unhealthy",
			Message: strings.Join(failed, ", ") + " no disponible",
			Checks:  results,
		})
	}
	return c.JSON(dto.HealthResponse{
		Status:  "healthy",
		Message: h.appName + " está en ejecución",
		Checks:  results,
	})
}
