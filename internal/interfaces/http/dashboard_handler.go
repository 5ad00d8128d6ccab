package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/tienda-pos/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del dashboard del día.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetStats devuelve transacciones, ingresos y ganancia del día en curso.
// GET /api/dashboard/stats
//
// No requiere parámetros; el rango del día se calcula en el servidor.
func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.uc.GetStats(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(stats)
}

// TodayTransactions lista las ventas de hoy, más recientes primero, con sus líneas.
// GET /api/dashboard/today-transactions
func (h *DashboardHandler) TodayTransactions(c *fiber.Ctx) error {
	list, err := h.uc.TodayTransactions(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}
