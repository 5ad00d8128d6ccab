package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/tienda-pos/internal/application/analytics"
)

// ReportHandler reportes históricos.
type ReportHandler struct {
	uc *appanalytics.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *appanalytics.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Summary GET /api/reports/summary: ingresos, ganancia y transacciones de todo el histórico.
func (h *ReportHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.Summary(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Stock GET /api/reports/stock: productos ordenados por categoría y nombre.
func (h *ReportHandler) Stock(c *fiber.Ctx) error {
	out, err := h.uc.Stock(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
