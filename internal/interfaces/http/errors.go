package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-pos/internal/application/dto"
	"github.com/jhoicas/tienda-pos/internal/domain"
)

// Códigos de error del cuerpo dto.ErrorResponse.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidID           = "INVALID_ID"
	CodeInvalidBody         = "INVALID_BODY"
	CodeValidation          = "VALIDATION"
	CodeEmptySale           = "EMPTY_SALE"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeHasSalesHistory     = "HAS_SALES_HISTORY"
	CodeConflict            = "CONFLICT"
	CodeIdempotencyConflict = "IDEMPOTENCY_CONFLICT"
	CodeUnavailable         = "UNAVAILABLE"
	CodeInternal            = "INTERNAL"
)

const localsErrorKey = "error"

func errorJSON(c *fiber.Ctx, status int, code, detail string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Detail: detail})
}

// writeError traduce errores de dominio a status HTTP. Los errores no reconocidos se
// responden como 500 sin exponer el mensaje; el logger de peticiones lo registra.
func writeError(c *fiber.Ctx, err error) error {
	var derr *domain.Error
	detail := ""
	if errors.As(err, &derr) {
		detail = derr.Detail
	}
	pick := func(fallback string) string {
		if detail != "" {
			return detail
		}
		return fallback
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return errorJSON(c, fiber.StatusNotFound, CodeNotFound, pick("recurso no encontrado"))
	case errors.Is(err, domain.ErrEmptySale):
		return errorJSON(c, fiber.StatusBadRequest, CodeEmptySale, "la venta debe tener al menos un ítem")
	case errors.Is(err, domain.ErrInsufficientStock):
		return errorJSON(c, fiber.StatusBadRequest, CodeInsufficientStock, pick("stock insuficiente"))
	case errors.Is(err, domain.ErrInvalidInput):
		return errorJSON(c, fiber.StatusBadRequest, CodeValidation, pick("entrada inválida"))
	case errors.Is(err, domain.ErrHasSalesHistory):
		return errorJSON(c, fiber.StatusConflict, CodeHasSalesHistory,
			"no se puede eliminar un producto con historial de ventas; considere dejar el stock en 0")
	case errors.Is(err, domain.ErrConflict):
		return errorJSON(c, fiber.StatusConflict, CodeConflict, pick("conflicto con el estado actual"))
	}

	c.Locals(localsErrorKey, err.Error())
	return errorJSON(c, fiber.StatusInternalServerError, CodeInternal, "error interno del servidor")
}

// errorHandler reemplaza el handler por defecto de fiber para que rutas inexistentes,
// métodos no permitidos y pánicos recuperados respondan con dto.ErrorResponse.
func errorHandler(c *fiber.Ctx, err error) error {
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		code := CodeInternal
		switch ferr.Code {
		case fiber.StatusNotFound:
			code = CodeNotFound
		case fiber.StatusBadRequest, fiber.StatusMethodNotAllowed, fiber.StatusRequestEntityTooLarge:
			code = CodeInvalidBody
		}
		return errorJSON(c, ferr.Code, code, ferr.Message)
	}
	return writeError(c, err)
}

// paramID lee :id como entero positivo.
func paramID(c *fiber.Ctx) (int64, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return int64(id), true
}
