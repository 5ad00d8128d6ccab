package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-pos/internal/application/billing"
	"github.com/jhoicas/tienda-pos/internal/application/dto"
)

// SaleHandler maneja el registro y la consulta de ventas.
type SaleHandler struct {
	create  *billing.CreateSaleUseCase
	list    *billing.ListSalesUseCase
	receipt *billing.ReceiptUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(create *billing.CreateSaleUseCase, list *billing.ListSalesUseCase, receipt *billing.ReceiptUseCase) *SaleHandler {
	return &SaleHandler{create: create, list: list, receipt: receipt}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Valida stock, congela precios, descuenta inventario y guarda la venta en una transacción.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Clave para reintentos seguros"
// @Param        body  body  dto.CreateSaleRequest  true  "Líneas del carrito"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if e := bind(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	out, err := h.create.CreateSale(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar ventas (más recientes primero)
// @Tags         sales
// @Produce      json
// @Param        limit  query  int  false  "Límite (máx. 500)"  default(100)
// @Success      200    {array}  dto.SaleResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	out, err := h.list.List(c.Context(), c.QueryInt("limit", billing.DefaultSalesLimit))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener venta por ID
// @Tags         sales
// @Produce      json
// @Param        id   path  int  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, CodeInvalidID, "id debe ser un entero positivo")
	}
	out, err := h.list.GetByID(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if out == nil {
		return errorJSON(c, fiber.StatusNotFound, CodeNotFound, "venta no encontrada")
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Descargar comprobante PDF
// @Tags         sales
// @Produce      application/pdf
// @Param        id   path  int  true  "ID de la venta"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt [get]
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, CodeInvalidID, "id debe ser un entero positivo")
	}
	pdf, filename, err := h.receipt.DownloadReceiptPDF(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(pdf)
}
