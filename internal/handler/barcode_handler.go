package handler

import (
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type BarcodeHandler struct {
	service service.BarcodeService
}

func NewBarcodeHandler(s service.BarcodeService) *BarcodeHandler {
	return &BarcodeHandler{service: s}
}

// GET /api/v1/barcodes/generate
func (h *BarcodeHandler) Generate(c *fiber.Ctx) error {
	code, err := h.service.GenerateUniqueBarcode(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"barcode": code})
}

// GET /api/v1/barcodes/validate/:code
func (h *BarcodeHandler) Validate(c *fiber.Ctx) error {
	code := c.Params("code")
	return respond(c, fiber.StatusOK, fiber.Map{"barcode": code, "valid": h.service.ValidateFormat(code)})
}

// Label renders a printable PNG label
// GET /api/v1/products/:id/label.png
func (h *BarcodeHandler) Label(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid product ID")
	}
	png, err := h.service.RenderLabel(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}
