package handler

import (
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SaleHandler struct {
	service service.SaleService
}

func NewSaleHandler(s service.SaleService) *SaleHandler {
	return &SaleHandler{service: s}
}

// CreateSale checks out a cart for the current user
// POST /api/v1/sales
func (h *SaleHandler) CreateSale(c *fiber.Ctx) error {
	var req service.CreateSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON")
	}
	sale, err := h.service.CreateSale(c.UserContext(), &req, currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusCreated, sale)
}

// GET /api/v1/sales/:id
func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid sale ID")
	}
	sale, err := h.service.GetSale(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, sale)
}

// GetSales lists sales, newest first
// GET /api/v1/sales?from=&to=&user_id=&page=&page_size=
func (h *SaleHandler) GetSales(c *fiber.Ctx) error {
	filter := repository.SaleFilter{Page: pageFromQuery(c)}
	if c.Query("from") != "" || c.Query("to") != "" {
		from, to, err := rangeFromQuery(c)
		if err != nil {
			return badRequest(c, err.Error())
		}
		filter.From = &from
		filter.To = &to
	}
	if s := c.Query("user_id"); s != "" {
		id, err := parseUUID(s)
		if err != nil {
			return badRequest(c, "invalid user_id")
		}
		filter.UserID = &id
	}

	sales, total, err := h.service.ListSales(c.UserContext(), filter)
	if err != nil {
		return fail(c, err)
	}
	return respondPage(c, sales, filter.Page, total)
}
