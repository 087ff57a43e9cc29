package handler

import (
	"context"
	"fmt"
	"time"

	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

// GetDashboardStats returns overview statistics
// GET /api/v1/reports/dashboard
func (h *ReportHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, stats)
}

// GetStockMovement returns stock movement data for charts
// Query params: days (default 7)
func (h *ReportHandler) GetStockMovement(c *fiber.Ctx) error {
	days := c.QueryInt("days", 7)
	data, err := h.service.GetStockMovement(c.UserContext(), days)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"period": len(data), "points": data})
}

// GET /api/v1/reports/sales-summary?from=&to=
func (h *ReportHandler) GetSalesSummary(c *fiber.Ctx) error {
	from, to, err := rangeFromQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	summary, err := h.service.GetSalesSummary(c.UserContext(), from, to)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, summary)
}

// GET /api/v1/reports/top-products?from=&to=&limit=
func (h *ReportHandler) GetTopProducts(c *fiber.Ctx) error {
	from, to, err := rangeFromQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	rows, err := h.service.GetTopProducts(c.UserContext(), from, to, c.QueryInt("limit", 0))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, rows)
}

// GET /api/v1/reports/sales.xlsx?from=&to=
func (h *ReportHandler) ExportSalesXLSX(c *fiber.Ctx) error {
	return h.export(c, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", h.service.ExportSalesXLSX)
}

// GET /api/v1/reports/sales.pdf?from=&to=
func (h *ReportHandler) ExportSalesPDF(c *fiber.Ctx) error {
	return h.export(c, "pdf", "application/pdf", h.service.ExportSalesPDF)
}

func (h *ReportHandler) export(c *fiber.Ctx, ext, contentType string, build func(ctx context.Context, from, to time.Time) ([]byte, error)) error {
	from, to, err := rangeFromQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	data, err := build(c.UserContext(), from, to)
	if err != nil {
		return fail(c, err)
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="sales_%s_%s.%s"`,
		from.Format("20060102"), to.Format("20060102"), ext))
	return c.Send(data)
}
