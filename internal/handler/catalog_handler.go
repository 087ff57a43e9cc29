package handler

import (
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	service service.CatalogService
}

func NewCatalogHandler(s service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: s}
}

// GET /api/v1/categories?include_inactive=true
func (h *CatalogHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext(), c.QueryBool("include_inactive"))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, categories)
}

// GET /api/v1/categories/:id
func (h *CatalogHandler) GetCategory(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid category ID")
	}
	category, err := h.service.GetCategory(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, category)
}

// POST /api/v1/categories
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var req service.CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON")
	}
	category, err := h.service.CreateCategory(c.UserContext(), &req, currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusCreated, category)
}

// PUT /api/v1/categories/:id
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid category ID")
	}
	var req service.UpdateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON")
	}
	category, err := h.service.UpdateCategory(c.UserContext(), id, &req, currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, category)
}

// DELETE /api/v1/categories/:id
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid category ID")
	}
	if err := h.service.DeactivateCategory(c.UserContext(), id, currentUserID(c)); err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"message": "category deactivated"})
}

// GetProducts searches the catalog
// GET /api/v1/products?q=&category_id=&include_inactive=&page=&page_size=
func (h *CatalogHandler) GetProducts(c *fiber.Ctx) error {
	filter := repository.ProductFilter{
		Query:           c.Query("q"),
		IncludeInactive: c.QueryBool("include_inactive"),
		Page:            pageFromQuery(c),
	}
	if s := c.Query("category_id"); s != "" {
		id, err := parseUUID(s)
		if err != nil {
			return badRequest(c, "invalid category_id")
		}
		filter.CategoryID = &id
	}

	products, total, err := h.service.SearchProducts(c.UserContext(), filter)
	if err != nil {
		return fail(c, err)
	}
	return respondPage(c, products, filter.Page, total)
}

// SuggestProducts backs the search-as-you-type box
// GET /api/v1/products/suggest?q=&limit=
func (h *CatalogHandler) SuggestProducts(c *fiber.Ctx) error {
	products, err := h.service.SuggestProducts(c.UserContext(), c.Query("q"), c.QueryInt("limit", 0))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, products)
}

// GetProductByBarcode is the scanner lookup
// GET /api/v1/products/barcode/:code
func (h *CatalogHandler) GetProductByBarcode(c *fiber.Ctx) error {
	product, err := h.service.GetProductByBarcode(c.UserContext(), c.Params("code"))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, product)
}

// GET /api/v1/products/:id
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid product ID")
	}
	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, product)
}

// POST /api/v1/products
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON")
	}
	product, err := h.service.CreateProduct(c.UserContext(), &req, currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusCreated, product)
}

// PUT /api/v1/products/:id
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid product ID")
	}
	var req service.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON")
	}
	product, err := h.service.UpdateProduct(c.UserContext(), id, &req, currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, product)
}

// DELETE /api/v1/products/:id
func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid product ID")
	}
	if err := h.service.DeactivateProduct(c.UserContext(), id, currentUserID(c)); err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"message": "product deactivated"})
}

// AddStock records a delivery
// POST /api/v1/products/:id/stock
func (h *CatalogHandler) AddStock(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid product ID")
	}
	var req service.AddStockRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON")
	}
	product, err := h.service.AddStock(c.UserContext(), id, &req, currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, product)
}

// GET /api/v1/products/:id/movements
func (h *CatalogHandler) GetMovements(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid product ID")
	}
	page := pageFromQuery(c)
	movements, total, err := h.service.ListMovements(c.UserContext(), id, page)
	if err != nil {
		return fail(c, err)
	}
	return respondPage(c, movements, page, total)
}

// GET /api/v1/products/:id/reconcile
func (h *CatalogHandler) ReconcileStock(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid product ID")
	}
	result, err := h.service.ReconcileStock(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, result)
}
