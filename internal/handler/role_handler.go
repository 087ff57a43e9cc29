package handler

import (
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type RoleHandler struct {
	userService  service.UserService
	auditService service.AuditService
}

func NewRoleHandler(userService service.UserService, auditService service.AuditService) *RoleHandler {
	return &RoleHandler{userService: userService, auditService: auditService}
}

// GetRoles returns all available roles
// GET /api/v1/roles
func (h *RoleHandler) GetRoles(c *fiber.Ctx) error {
	roles, err := h.userService.ListRoles(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, roles)
}

// GET /api/v1/privileges
func (h *RoleHandler) GetPrivileges(c *fiber.Ctx) error {
	privileges, err := h.userService.ListPrivileges(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, privileges)
}

// GetAuditLogs lists audit entries, newest first
// GET /api/v1/audit-logs?entity_type=&entity_id=&action=&user_id=&page=&page_size=
func (h *RoleHandler) GetAuditLogs(c *fiber.Ctx) error {
	filter := repository.AuditFilter{
		EntityType: c.Query("entity_type"),
		EntityID:   c.Query("entity_id"),
		Action:     c.Query("action"),
		Page:       pageFromQuery(c),
	}
	if s := c.Query("user_id"); s != "" {
		id, err := parseUUID(s)
		if err != nil {
			return badRequest(c, "invalid user_id")
		}
		filter.UserID = &id
	}

	entries, total, err := h.auditService.List(c.UserContext(), filter)
	if err != nil {
		return fail(c, err)
	}
	return respondPage(c, entries, filter.Page, total)
}
