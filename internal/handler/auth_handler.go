package handler

import (
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles user authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON")
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, resp)
}

// Refresh exchanges a refresh token for a new pair
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req service.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON")
	}
	if req.RefreshToken == "" {
		return badRequest(c, "refresh_token is required")
	}

	resp, err := h.authService.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, resp)
}

// Logout revokes every token of the current user
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), currentUserID(c)); err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"message": "logged out"})
}

// ChangePassword handles password change for the current user
// POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req service.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON")
	}

	if err := h.authService.ChangePassword(c.UserContext(), currentUserID(c), &req); err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"message": "password changed, please log in again"})
}

// Me returns the current user with role and privileges
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	resp, err := h.authService.Me(c.UserContext(), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, resp)
}
