package handler

import (
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUser handles user creation
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON")
	}

	user, err := h.userService.CreateUser(c.UserContext(), &req, currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusCreated, user)
}

// UpdateUserPrivileges handles privilege assignment
// PUT /api/v1/users/:id/privileges
func (h *UserHandler) UpdateUserPrivileges(c *fiber.Ctx) error {
	userID, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid user ID")
	}

	var req struct {
		Privileges []string `json:"privileges"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON")
	}

	user, err := h.userService.UpdateUserPrivileges(c.UserContext(), userID, req.Privileges, currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, user)
}

// GetUsers returns all users
// GET /api/v1/users
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.userService.GetAllUsers(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, users)
}

// GetUser returns a single user
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	userID, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid user ID")
	}

	user, err := h.userService.GetUserByID(c.UserContext(), userID)
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, user)
}

// UpdateUser handles user update
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	userID, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid user ID")
	}

	var req service.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON")
	}

	user, err := h.userService.UpdateUser(c.UserContext(), userID, &req, currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, user)
}

// DeleteUser deactivates a user; sales keep referring to it
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	userID, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(c, "invalid user ID")
	}

	if err := h.userService.DeactivateUser(c.UserContext(), userID, currentUserID(c)); err != nil {
		return fail(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"message": "user deactivated"})
}
