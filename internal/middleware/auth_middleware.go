package middleware

import (
	"strings"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	LocalUserID     = "user_id"
	LocalUser       = "user"
	LocalPrivileges = "user_privileges"
)

func deny(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"data":    nil,
		"errors":  []string{msg},
	})
}

// RequireAuth validates the bearer access token and loads the user behind it.
func RequireAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return deny(c, fiber.StatusUnauthorized, "missing authorization token")
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return deny(c, fiber.StatusUnauthorized, "invalid authorization format, use: Bearer <token>")
		}

		user, err := auth.Authenticate(c.UserContext(), parts[1])
		if err != nil {
			if service.KindOf(err) == service.KindUnexpected {
				return deny(c, fiber.StatusInternalServerError, "internal server error")
			}
			return deny(c, fiber.StatusUnauthorized, err.Error())
		}

		c.Locals(LocalUserID, user.ID)
		c.Locals(LocalUser, user)
		c.Locals(LocalPrivileges, user.GetPrivilegeCodes())
		return c.Next()
	}
}

// CurrentUser returns the user stored by RequireAuth, or nil.
func CurrentUser(c *fiber.Ctx) *model.User {
	user, _ := c.Locals(LocalUser).(*model.User)
	return user
}

// RequirePrivilege checks if the authenticated user has the required privilege
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return RequireAnyPrivilege(requiredPrivilege)
}

// RequireAnyPrivilege checks if the user has at least one of the specified privileges
func RequireAnyPrivilege(requiredPrivileges ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		privileges, ok := c.Locals(LocalPrivileges).([]string)
		if !ok {
			return deny(c, fiber.StatusForbidden, "no privileges found")
		}

		for _, userPriv := range privileges {
			for _, reqPriv := range requiredPrivileges {
				if userPriv == reqPriv {
					return c.Next()
				}
			}
		}

		return deny(c, fiber.StatusForbidden, "forbidden: requires one of "+strings.Join(requiredPrivileges, ", "))
	}
}
