package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"gasper/internal/validate"
)

const sessionCookie = "sid"

// Session gives every visitor an anonymous session id and stores it in Locals("sid").
// Carts, bookings, wizards and account records are keyed by it.
func Session() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies(sessionCookie)
		if _, ok := validate.ID(sid); !ok {
			sid = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     sessionCookie,
				Value:    sid,
				Path:     "/",
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
				Secure:   false, // enable true behind TLS
			})
		}
		c.Locals("sid", sid)
		return c.Next()
	}
}

func sessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals("sid").(string)
	return sid
}
