package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "gasper/internal/log"
	"gasper/internal/notify"
	"gasper/internal/services"
)

// WaitlistHandler serves /api/waitlist. It is called cross-origin from the landing
// page, so it answers CORS itself.
type WaitlistHandler struct {
	Waitlist *services.WaitlistService
}

func (h *WaitlistHandler) Join(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	c.Set(fiber.HeaderAccessControlAllowMethods, "POST, OPTIONS")
	c.Set(fiber.HeaderAccessControlAllowHeaders, "Content-Type")

	switch c.Method() {
	case fiber.MethodOptions:
		return c.SendStatus(fiber.StatusOK)
	case fiber.MethodPost:
	default:
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{"error": "Method not allowed"})
	}

	var in services.WaitlistSignup
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	id, err := h.Waitlist.Join(c.UserContext(), in)
	switch {
	case err == nil:
		applog.Audit(c, "waitlist.join", map[string]any{"provider_id": id})
		return c.JSON(fiber.Map{"message": "You're on the waitlist! Check your inbox for a confirmation.", "id": id})
	case errors.Is(err, services.ErrInvalidSignup):
		applog.Security(c, "validation.fail", map[string]any{"field": "waitlist"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Please provide a valid email, role and company size."})
	case errors.Is(err, notify.ErrNotConfigured):
		applog.Error(c, "waitlist.unconfigured", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Email service is not configured",
			"message": h.Waitlist.FallbackMessage(),
		})
	default:
		applog.Error(c, "waitlist.send_failed", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to send confirmation email",
			"message": h.Waitlist.FallbackMessage(),
		})
	}
}
