package handlers

import (
	"github.com/gofiber/fiber/v2"

	"gasper/internal/liquid"
)

type LiquidHandler struct {
	Sim *liquid.Simulation
}

func (h *LiquidHandler) Snapshot(c *fiber.Ctx) error {
	if h.Sim == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "background disabled"})
	}
	return c.JSON(h.Sim.Snapshot())
}

type pointerRequest struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Active bool    `json:"active"`
}

// Pointer moves the simulated cursor, in world coordinates.
func (h *LiquidHandler) Pointer(c *fiber.Ctx) error {
	if h.Sim == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "background disabled"})
	}
	var req pointerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	h.Sim.SetPointer(req.X, req.Y, req.Active)
	return c.SendStatus(fiber.StatusNoContent)
}
