package handlers

import "github.com/gofiber/fiber/v2"

func Privacy(c *fiber.Ctx) error { return render(c, "legal", fiber.Map{"Page": "privacy"}) }

func Terms(c *fiber.Ctx) error { return render(c, "legal", fiber.Map{"Page": "terms"}) }

func Healthz(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) }

func NotFound(c *fiber.Ctx) error { return notFound(c, "Page not found") }
