package handlers

import (
	"github.com/gofiber/fiber/v2"

	"gasper/internal/catalog"
	"gasper/internal/log"
	"gasper/internal/services"
	"gasper/internal/validate"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

func (h *CatalogHandler) Home(c *fiber.Ctx) error {
	return render(c, "home", fiber.Map{
		"Modules":  h.Catalog.Modules(),
		"Packages": h.Catalog.Packages(),
	})
}

func (h *CatalogHandler) Modules(c *fiber.Ctx) error {
	return render(c, "catalog", fiber.Map{"Title": "Modules", "Products": h.Catalog.Modules()})
}

func (h *CatalogHandler) Packages(c *fiber.Ctx) error {
	return render(c, "catalog", fiber.Map{"Title": "Packages", "Products": h.Catalog.Packages()})
}

func (h *CatalogHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return notFound(c, "This product is no longer available")
	}
	p, err := h.Catalog.GetProduct(id)
	if err != nil {
		return notFound(c, "This product is no longer available")
	}
	return render(c, "product", fiber.Map{"P": p, "IsPackage": p.Category == catalog.CategoryPackage})
}

// API lists the catalog as JSON, optionally one category.
func (h *CatalogHandler) API(c *fiber.Ctx) error {
	switch c.Query("category") {
	case catalog.CategoryModule:
		return c.JSON(h.Catalog.Modules())
	case catalog.CategoryPackage:
		return c.JSON(h.Catalog.Packages())
	case "":
		return c.JSON(catalog.All())
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown category"})
	}
}
