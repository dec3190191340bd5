package handlers

import (
	"strings"

	"gasper/internal/catalog"
	"gasper/internal/log"
	"gasper/internal/services"
	"gasper/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type SearchHandler struct {
	Catalog *services.CatalogService
}

func (h *SearchHandler) Search(c *fiber.Ctx) error {
	rawQ := c.Query("q")
	if strings.TrimSpace(rawQ) == "" {
		// Initial page load: show empty search without errors
		return render(c, "search", fiber.Map{"Q": "", "Products": []any{}, "Count": 0})
	}
	q, ok := validate.Q(rawQ)
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "q", "value": rawQ})
		return c.Status(fiber.StatusBadRequest).Render("search", fiber.Map{
			"Q": "", "Products": []any{}, "Count": 0, "Err": "Enter a valid keyword (letters/numbers only)",
		})
	}
	category := strings.TrimSpace(c.Query("category")) // module | package
	if category != "" && category != catalog.CategoryModule && category != catalog.CategoryPackage {
		log.Security(c, "validation.fail", map[string]any{"field": "category"})
		return c.Status(fiber.StatusBadRequest).Render("search", fiber.Map{
			"Q": q, "Products": []any{}, "Count": 0, "Err": "Invalid category",
		})
	}

	products := h.Catalog.Search(q, category, c.QueryInt("page", 1))
	return render(c, "search", fiber.Map{
		"Q": q, "Category": category, "Products": products, "Count": len(products),
	})
}
