package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "gasper/internal/log"
	"gasper/internal/repos"
	"gasper/internal/services"
	"gasper/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	qty := validate.Qty(c.FormValue("qty"))
	if err := h.Cart.Add(sessionID(c), productID, qty); err != nil {
		if errors.Is(err, services.ErrUnknownProduct) {
			return c.Status(fiber.StatusBadRequest).SendString("unknown product")
		}
		return err
	}
	applog.Audit(c, "cart.add", map[string]any{"item": productID, "qty": qty})
	return c.Redirect("/cart")
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	itemID, ok := validate.ID(c.FormValue("itemId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing itemId")
	}
	if err := h.Cart.Remove(sessionID(c), itemID); err != nil && !errors.Is(err, repos.ErrItemNotFound) {
		return err
	}
	applog.Audit(c, "cart.remove", map[string]any{"item": itemID})
	return c.Redirect("/cart")
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	cv, err := h.Cart.View(sessionID(c))
	if err != nil {
		return err
	}
	return render(c, "cart", fiber.Map{"Cart": cv, "TaxRate": services.TaxRate * 100})
}

// ---------- JSON ----------

func (h *CartHandler) Get(c *fiber.Ctx) error {
	cv, err := h.Cart.View(sessionID(c))
	if err != nil {
		applog.Error(c, "cart.load", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load cart"})
	}
	return c.JSON(cv)
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if _, ok := validate.ID(req.ProductID); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid productId"})
	}
	req.Quantity = validate.Quantity(req.Quantity)
	sid := sessionID(c)
	if err := h.Cart.Add(sid, req.ProductID, req.Quantity); err != nil {
		if errors.Is(err, services.ErrUnknownProduct) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown product"})
		}
		applog.Error(c, "cart.add", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not update cart"})
	}
	applog.Audit(c, "cart.add", map[string]any{"item": req.ProductID, "qty": req.Quantity})
	return h.Get(c)
}

func (h *CartHandler) DeleteItem(c *fiber.Ctx) error {
	itemID, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid item id"})
	}
	if err := h.Cart.Remove(sessionID(c), itemID); err != nil {
		if errors.Is(err, repos.ErrItemNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "item not in cart"})
		}
		applog.Error(c, "cart.remove", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not update cart"})
	}
	applog.Audit(c, "cart.remove", map[string]any{"item": itemID})
	return h.Get(c)
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	if err := h.Cart.Clear(sessionID(c)); err != nil {
		applog.Error(c, "cart.clear", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not clear cart"})
	}
	applog.Audit(c, "cart.clear", nil)
	return h.Get(c)
}
