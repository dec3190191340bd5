package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "gasper/internal/log"
	"gasper/internal/services"
	"gasper/internal/validate"
)

type OrderHandler struct {
	Cart  *services.CartService
	Order *services.OrderService
}

// checkoutFields are read from the checkout form in the order they appear.
var checkoutFields = []string{
	"name", "email",
	"card_name", "card_number", "card_expiry", "card_cvv",
	"paypal_email",
	"crypto_currency", "wallet_address",
	"company_name", "billing_email", "billing_address",
}

func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	cv, err := h.Cart.View(sessionID(c))
	if err != nil {
		applog.Error(c, "checkout.load", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	if len(cv.Items) == 0 {
		return c.Redirect("/cart")
	}
	return render(c, "checkout", fiber.Map{"Cart": cv, "Method": validate.MethodCard, "Form": map[string]string{}})
}

func (h *OrderHandler) Place(c *fiber.Ctx) error {
	sid := sessionID(c)
	method := c.FormValue("payment_method")
	form := make(map[string]string, len(checkoutFields))
	for _, k := range checkoutFields {
		form[k] = c.FormValue(k)
	}

	receipt, err := h.Order.Place(c.UserContext(), sid, method, form)
	if err != nil {
		var inv *services.InvalidCheckoutError
		switch {
		case errors.As(err, &inv):
			applog.Security(c, "validation.fail", map[string]any{"field": inv.Result.Field, "method": method})
			cv, _ := h.Cart.View(sid)
			// card data is never echoed back
			delete(form, "card_number")
			delete(form, "card_cvv")
			c.Status(fiber.StatusBadRequest)
			return render(c, "checkout", fiber.Map{
				"Cart": cv, "Method": method, "Form": form,
				"Err": inv.Result.Message, "Field": inv.Result.Field,
			})
		case errors.Is(err, services.ErrCartEmpty):
			return c.Status(fiber.StatusBadRequest).Render("notfound", fiber.Map{"Message": "Your cart is empty."})
		case interrupted(err):
			applog.Info(c, "order.place.interrupted", map[string]any{"method": method})
			return c.Status(fiber.StatusServiceUnavailable).Render("notfound", fiber.Map{
				"Message": "Checkout was interrupted. Your cart has not been changed.",
			})
		default:
			applog.Error(c, "order.place.fail", err, nil)
			return err
		}
	}
	applog.Audit(c, "order.place", map[string]any{
		"order_id": receipt.OrderID,
		"method":   method,
		"total":    receipt.Total,
	})
	return c.Redirect("/order/" + receipt.OrderID)
}

func (h *OrderHandler) View(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, "Order not found")
	}
	o, items, err := h.Order.Get(sessionID(c), oid)
	if err != nil {
		if errors.Is(err, services.ErrForbidden) {
			applog.Security(c, "access.denied.order", map[string]any{"order_id": oid})
		}
		return notFound(c, "Order not found")
	}
	return render(c, "order", fiber.Map{"Order": o, "Items": items})
}

type validateRequest struct {
	Method string            `json:"method"`
	Fields map[string]string `json:"fields"`
}

// Validate checks a checkout form without placing an order.
func (h *OrderHandler) Validate(c *fiber.Ctx) error {
	var req validateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	res := h.Order.Validate(req.Method, req.Fields)
	if !res.Valid {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(res)
	}
	return c.JSON(res)
}
