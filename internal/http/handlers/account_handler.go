package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"gasper/internal/domain"
	applog "gasper/internal/log"
	"gasper/internal/services"
)

// AccountHandler serves the locally kept account records under /api/v1/account.
type AccountHandler struct {
	Account *services.AccountService
	Order   *services.OrderService
	Booking *services.BookingService
}

func (h *AccountHandler) Profile(c *fiber.Ctx) error {
	p, err := h.Account.Profile(sessionID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(p)
}

func (h *AccountHandler) SaveProfile(c *fiber.Ctx) error {
	var p domain.Profile
	if err := c.BodyParser(&p); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	saved, err := h.Account.SaveProfile(sessionID(c), p)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(saved)
}

func (h *AccountHandler) Shipping(c *fiber.Ctx) error {
	a, err := h.Account.Shipping(sessionID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(a)
}

func (h *AccountHandler) SaveShipping(c *fiber.Ctx) error {
	var a domain.ShippingAddress
	if err := c.BodyParser(&a); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if err := h.Account.SaveShipping(sessionID(c), a); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(a)
}

func (h *AccountHandler) PaymentMethods(c *fiber.Ctx) error {
	list, err := h.Account.PaymentMethods(sessionID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(list)
}

type paymentMethodRequest struct {
	Kind   string `json:"kind"`
	Label  string `json:"label"`
	Number string `json:"number"`
}

func (h *AccountHandler) AddPaymentMethod(c *fiber.Ctx) error {
	var req paymentMethodRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	pm, err := h.Account.AddPaymentMethod(sessionID(c), req.Kind, req.Label, req.Number)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(pm)
}

func (h *AccountHandler) RemovePaymentMethod(c *fiber.Ctx) error {
	if err := h.Account.RemovePaymentMethod(sessionID(c), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AccountHandler) Flags(c *fiber.Ctx) error {
	flags, err := h.Account.Flags(sessionID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(flags)
}

func (h *AccountHandler) SetFlag(c *fiber.Ctx) error {
	var req struct {
		Value bool `json:"value"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if err := h.Account.SetFlag(sessionID(c), c.Params("name"), req.Value); err != nil {
		return h.fail(c, err)
	}
	return h.Flags(c)
}

func (h *AccountHandler) ChangeEmail(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if err := h.Account.ChangeEmail(c.UserContext(), sessionID(c), req.Email); err != nil {
		return h.fail(c, err)
	}
	applog.Audit(c, "account.email_changed", nil)
	return c.JSON(fiber.Map{"ok": true})
}

func (h *AccountHandler) ChangePassword(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if err := h.Account.ChangePassword(c.UserContext(), sessionID(c), req.Password); err != nil {
		return h.fail(c, err)
	}
	applog.Audit(c, "account.password_changed", nil)
	return c.JSON(fiber.Map{"ok": true})
}

func (h *AccountHandler) Orders(c *fiber.Ctx) error {
	orders, err := h.Order.History(sessionID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(orders)
}

func (h *AccountHandler) Bookings(c *fiber.Ctx) error {
	list, err := h.Booking.ListBySession(sessionID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(list)
}

func (h *AccountHandler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidProfile), errors.Is(err, services.ErrInvalidAddress),
		errors.Is(err, services.ErrWeakPassword), errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrInvalidFlag), errors.Is(err, services.ErrInvalidPayment):
		applog.Security(c, "validation.fail", map[string]any{"error": err.Error()})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrPaymentNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	applog.Error(c, "account.error", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "something went wrong, please try again"})
}
