package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"gasper/internal/domain"
	applog "gasper/internal/log"
	"gasper/internal/repos"
	"gasper/internal/schedule"
	"gasper/internal/services"
	"gasper/internal/wizard"
)

type BookingHandler struct {
	Bookings *services.BookingService
	Wizards  *services.WizardService
}

// Availability answers GET /api/v1/availability?flow=&date=.
func (h *BookingHandler) Availability(c *fiber.Ctx) error {
	flow := strings.TrimSpace(c.Query("flow", domain.FlowConsulting))
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing date"})
	}
	av, err := h.Bookings.Availability(flow, date)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(av)
}

func (h *BookingHandler) Page(c *fiber.Ctx) error {
	flow := c.Query("flow", domain.FlowCall)
	st, err := h.Wizards.Get(sessionID(c), flow)
	if err != nil {
		return notFound(c, "Unknown booking type")
	}
	return render(c, "booking", fiber.Map{
		"Wizard":    wizardView(st),
		"Types":     wizard.ConsultingTypes,
		"Durations": wizard.Durations,
	})
}

type wizardJSON struct {
	Flow     string        `json:"flow"`
	Step     wizard.Step   `json:"step"`
	Steps    []wizard.Step `json:"steps"`
	Cursor   int           `json:"cursor"`
	Date     string        `json:"date,omitempty"`
	Type     string        `json:"type,omitempty"`
	Duration int           `json:"duration,omitempty"`
	Time     string        `json:"time,omitempty"`
	Complete bool          `json:"complete"`
}

func wizardView(st *wizard.State) wizardJSON {
	return wizardJSON{
		Flow:     st.Flow,
		Step:     st.Current(),
		Steps:    st.Steps(),
		Cursor:   st.Cursor,
		Date:     st.Date,
		Type:     st.Type,
		Duration: st.Duration,
		Time:     st.Time24,
		Complete: st.Complete(),
	}
}

func (h *BookingHandler) GetWizard(c *fiber.Ctx) error {
	st, err := h.Wizards.Get(sessionID(c), c.Query("flow"))
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(wizardView(st))
}

type selectRequest struct {
	Step  wizard.Step `json:"step"`
	Value string      `json:"value"`
}

func (h *BookingHandler) Select(c *fiber.Ctx) error {
	var req selectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	st, err := h.Wizards.Select(sessionID(c), req.Step, strings.TrimSpace(req.Value))
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(wizardView(st))
}

func (h *BookingHandler) Back(c *fiber.Ctx) error {
	st, err := h.Wizards.Back(sessionID(c))
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(wizardView(st))
}

func (h *BookingHandler) Reset(c *fiber.Ctx) error {
	if err := h.Wizards.Reset(sessionID(c)); err != nil {
		return bookingError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *BookingHandler) Confirm(c *fiber.Ctx) error {
	conf, err := h.Wizards.Confirm(c.UserContext(), sessionID(c))
	if err != nil {
		return bookingError(c, err)
	}
	applog.Audit(c, "booking.confirm", map[string]any{
		"booking_id": conf.Booking.BookingID,
		"flow":       conf.Booking.Flow,
		"date":       conf.Booking.Date,
		"time":       conf.Booking.Time24,
		"duration":   conf.Booking.Duration,
	})
	return c.Status(fiber.StatusCreated).JSON(conf)
}

// bookingError maps scheduling and wizard errors to HTTP statuses.
func bookingError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, repos.ErrSlotTaken), errors.Is(err, services.ErrSlotUnavailable):
		status = fiber.StatusConflict
		applog.Info(c, "booking.conflict", map[string]any{"error": err.Error()})
	case errors.Is(err, services.ErrNoWizard):
		status = fiber.StatusNotFound
	case errors.Is(err, schedule.ErrBadDate), errors.Is(err, schedule.ErrBadTime),
		errors.Is(err, schedule.ErrDateUnavailable), errors.Is(err, schedule.ErrUnknownFlow),
		errors.Is(err, wizard.ErrWrongStep), errors.Is(err, wizard.ErrAtFirstStep),
		errors.Is(err, wizard.ErrIncomplete), errors.Is(err, wizard.ErrBadType),
		errors.Is(err, wizard.ErrBadDuration), errors.Is(err, wizard.ErrConfirmInput):
		status = fiber.StatusBadRequest
	case interrupted(err):
		applog.Info(c, "booking.interrupted", nil)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "confirmation was interrupted, nothing was booked"})
	default:
		applog.Error(c, "booking.error", err, nil)
		return c.Status(status).JSON(fiber.Map{"error": "something went wrong, please try again"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
