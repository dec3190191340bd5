package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gasper/internal/domain"
	"gasper/internal/repos"
	"gasper/internal/wizard"
)

// HourlyRate prices consulting bookings.
const HourlyRate = 150.0

var (
	ErrNoWizard        = errors.New("no booking in progress")
	ErrSlotUnavailable = errors.New("that time is no longer available")
)

// Confirmation is returned once a booking has been reserved.
type Confirmation struct {
	Booking  domain.BookingDetails `json:"booking"`
	CartItem *domain.CartItem      `json:"cartItem,omitempty"`
}

type WizardService struct {
	Wizards  *repos.WizardRepo
	Bookings *BookingService
	Cart     *CartService
	Delay    time.Duration
}

func NewWizardService(w *repos.WizardRepo, b *BookingService, c *CartService, delay time.Duration) *WizardService {
	return &WizardService{Wizards: w, Bookings: b, Cart: c, Delay: delay}
}

// Start replaces any wizard in progress with a fresh one for flow.
func (s *WizardService) Start(sessionID, flow string) (*wizard.State, error) {
	st, err := wizard.New(flow)
	if err != nil {
		return nil, err
	}
	if err := s.Wizards.Save(sessionID, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Get returns the wizard in progress. When flow is set and differs from the stored
// one, or nothing is stored, a new wizard for flow is started.
func (s *WizardService) Get(sessionID, flow string) (*wizard.State, error) {
	st, err := s.load(sessionID)
	if errors.Is(err, ErrNoWizard) && flow != "" {
		return s.Start(sessionID, flow)
	}
	if err != nil {
		return nil, err
	}
	if flow != "" && st.Flow != flow {
		return s.Start(sessionID, flow)
	}
	return st, nil
}

func (s *WizardService) load(sessionID string) (*wizard.State, error) {
	st, err := s.Wizards.Get(sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoWizard
	}
	return st, err
}

// Select records a value for the current step. Dates must be open and times must be
// free on the chosen date.
func (s *WizardService) Select(sessionID string, step wizard.Step, value string) (*wizard.State, error) {
	st, err := s.load(sessionID)
	if err != nil {
		return nil, err
	}
	if step == st.Current() {
		switch step {
		case wizard.StepDate:
			if _, err := s.Bookings.Availability(st.Flow, value); err != nil {
				return nil, err
			}
		case wizard.StepTime:
			if err := s.checkTime(st, value); err != nil {
				return nil, err
			}
		}
	}
	if err := st.Select(step, value); err != nil {
		return nil, err
	}
	return st, s.Wizards.Save(sessionID, st)
}

func (s *WizardService) checkTime(st *wizard.State, value string) error {
	av, err := s.Bookings.Availability(st.Flow, st.Date)
	if err != nil {
		return err
	}
	for _, slot := range av.Slots {
		if slot.Time24 == value {
			return nil
		}
	}
	return fmt.Errorf("%w: %s %s", ErrSlotUnavailable, st.Date, value)
}

func (s *WizardService) Back(sessionID string) (*wizard.State, error) {
	st, err := s.load(sessionID)
	if err != nil {
		return nil, err
	}
	if err := st.Back(); err != nil {
		return nil, err
	}
	return st, s.Wizards.Save(sessionID, st)
}

func (s *WizardService) Reset(sessionID string) error {
	return s.Wizards.Delete(sessionID)
}

// Confirm waits out the confirmation delay, reserves the booking and, for consulting,
// adds the priced session to the cart. Cancelling ctx during the wait leaves the
// wizard and the calendar untouched.
func (s *WizardService) Confirm(ctx context.Context, sessionID string) (Confirmation, error) {
	st, err := s.load(sessionID)
	if err != nil {
		return Confirmation{}, err
	}
	details, err := st.Details()
	if err != nil {
		return Confirmation{}, err
	}

	if s.Delay > 0 {
		t := time.NewTimer(s.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return Confirmation{}, ctx.Err()
		case <-t.C:
		}
	}

	details, err = s.Bookings.Reserve(sessionID, details)
	if err != nil {
		return Confirmation{}, err
	}
	out := Confirmation{Booking: details}

	if details.Flow == domain.FlowConsulting {
		item := ConsultingItem(details)
		if err := s.Cart.AddItem(sessionID, item); err != nil {
			_ = s.Bookings.Release(sessionID, details.BookingID)
			return Confirmation{}, err
		}
		out.CartItem = &item
	}

	if err := s.Wizards.Delete(sessionID); err != nil {
		return out, err
	}
	return out, nil
}

// ConsultingItem prices a consulting booking at HourlyRate.
func ConsultingItem(d domain.BookingDetails) domain.CartItem {
	label := wizard.ConsultingTypes[d.Type]
	if label == "" {
		label = "Consultation"
	}
	return domain.CartItem{
		ID:             "consulting-" + d.BookingID,
		Name:           fmt.Sprintf("%s (%d min, %s %s)", label, d.Duration, d.Date, d.Time12),
		Price:          HourlyRate * float64(d.Duration) / 60,
		Quantity:       1,
		Category:       "consulting",
		BookingDetails: &d,
	}
}
