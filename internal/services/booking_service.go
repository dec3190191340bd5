package services

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"gasper/internal/domain"
	"gasper/internal/metrics"
	"gasper/internal/repos"
	"gasper/internal/schedule"
)

// Availability is the answer for one flow and date.
type Availability struct {
	Date        string        `json:"date"`
	Flow        string        `json:"flow"`
	Slots       []domain.Slot `json:"slots"`
	FullyBooked bool          `json:"fully_booked"`
}

type BookingService struct {
	Bookings *repos.BookingRepo
	Metrics  *metrics.SiteMetrics
	Loc      *time.Location
	Now      func() time.Time
}

func NewBookingService(bookings *repos.BookingRepo, m *metrics.SiteMetrics, loc *time.Location) *BookingService {
	if loc == nil {
		loc = time.Local
	}
	return &BookingService{Bookings: bookings, Metrics: m, Loc: loc, Now: time.Now}
}

func (s *BookingService) now() time.Time {
	if s.Now == nil {
		return time.Now().In(s.Loc)
	}
	return s.Now().In(s.Loc)
}

// Availability lists the free slots of flow on date. It reads bookings on every call.
func (s *BookingService) Availability(flow, date string) (Availability, error) {
	g, err := schedule.GridFor(flow)
	if err != nil {
		return Availability{}, err
	}
	d, err := schedule.ParseDate(date, s.Loc)
	if err != nil {
		return Availability{}, err
	}
	booked, err := s.Bookings.ListByDate(date)
	if err != nil {
		return Availability{}, err
	}
	slots, err := schedule.Available(g, d, s.now(), booked)
	if err != nil {
		return Availability{}, err
	}
	return Availability{Date: date, Flow: flow, Slots: slots, FullyBooked: len(slots) == 0}, nil
}

// Reserve checks the requested start against the grid and the calendar, then writes the
// booking if it overlaps nothing. The returned details carry the new booking id.
func (s *BookingService) Reserve(sessionID string, d domain.BookingDetails) (domain.BookingDetails, error) {
	res, err := s.reserve(sessionID, d)
	switch {
	case err == nil:
		s.Metrics.Booking(d.Flow, "reserved")
	case errors.Is(err, repos.ErrSlotTaken):
		s.Metrics.Booking(d.Flow, "conflict")
	default:
		s.Metrics.Booking(d.Flow, "rejected")
	}
	return res, err
}

func (s *BookingService) reserve(sessionID string, d domain.BookingDetails) (domain.BookingDetails, error) {
	g, err := schedule.GridFor(d.Flow)
	if err != nil {
		return d, err
	}
	day, err := schedule.ParseDate(d.Date, s.Loc)
	if err != nil {
		return d, err
	}
	if !schedule.DateOpen(day, s.now()) {
		return d, schedule.ErrDateUnavailable
	}
	start, err := schedule.ParseTime24(d.Time24)
	if err != nil {
		return d, err
	}
	if !g.Contains(start) {
		return d, schedule.ErrBadTime
	}
	if d.Flow == domain.FlowCall {
		d.Duration = schedule.CallDuration
	}
	if d.Duration <= 0 {
		return d, schedule.ErrBadTime
	}

	b := domain.Booking{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Flow:      d.Flow,
		Date:      d.Date,
		Time24:    schedule.Format24(start),
		Duration:  d.Duration,
	}
	if err := s.Bookings.Reserve(b); err != nil {
		return d, err
	}
	d.BookingID = b.ID
	d.Time24 = b.Time24
	d.Time12 = schedule.Format12(start)
	return d, nil
}

func (s *BookingService) Release(sessionID, bookingID string) error {
	return s.Bookings.Release(bookingID, sessionID)
}

func (s *BookingService) ListBySession(sessionID string) ([]domain.Booking, error) {
	return s.Bookings.ListBySession(sessionID)
}
