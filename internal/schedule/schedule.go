// Package schedule computes bookable appointment slots on a fixed working-hour grid.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"gasper/internal/domain"
)

const DateLayout = "2006-01-02"

var (
	ErrBadDate         = errors.New("date must be YYYY-MM-DD")
	ErrBadTime         = errors.New("time must be HH:MM")
	ErrDateUnavailable = errors.New("date is in the past or on a weekend")
	ErrUnknownFlow     = errors.New("unknown booking flow")
)

// Grid is a working-hours window in minutes from midnight.
type Grid struct {
	Open  int
	Close int
	Step  int
}

var grids = map[string]Grid{
	domain.FlowCall:       {Open: 8*60 + 30, Close: 16*60 + 30, Step: 30},
	domain.FlowConsulting: {Open: 8*60 + 30, Close: 17 * 60, Step: 15},
}

// CallDuration is the fixed length of a free discovery call.
const CallDuration = 30

func GridFor(flow string) (Grid, error) {
	g, ok := grids[flow]
	if !ok {
		return Grid{}, fmt.Errorf("%w: %q", ErrUnknownFlow, flow)
	}
	return g, nil
}

// Slots lists every grid-aligned start in [Open, Close).
func (g Grid) Slots() []int {
	if g.Step <= 0 {
		return nil
	}
	var out []int
	for m := g.Open; m < g.Close; m += g.Step {
		out = append(out, m)
	}
	return out
}

// Contains reports whether minute m is a start on the grid.
func (g Grid) Contains(m int) bool {
	return g.Step > 0 && m >= g.Open && m < g.Close && (m-g.Open)%g.Step == 0
}

func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, ErrBadDate
	}
	return d, nil
}

// ParseTime24 returns minutes from midnight for "HH:MM".
func ParseTime24(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, ErrBadTime
	}
	m := t.Hour()*60 + t.Minute()
	// only the zero-padded form is stored or compared
	if Format24(m) != s {
		return 0, ErrBadTime
	}
	return m, nil
}

func Format24(m int) string { return fmt.Sprintf("%02d:%02d", m/60, m%60) }

func Format12(m int) string {
	h, min := m/60, m%60
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, min, suffix)
}

// DateOpen is false for weekends and for days before now's calendar day.
func DateOpen(date, now time.Time) bool {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	y, m, d := now.In(date.Location()).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	return !date.Before(today)
}

// Available returns the open slots of g on date, chronologically. A slot is taken when
// its start minute falls inside [start, start+duration) of a booking on the same date.
func Available(g Grid, date, now time.Time, bookings []domain.Booking) ([]domain.Slot, error) {
	if !DateOpen(date, now) {
		return nil, ErrDateUnavailable
	}
	day := date.Format(DateLayout)

	type span struct{ start, end int }
	var taken []span
	for _, b := range bookings {
		if b.Date != day {
			continue
		}
		start, err := ParseTime24(b.Time24)
		if err != nil {
			continue
		}
		taken = append(taken, span{start, start + b.Duration})
	}

	out := []domain.Slot{}
	for _, m := range g.Slots() {
		free := true
		for _, s := range taken {
			if m >= s.start && m < s.end {
				free = false
				break
			}
		}
		if free {
			out = append(out, domain.Slot{Time24: Format24(m), Time12: Format12(m)})
		}
	}
	return out, nil
}

// Overlaps reports whether [aStart, aStart+aDur) and [bStart, bStart+bDur) intersect.
func Overlaps(aStart, aDur, bStart, bDur int) bool {
	return aStart < bStart+bDur && bStart < aStart+aDur
}
