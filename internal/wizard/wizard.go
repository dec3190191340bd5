// Package wizard is the linear booking flow: date, [type, duration,] time, confirm.
//
// Selections only move the cursor forward; Back moves it one step backward.
// Going back and changing an earlier answer keeps the later answers.
package wizard

import (
	"errors"
	"fmt"
	"strconv"

	"gasper/internal/domain"
	"gasper/internal/schedule"
)

type Step string

const (
	StepDate     Step = "date"
	StepType     Step = "type"
	StepDuration Step = "duration"
	StepTime     Step = "time"
	StepConfirm  Step = "confirm"
)

var (
	ErrWrongStep    = errors.New("step is not the current step")
	ErrAtFirstStep  = errors.New("already at the first step")
	ErrIncomplete   = errors.New("booking is missing selections")
	ErrBadType      = errors.New("unknown consultation type")
	ErrBadDuration  = errors.New("unsupported duration")
	ErrConfirmInput = errors.New("confirm takes no value")
)

// ConsultingTypes are the paid consultation kinds offered.
var ConsultingTypes = map[string]string{
	"site-assessment":    "Site Assessment",
	"logistics-planning": "Logistics Planning",
	"platform-demo":      "Platform Demo",
}

var Durations = []int{30, 60, 90, 120}

var flows = map[string][]Step{
	domain.FlowCall:       {StepDate, StepTime, StepConfirm},
	domain.FlowConsulting: {StepDate, StepType, StepDuration, StepTime, StepConfirm},
}

// State is the serialisable wizard state for one session.
type State struct {
	Flow     string `json:"flow"`
	Cursor   int    `json:"cursor"`
	Date     string `json:"date,omitempty"`
	Type     string `json:"type,omitempty"`
	Duration int    `json:"duration,omitempty"`
	Time24   string `json:"time,omitempty"`
}

func New(flow string) (*State, error) {
	if _, ok := flows[flow]; !ok {
		return nil, fmt.Errorf("%w: %q", schedule.ErrUnknownFlow, flow)
	}
	s := &State{Flow: flow}
	if flow == domain.FlowCall {
		s.Duration = schedule.CallDuration
	}
	return s, nil
}

func (s *State) Steps() []Step { return flows[s.Flow] }

func (s *State) Current() Step {
	steps := s.Steps()
	if s.Cursor < 0 || s.Cursor >= len(steps) {
		return StepConfirm
	}
	return steps[s.Cursor]
}

// Select records value for step and advances. Only the current step is accepted.
// Values are checked for shape here; availability is the caller's concern.
func (s *State) Select(step Step, value string) error {
	if step != s.Current() {
		return fmt.Errorf("%w: at %s, got %s", ErrWrongStep, s.Current(), step)
	}
	switch step {
	case StepDate:
		if _, err := schedule.ParseDate(value, nil); err != nil {
			return err
		}
		s.Date = value
	case StepType:
		if _, ok := ConsultingTypes[value]; !ok {
			return ErrBadType
		}
		s.Type = value
	case StepDuration:
		d, err := strconv.Atoi(value)
		if err != nil || !validDuration(d) {
			return ErrBadDuration
		}
		s.Duration = d
	case StepTime:
		if _, err := schedule.ParseTime24(value); err != nil {
			return err
		}
		s.Time24 = value
	case StepConfirm:
		return ErrConfirmInput
	}
	s.Cursor++
	return nil
}

func (s *State) Back() error {
	if s.Cursor == 0 {
		return ErrAtFirstStep
	}
	s.Cursor--
	return nil
}

// Complete reports whether every selection the flow needs is present.
func (s *State) Complete() bool {
	if s.Date == "" || s.Time24 == "" || s.Duration <= 0 {
		return false
	}
	return s.Flow != domain.FlowConsulting || s.Type != ""
}

// Details builds the booking summary. The booking id is filled in on reservation.
func (s *State) Details() (domain.BookingDetails, error) {
	if !s.Complete() {
		return domain.BookingDetails{}, ErrIncomplete
	}
	m, err := schedule.ParseTime24(s.Time24)
	if err != nil {
		return domain.BookingDetails{}, err
	}
	return domain.BookingDetails{
		Flow:     s.Flow,
		Date:     s.Date,
		Time24:   s.Time24,
		Time12:   schedule.Format12(m),
		Duration: s.Duration,
		Type:     s.Type,
	}, nil
}

func validDuration(d int) bool {
	for _, x := range Durations {
		if x == d {
			return true
		}
	}
	return false
}
