package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gasper/internal/domain"
	"gasper/internal/repos"
	"gasper/internal/schedule"
	"gasper/internal/services"
	"gasper/internal/wizard"
)

func TestBooking_AvailabilityDropsBookedSlots(t *testing.T) {
	f := newFixture(t)

	before, err := f.bookings.Availability(domain.FlowConsulting, thursday)
	require.NoError(t, err)
	require.Len(t, before.Slots, 34)
	require.False(t, before.FullyBooked)

	_, err = f.bookings.Reserve("s1", domain.BookingDetails{Flow: domain.FlowConsulting, Date: thursday, Time24: "09:00", Duration: 60})
	require.NoError(t, err)

	after, err := f.bookings.Availability(domain.FlowConsulting, thursday)
	require.NoError(t, err)
	require.Len(t, after.Slots, 30)
	for _, s := range after.Slots {
		require.NotContains(t, []string{"09:00", "09:15", "09:30", "09:45"}, s.Time24)
	}
}

func TestBooking_ClosedDates(t *testing.T) {
	f := newFixture(t)

	_, err := f.bookings.Availability(domain.FlowCall, "2026-10-17") // Saturday
	require.ErrorIs(t, err, schedule.ErrDateUnavailable)
	_, err = f.bookings.Availability(domain.FlowCall, "2026-10-13") // yesterday
	require.ErrorIs(t, err, schedule.ErrDateUnavailable)
	_, err = f.bookings.Availability("lunch", thursday)
	require.ErrorIs(t, err, schedule.ErrUnknownFlow)
}

func TestBooking_OverlapIsAConflict(t *testing.T) {
	f := newFixture(t)

	_, err := f.bookings.Reserve("a", domain.BookingDetails{Flow: domain.FlowConsulting, Date: thursday, Time24: "10:00", Duration: 90})
	require.NoError(t, err)

	// 09:30 is still listed as free, but an hour from there runs into the 10:00 booking.
	_, err = f.bookings.Reserve("b", domain.BookingDetails{Flow: domain.FlowConsulting, Date: thursday, Time24: "09:30", Duration: 60})
	require.ErrorIs(t, err, repos.ErrSlotTaken)

	_, err = f.bookings.Reserve("b", domain.BookingDetails{Flow: domain.FlowConsulting, Date: thursday, Time24: "11:30", Duration: 30})
	require.NoError(t, err)
}

func TestBooking_OffGridTimeRejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.bookings.Reserve("a", domain.BookingDetails{Flow: domain.FlowCall, Date: thursday, Time24: "09:15"})
	require.ErrorIs(t, err, schedule.ErrBadTime)
}

func TestWizard_ConsultingProducesOneCartItem(t *testing.T) {
	f := newFixture(t)
	sid := "s1"

	_, err := f.wizards.Start(sid, domain.FlowConsulting)
	require.NoError(t, err)
	for _, sel := range []struct {
		step  wizard.Step
		value string
	}{
		{wizard.StepDate, thursday},
		{wizard.StepType, "site-assessment"},
		{wizard.StepDuration, "30"},
		{wizard.StepTime, "13:00"},
	} {
		_, err := f.wizards.Select(sid, sel.step, sel.value)
		require.NoError(t, err, sel.step)
	}

	// revisit the duration after the time was picked
	_, err = f.wizards.Back(sid)
	require.NoError(t, err)
	st, err := f.wizards.Back(sid)
	require.NoError(t, err)
	require.Equal(t, wizard.StepDuration, st.Current())
	require.Equal(t, "13:00", st.Time24)

	_, err = f.wizards.Select(sid, wizard.StepDuration, "90")
	require.NoError(t, err)
	_, err = f.wizards.Select(sid, wizard.StepTime, "13:00")
	require.NoError(t, err)

	c, err := f.wizards.Confirm(context.Background(), sid)
	require.NoError(t, err)
	require.NotNil(t, c.CartItem)

	items, err := f.cart.Items(sid)
	require.NoError(t, err)
	require.Len(t, items, 1)
	bd := items[0].BookingDetails
	require.NotNil(t, bd)
	require.Equal(t, thursday, bd.Date)
	require.Equal(t, "13:00", bd.Time24)
	require.Equal(t, 90, bd.Duration)
	require.NotEmpty(t, bd.BookingID)
	require.InDelta(t, services.HourlyRate*1.5, items[0].Price, 1e-9)

	_, err = f.wizards.Back(sid)
	require.ErrorIs(t, err, services.ErrNoWizard)
}

func TestWizard_CallConfirmAddsNothingToCart(t *testing.T) {
	f := newFixture(t)
	sid := "s1"

	st, err := f.wizards.Get(sid, domain.FlowCall)
	require.NoError(t, err)
	require.Equal(t, []wizard.Step{wizard.StepDate, wizard.StepTime, wizard.StepConfirm}, st.Steps())

	_, err = f.wizards.Select(sid, wizard.StepDate, thursday)
	require.NoError(t, err)
	_, err = f.wizards.Select(sid, wizard.StepTime, "11:30")
	require.NoError(t, err)

	c, err := f.wizards.Confirm(context.Background(), sid)
	require.NoError(t, err)
	require.Nil(t, c.CartItem)
	require.Equal(t, 30, c.Booking.Duration)
	require.Equal(t, "11:30 AM", c.Booking.Time12)

	items, err := f.cart.Items(sid)
	require.NoError(t, err)
	require.Empty(t, items)

	mine, err := f.bookings.ListBySession(sid)
	require.NoError(t, err)
	require.Len(t, mine, 1)
}

func TestWizard_TakenTimeAndClosedDateRejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.bookings.Reserve("other", domain.BookingDetails{Flow: domain.FlowCall, Date: thursday, Time24: "10:00"})
	require.NoError(t, err)

	_, err = f.wizards.Start("s1", domain.FlowCall)
	require.NoError(t, err)
	_, err = f.wizards.Select("s1", wizard.StepDate, "2026-10-18")
	require.ErrorIs(t, err, schedule.ErrDateUnavailable)
	_, err = f.wizards.Select("s1", wizard.StepDate, thursday)
	require.NoError(t, err)
	_, err = f.wizards.Select("s1", wizard.StepTime, "10:00")
	require.ErrorIs(t, err, services.ErrSlotUnavailable)
	_, err = f.wizards.Select("s1", wizard.StepType, "platform-demo")
	require.ErrorIs(t, err, wizard.ErrWrongStep)
}

func TestWizard_ConfirmIncompleteAndConflict(t *testing.T) {
	f := newFixture(t)

	_, err := f.wizards.Start("s1", domain.FlowCall)
	require.NoError(t, err)
	_, err = f.wizards.Confirm(context.Background(), "s1")
	require.ErrorIs(t, err, wizard.ErrIncomplete)

	_, err = f.wizards.Select("s1", wizard.StepDate, thursday)
	require.NoError(t, err)
	_, err = f.wizards.Select("s1", wizard.StepTime, "14:00")
	require.NoError(t, err)

	// someone else takes the slot between selection and confirmation
	_, err = f.bookings.Reserve("other", domain.BookingDetails{Flow: domain.FlowCall, Date: thursday, Time24: "14:00"})
	require.NoError(t, err)

	_, err = f.wizards.Confirm(context.Background(), "s1")
	require.ErrorIs(t, err, repos.ErrSlotTaken)
}

func TestWizard_CancelledConfirmReservesNothing(t *testing.T) {
	f := newFixture(t)
	f.wizards.Delay = time.Minute

	_, err := f.wizards.Start("s1", domain.FlowCall)
	require.NoError(t, err)
	_, err = f.wizards.Select("s1", wizard.StepDate, thursday)
	require.NoError(t, err)
	_, err = f.wizards.Select("s1", wizard.StepTime, "09:00")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.wizards.Confirm(ctx, "s1")
	require.True(t, errors.Is(err, context.Canceled))

	mine, err := f.bookings.ListBySession("s1")
	require.NoError(t, err)
	require.Empty(t, mine)
	st, err := f.wizards.Get("s1", "")
	require.NoError(t, err)
	require.Equal(t, wizard.StepConfirm, st.Current())
}
