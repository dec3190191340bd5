package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gasper/internal/services"
	"gasper/internal/validate"
	"gasper/internal/wizard"
)

func cardForm() map[string]string {
	return map[string]string{
		"name":        "Ada Builder",
		"email":       "ada@example.com",
		"card_name":   "Ada Builder",
		"card_number": "4111 1111 1111 1",
		"card_expiry": "12/29",
		"card_cvv":    "123",
	}
}

func TestOrderFlow_AddCartCheckout(t *testing.T) {
	f := newFixture(t)
	sid := "test-session"

	require.NoError(t, f.cart.Add(sid, "blueprint-analyzer", 2))
	cv, err := f.cart.View(sid)
	require.NoError(t, err)

	r, err := f.orders.Place(context.Background(), sid, validate.MethodCard, cardForm())
	require.NoError(t, err)
	require.NotEmpty(t, r.OrderID)
	require.InDelta(t, cv.Total, r.Total, 1e-9)

	left, err := f.cart.Items(sid)
	require.NoError(t, err)
	require.Empty(t, left)

	o, items, err := f.orders.Get(sid, r.OrderID)
	require.NoError(t, err)
	require.Equal(t, "PAID", o.Status)
	require.Equal(t, validate.MethodCard, o.PaymentMethod)
	require.Len(t, items, 1)
	require.Equal(t, 2, items[0].Qty)

	_, _, err = f.orders.Get("someone-else", r.OrderID)
	require.ErrorIs(t, err, services.ErrForbidden)

	hist, err := f.orders.History(sid)
	require.NoError(t, err)
	require.Len(t, hist, 1)
}

func TestOrder_InvalidFormReportsField(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.cart.Add("s1", "starter", 1))

	form := cardForm()
	form["card_number"] = "4111 1111 1111" // 12 digits
	_, err := f.orders.Place(context.Background(), "s1", validate.MethodCard, form)

	var inv *services.InvalidCheckoutError
	require.True(t, errors.As(err, &inv))
	require.Equal(t, "card_number", inv.Result.Field)
}

func TestOrder_EmptyCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.orders.Place(context.Background(), "s1", validate.MethodCard, cardForm())
	require.ErrorIs(t, err, services.ErrCartEmpty)
}

func TestOrder_CancelDuringProcessingKeepsCart(t *testing.T) {
	f := newFixture(t)
	f.orders.Delay = time.Minute
	require.NoError(t, f.cart.Add("s1", "growth", 1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := f.orders.Place(ctx, "s1", validate.MethodCard, cardForm())
	require.ErrorIs(t, err, context.DeadlineExceeded)

	items, err := f.cart.Items("s1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	hist, err := f.orders.History("s1")
	require.NoError(t, err)
	require.Empty(t, hist)
}

func TestOrder_PaidBookingStaysReserved(t *testing.T) {
	f := newFixture(t)
	sid := "s1"

	_, err := f.wizards.Start(sid, "consulting")
	require.NoError(t, err)
	for _, sel := range [][2]string{{"date", thursday}, {"type", "logistics-planning"}, {"duration", "60"}, {"time", "15:00"}} {
		_, err := f.wizards.Select(sid, wizard.Step(sel[0]), sel[1])
		require.NoError(t, err)
	}
	_, err = f.wizards.Confirm(context.Background(), sid)
	require.NoError(t, err)

	_, err = f.orders.Place(context.Background(), sid, validate.MethodPayPal, map[string]string{
		"name": "Ada", "email": "ada@example.com", "paypal_email": "ada@example.com",
	})
	require.NoError(t, err)

	mine, err := f.bookings.ListBySession(sid)
	require.NoError(t, err)
	require.Len(t, mine, 1)
}

func TestOrder_LineAddedDuringProcessingIsOrdered(t *testing.T) {
	f := newFixture(t)
	f.orders.Delay = 300 * time.Millisecond
	require.NoError(t, f.cart.Add("s1", "blueprint-analyzer", 1))

	added := make(chan error, 1)
	go func() {
		time.Sleep(100 * time.Millisecond)
		added <- f.cart.Add("s1", "starter", 1)
	}()

	r, err := f.orders.Place(context.Background(), "s1", validate.MethodCard, cardForm())
	require.NoError(t, err)
	require.NoError(t, <-added)

	_, lines, err := f.orders.Get("s1", r.OrderID)
	require.NoError(t, err)
	left, err := f.cart.Items("s1")
	require.NoError(t, err)
	require.Equal(t, 2, len(lines)+len(left), "every line is either ordered or still in the cart")
	require.Len(t, lines, 2)
	require.Empty(t, left)

	var sub float64
	for _, l := range lines {
		sub += l.Price * float64(l.Qty)
	}
	require.InDelta(t, sub*(1+services.TaxRate), r.Total, 1e-9)
}

func TestOrder_CartEmptiedDuringProcessing(t *testing.T) {
	f := newFixture(t)
	f.orders.Delay = 200 * time.Millisecond
	require.NoError(t, f.cart.Add("s1", "growth", 1))

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = f.cart.Clear("s1")
	}()
	_, err := f.orders.Place(context.Background(), "s1", validate.MethodCard, cardForm())
	require.ErrorIs(t, err, services.ErrCartEmpty)

	hist, err := f.orders.History("s1")
	require.NoError(t, err)
	require.Empty(t, hist)
}
