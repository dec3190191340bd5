package services_test

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"gasper/internal/repos"
	"gasper/internal/services"
)

// 2026-10-14 is a Wednesday; 2026-10-15 is the next open day.
var (
	wednesday = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	thursday  = "2026-10-15"
)

type fixture struct {
	db       *sqlx.DB
	cart     *services.CartService
	bookings *services.BookingService
	wizards  *services.WizardService
	orders   *services.OrderService
}

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memdb(t)
	bookingRepo := repos.NewBookingRepo(db)

	cart := services.NewCartService(repos.NewCartRepo(db), bookingRepo)
	bookings := services.NewBookingService(bookingRepo, nil, time.UTC)
	bookings.Now = func() time.Time { return wednesday }
	wizards := services.NewWizardService(repos.NewWizardRepo(db), bookings, cart, 0)
	orders := services.NewOrderService(cart, repos.NewOrderRepo(db), nil, 0)
	orders.Now = func() time.Time { return wednesday }

	return &fixture{db: db, cart: cart, bookings: bookings, wizards: wizards, orders: orders}
}
