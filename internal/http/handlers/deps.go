package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/jmoiron/sqlx"

	"gasper/internal/config"
	"gasper/internal/liquid"
	applog "gasper/internal/log"
	"gasper/internal/metrics"
	"gasper/internal/notify"
	"gasper/internal/repos"
	"gasper/internal/services"
)

type Deps struct {
	CatalogHandler  *CatalogHandler
	SearchHandler   *SearchHandler
	CartHandler     *CartHandler
	OrderHandler    *OrderHandler
	BookingHandler  *BookingHandler
	AccountHandler  *AccountHandler
	WaitlistHandler *WaitlistHandler
	LiquidHandler   *LiquidHandler

	// Route limiters; tests swap in tighter ones before Mount.
	SearchLimiter       fiber.Handler
	AvailabilityLimiter fiber.Handler
}

// NewDeps wires repos and services. m and sim may be nil.
func NewDeps(db *sqlx.DB, cfg config.Config, m *metrics.SiteMetrics, sim *liquid.Simulation) *Deps {
	cartRepo := repos.NewCartRepo(db)
	bookingRepo := repos.NewBookingRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	catalogSvc := services.NewCatalogService()
	cartSvc := services.NewCartService(cartRepo, bookingRepo)
	cartSvc.Subscribe(func(op, _ string) { m.CartMutation(op) })
	bookingSvc := services.NewBookingService(bookingRepo, m, cfg.BookingTZ)
	wizardSvc := services.NewWizardService(repos.NewWizardRepo(db), bookingSvc, cartSvc, cfg.ConfirmDelay)
	orderSvc := services.NewOrderService(cartSvc, orderRepo, m, cfg.ProcessingDelay)
	accountSvc := services.NewAccountService(repos.NewRecordRepo(db), notify.NewRelayClient(cfg.FormsRelayURL))

	mailer, err := notify.NewMailer(notify.EmailConfig{
		Provider:       cfg.Email.Provider,
		ResendAPIKey:   cfg.Email.ResendAPIKey,
		ResendBaseURL:  cfg.Email.ResendBaseURL,
		SendGridAPIKey: cfg.Email.SendGridAPIKey,
		From:           cfg.Email.From,
	})
	if err != nil {
		if errors.Is(err, notify.ErrNotConfigured) {
			log.Printf("[email] no provider key set; waitlist signups will fail over to %s", cfg.Email.FallbackEmail)
		} else {
			log.Printf("[email] %v", err)
		}
	}
	waitlistSvc := services.NewWaitlistService(mailer, repos.NewWaitlistRepo(db), m, cfg.Email.NotifyTo, cfg.Email.FallbackEmail)

	return &Deps{
		CatalogHandler:  &CatalogHandler{Catalog: catalogSvc},
		SearchHandler:   &SearchHandler{Catalog: catalogSvc},
		CartHandler:     &CartHandler{Cart: cartSvc},
		OrderHandler:    &OrderHandler{Cart: cartSvc, Order: orderSvc},
		BookingHandler:  &BookingHandler{Bookings: bookingSvc, Wizards: wizardSvc},
		AccountHandler:  &AccountHandler{Account: accountSvc, Order: orderSvc, Booking: bookingSvc},
		WaitlistHandler: &WaitlistHandler{Waitlist: waitlistSvc},
		LiquidHandler:   &LiquidHandler{Sim: sim},

		SearchLimiter: limiter.New(limiter.Config{Max: 20, Expiration: time.Minute}),
		AvailabilityLimiter: limiter.New(limiter.Config{
			Max:        15,
			Expiration: 30 * time.Second,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP() + "|avail"
			},
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.availability.hit", nil)
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
			},
		}),
	}
}

// Mount registers every page and API route on app.
func (d *Deps) Mount(app *fiber.App) {
	// Public pages
	app.Get("/", d.CatalogHandler.Home)
	app.Get("/products", d.CatalogHandler.Modules)
	app.Get("/packages", d.CatalogHandler.Packages)
	app.Get("/product/:id", d.CatalogHandler.Detail)
	app.Get("/search", d.SearchLimiter, d.SearchHandler.Search)
	app.Get("/book", d.BookingHandler.Page)
	app.Get("/privacy", Privacy)
	app.Get("/terms", Terms)

	// Cart & Orders
	app.Get("/cart", d.CartHandler.View)
	app.Post("/cart", d.CartHandler.Add)
	app.Post("/cart/remove", d.CartHandler.Remove)
	app.Get("/checkout", d.OrderHandler.Checkout)
	app.Post("/orders", d.OrderHandler.Place)
	app.Get("/order/:id", d.OrderHandler.View)

	// Waitlist answers CORS itself
	app.All("/api/waitlist", d.WaitlistHandler.Join)

	// API
	api := app.Group("/api/v1", cors.New(cors.Config{
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	api.Get("/catalog", d.CatalogHandler.API)
	api.Get("/availability", d.AvailabilityLimiter, d.BookingHandler.Availability)

	api.Get("/booking/wizard", d.BookingHandler.GetWizard)
	api.Post("/booking/wizard/select", d.BookingHandler.Select)
	api.Post("/booking/wizard/back", d.BookingHandler.Back)
	api.Post("/booking/wizard/confirm", d.BookingHandler.Confirm)
	api.Delete("/booking/wizard", d.BookingHandler.Reset)

	api.Get("/cart", d.CartHandler.Get)
	api.Post("/cart/items", d.CartHandler.AddItem)
	api.Delete("/cart/items/:id", d.CartHandler.DeleteItem)
	api.Delete("/cart", d.CartHandler.Clear)
	api.Post("/checkout/validate", d.OrderHandler.Validate)

	acct := api.Group("/account")
	acct.Get("/profile", d.AccountHandler.Profile)
	acct.Put("/profile", d.AccountHandler.SaveProfile)
	acct.Get("/shipping", d.AccountHandler.Shipping)
	acct.Put("/shipping", d.AccountHandler.SaveShipping)
	acct.Get("/payment-methods", d.AccountHandler.PaymentMethods)
	acct.Post("/payment-methods", d.AccountHandler.AddPaymentMethod)
	acct.Delete("/payment-methods/:id", d.AccountHandler.RemovePaymentMethod)
	acct.Get("/flags", d.AccountHandler.Flags)
	acct.Put("/flags/:name", d.AccountHandler.SetFlag)
	acct.Post("/email", d.AccountHandler.ChangeEmail)
	acct.Post("/password", d.AccountHandler.ChangePassword)
	acct.Get("/orders", d.AccountHandler.Orders)
	acct.Get("/bookings", d.AccountHandler.Bookings)

	api.Get("/liquid", d.LiquidHandler.Snapshot)
	api.Post("/liquid/pointer", d.LiquidHandler.Pointer)

	app.Get("/healthz", Healthz)
}
