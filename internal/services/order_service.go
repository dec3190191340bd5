package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"gasper/internal/domain"
	"gasper/internal/metrics"
	"gasper/internal/repos"
	"gasper/internal/validate"
)

var (
	ErrCartEmpty = errors.New("cart is empty")
	ErrForbidden = errors.New("order belongs to another session")
)

// InvalidCheckoutError carries the first field that failed validation.
type InvalidCheckoutError struct{ Result validate.Result }

func (e *InvalidCheckoutError) Error() string {
	return "invalid " + e.Result.Field + ": " + e.Result.Message
}

type Contact struct {
	Name  string
	Email string
}

type Receipt struct {
	OrderID  string
	Subtotal float64
	Tax      float64
	Total    float64
}

type OrderService struct {
	Cart    *CartService
	Orders  *repos.OrderRepo
	Metrics *metrics.SiteMetrics
	Delay   time.Duration
	Now     func() time.Time
}

func NewOrderService(cart *CartService, orders *repos.OrderRepo, m *metrics.SiteMetrics, delay time.Duration) *OrderService {
	return &OrderService{Cart: cart, Orders: orders, Metrics: m, Delay: delay, Now: time.Now}
}

// Validate checks the checkout form for method.
func (s *OrderService) Validate(method string, fields map[string]string) validate.Result {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	r := validate.Checkout(method, fields, now)
	if r.Valid {
		s.Metrics.Checkout(method, "valid")
	} else {
		s.Metrics.Checkout(method, "invalid")
	}
	return r
}

// Place validates the form, waits out the processing delay and records the order.
// Cancelling ctx during the wait leaves the cart as it was. There is no payment
// gateway, so a valid form always produces an order.
func (s *OrderService) Place(ctx context.Context, sessionID, method string, fields map[string]string) (Receipt, error) {
	if r := s.Validate(method, fields); !r.Valid {
		return Receipt{}, &InvalidCheckoutError{Result: r}
	}

	view, err := s.Cart.View(sessionID)
	if err != nil {
		return Receipt{}, err
	}
	if len(view.Items) == 0 {
		return Receipt{}, ErrCartEmpty
	}

	if s.Delay > 0 {
		t := time.NewTimer(s.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			s.Metrics.Checkout(method, "cancelled")
			return Receipt{}, ctx.Err()
		case <-t.C:
		}
	}

	cartID, err := s.Cart.Carts.EnsureCart(sessionID)
	if err != nil {
		return Receipt{}, err
	}
	// The order covers the cart as it is after the wait, including lines added meanwhile.
	contact := Contact{Name: fields["name"], Email: fields["email"]}
	o, _, err := s.Orders.CreateFromCart(cartID, func(items []domain.CartItem) repos.OrderRow {
		v := NewCartView(items)
		return repos.OrderRow{
			ID:            uuid.NewString(),
			SessionID:     sessionID,
			PaymentMethod: method,
			Customer:      contact.Name,
			Email:         contact.Email,
			Subtotal:      v.Subtotal,
			Tax:           v.Tax,
			Total:         v.Total,
		}
	})
	if errors.Is(err, repos.ErrEmptyCart) {
		// emptied in another tab during the wait
		return Receipt{}, ErrCartEmpty
	}
	if err != nil {
		return Receipt{}, err
	}
	// bookings on the ordered lines stay reserved
	s.Cart.notify(CartOpSettle, sessionID)
	s.Metrics.Checkout(method, "paid")
	return Receipt{OrderID: o.ID, Subtotal: o.Subtotal, Tax: o.Tax, Total: o.Total}, nil
}

// Get returns an order only to the session that placed it.
func (s *OrderService) Get(sessionID, orderID string) (repos.OrderRow, []repos.OrderItemRow, error) {
	o, items, err := s.Orders.Get(orderID)
	if err != nil {
		return repos.OrderRow{}, nil, err
	}
	if o.SessionID != sessionID {
		return repos.OrderRow{}, nil, ErrForbidden
	}
	return o, items, nil
}

func (s *OrderService) History(sessionID string) ([]repos.OrderRow, error) {
	return s.Orders.ListBySession(sessionID)
}
