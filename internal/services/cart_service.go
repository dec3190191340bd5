package services

import (
	"errors"
	"fmt"
	"sync"

	"gasper/internal/catalog"
	"gasper/internal/domain"
	"gasper/internal/repos"
	"gasper/internal/validate"
)

// TaxRate is applied to the cart subtotal. It is not configurable.
const TaxRate = 0.08

var (
	ErrUnknownProduct = errors.New("unknown product")
	ErrBadItem        = errors.New("cart item needs an id, a name and a non-negative price")
)

// Cart operations reported to observers.
const (
	CartOpAdd    = "add"
	CartOpRemove = "remove"
	CartOpClear  = "clear"
	CartOpSettle = "settle"
)

// CartObserver is called after a cart mutation has been committed.
type CartObserver func(op, sessionID string)

type CartService struct {
	Carts    *repos.CartRepo
	Bookings *repos.BookingRepo

	mu        sync.RWMutex
	observers []CartObserver
}

func NewCartService(carts *repos.CartRepo, bookings *repos.BookingRepo) *CartService {
	return &CartService{Carts: carts, Bookings: bookings}
}

// Subscribe registers fn for every later mutation.
func (s *CartService) Subscribe(fn CartObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *CartService) notify(op, sessionID string) {
	s.mu.RLock()
	obs := append([]CartObserver(nil), s.observers...)
	s.mu.RUnlock()
	for _, fn := range obs {
		fn(op, sessionID)
	}
}

// Add puts a catalog product in the cart.
func (s *CartService) Add(sessionID, productID string, qty int) error {
	p, ok := catalog.Get(productID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProduct, productID)
	}
	return s.AddItem(sessionID, domain.CartItem{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Quantity: qty,
		Category: p.Category,
	})
}

// AddItem appends it, or increments the quantity when a line with the same id exists.
// Quantities are clamped to validate.MaxQty per add and per line.
func (s *CartService) AddItem(sessionID string, it domain.CartItem) error {
	if it.ID == "" || it.Name == "" || it.Price < 0 {
		return ErrBadItem
	}
	it.Quantity = validate.Quantity(it.Quantity)
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}
	if err := s.Carts.UpsertItem(cartID, it); err != nil {
		return err
	}
	s.notify(CartOpAdd, sessionID)
	return nil
}

// Remove deletes one line. A booking attached to the line is released.
func (s *CartService) Remove(sessionID, itemID string) error {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}
	it, err := s.Carts.Remove(cartID, itemID)
	if err != nil {
		return err
	}
	if it.BookingDetails != nil && it.BookingDetails.BookingID != "" {
		if err := s.Bookings.Release(it.BookingDetails.BookingID, sessionID); err != nil {
			return err
		}
	}
	s.notify(CartOpRemove, sessionID)
	return nil
}

// Clear empties the cart and releases every booking it held.
func (s *CartService) Clear(sessionID string) error {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}
	items, err := s.Carts.Items(cartID)
	if err != nil {
		return err
	}
	if err := s.Carts.Clear(cartID); err != nil {
		return err
	}
	for _, it := range items {
		if it.BookingDetails != nil && it.BookingDetails.BookingID != "" {
			if err := s.Bookings.Release(it.BookingDetails.BookingID, sessionID); err != nil {
				return err
			}
		}
	}
	s.notify(CartOpClear, sessionID)
	return nil
}

func (s *CartService) Items(sessionID string) ([]domain.CartItem, error) {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return nil, err
	}
	return s.Carts.Items(cartID)
}

type CartView struct {
	Items    []domain.CartItem `json:"items"`
	Count    int               `json:"count"`
	Subtotal float64           `json:"subtotal"`
	Tax      float64           `json:"tax"`
	Total    float64           `json:"total"`
}

func (s *CartService) View(sessionID string) (CartView, error) {
	items, err := s.Items(sessionID)
	if err != nil {
		return CartView{}, err
	}
	return NewCartView(items), nil
}

// NewCartView totals items: Total = Σ(price × quantity) × (1 + TaxRate).
func NewCartView(items []domain.CartItem) CartView {
	v := CartView{Items: items}
	for _, it := range items {
		v.Count += it.Quantity
		v.Subtotal += it.Price * float64(it.Quantity)
	}
	v.Total = v.Subtotal * (1 + TaxRate)
	v.Tax = v.Total - v.Subtotal
	return v
}
