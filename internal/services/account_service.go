package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"gasper/internal/domain"
	applog "gasper/internal/log"
	"gasper/internal/notify"
	"gasper/internal/repos"
	"gasper/internal/validate"
)

// Record keys in the per-session store.
const (
	keyProfile  = "profile"
	keyShipping = "shipping"
	keyPayments = "payment_methods"
	keyFlags    = "flags"
	keyPassword = "password"
)

var (
	ErrInvalidProfile  = errors.New("name and a valid email are required")
	ErrInvalidAddress  = errors.New("address needs line1, city, postal code and country")
	ErrWeakPassword    = errors.New("password must be 8-64 characters with upper, lower, digit and symbol")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrInvalidFlag     = errors.New("invalid flag name")
	ErrInvalidPayment  = errors.New("invalid payment method")
	ErrPaymentNotFound = errors.New("payment method not found")
)

// AccountService keeps the locally stored account records of a visitor.
type AccountService struct {
	Records *repos.RecordRepo
	Relay   *notify.RelayClient
}

func NewAccountService(records *repos.RecordRepo, relay *notify.RelayClient) *AccountService {
	return &AccountService{Records: records, Relay: relay}
}

func (s *AccountService) Profile(sessionID string) (domain.Profile, error) {
	var p domain.Profile
	_, err := s.Records.Get(sessionID, keyProfile, &p)
	return p, err
}

func (s *AccountService) SaveProfile(sessionID string, p domain.Profile) (domain.Profile, error) {
	name, ok := validate.Name(p.Name)
	if !ok {
		return domain.Profile{}, ErrInvalidProfile
	}
	email, ok := validate.Email(p.Email)
	if !ok {
		return domain.Profile{}, ErrInvalidProfile
	}
	p.Name, p.Email = name, email
	p.Company = strings.TrimSpace(p.Company)
	p.Phone = strings.TrimSpace(p.Phone)
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return p, s.Records.Put(sessionID, keyProfile, p)
}

func (s *AccountService) Shipping(sessionID string) (domain.ShippingAddress, error) {
	var a domain.ShippingAddress
	_, err := s.Records.Get(sessionID, keyShipping, &a)
	return a, err
}

func (s *AccountService) SaveShipping(sessionID string, a domain.ShippingAddress) error {
	a.Line1 = strings.TrimSpace(a.Line1)
	a.City = strings.TrimSpace(a.City)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.Country = strings.TrimSpace(a.Country)
	if a.Line1 == "" || a.City == "" || a.PostalCode == "" || a.Country == "" {
		return ErrInvalidAddress
	}
	return s.Records.Put(sessionID, keyShipping, a)
}

func (s *AccountService) PaymentMethods(sessionID string) ([]domain.PaymentMethod, error) {
	out := []domain.PaymentMethod{}
	_, err := s.Records.Get(sessionID, keyPayments, &out)
	return out, err
}

// AddPaymentMethod saves a display-only method. For cards only the last four digits
// of number are kept.
func (s *AccountService) AddPaymentMethod(sessionID, kind, label, number string) (domain.PaymentMethod, error) {
	pm := domain.PaymentMethod{ID: uuid.NewString(), Kind: kind, Label: strings.TrimSpace(label)}
	switch kind {
	case validate.MethodCard:
		digits, ok := validate.CardNumber(number)
		if !ok {
			return domain.PaymentMethod{}, ErrInvalidPayment
		}
		pm.Last4 = digits[len(digits)-4:]
	case validate.MethodPayPal, validate.MethodCrypto, validate.MethodBilling:
	default:
		return domain.PaymentMethod{}, ErrInvalidPayment
	}
	if pm.Label == "" {
		pm.Label = kind
	}

	list, err := s.PaymentMethods(sessionID)
	if err != nil {
		return domain.PaymentMethod{}, err
	}
	pm.Default = len(list) == 0
	list = append(list, pm)
	return pm, s.Records.Put(sessionID, keyPayments, list)
}

func (s *AccountService) RemovePaymentMethod(sessionID, id string) error {
	list, err := s.PaymentMethods(sessionID)
	if err != nil {
		return err
	}
	kept := list[:0]
	var removed *domain.PaymentMethod
	for i := range list {
		if list[i].ID == id {
			pm := list[i]
			removed = &pm
			continue
		}
		kept = append(kept, list[i])
	}
	if removed == nil {
		return ErrPaymentNotFound
	}
	if removed.Default && len(kept) > 0 {
		kept[0].Default = true
	}
	return s.Records.Put(sessionID, keyPayments, kept)
}

func (s *AccountService) Flags(sessionID string) (map[string]bool, error) {
	out := map[string]bool{}
	_, err := s.Records.Get(sessionID, keyFlags, &out)
	return out, err
}

// SetFlag stores a UI flag such as welcome_popup.
func (s *AccountService) SetFlag(sessionID, name string, v bool) error {
	name, ok := validate.Flag(name)
	if !ok {
		return ErrInvalidFlag
	}
	flags, err := s.Flags(sessionID)
	if err != nil {
		return err
	}
	flags[name] = v
	return s.Records.Put(sessionID, keyFlags, flags)
}

// ChangeEmail updates the profile email and sends a change notice through the relay.
func (s *AccountService) ChangeEmail(ctx context.Context, sessionID, email string) error {
	email, ok := validate.Email(email)
	if !ok {
		return ErrInvalidEmail
	}
	p, err := s.Profile(sessionID)
	if err != nil {
		return err
	}
	old := p.Email
	p.Email = email
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := s.Records.Put(sessionID, keyProfile, p); err != nil {
		return err
	}
	s.notice(ctx, "Email address changed", map[string]string{"old_email": old, "new_email": email})
	return nil
}

// ChangePassword stores a bcrypt hash of password.
func (s *AccountService) ChangePassword(ctx context.Context, sessionID, password string) error {
	if !validate.Password(password) {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.Records.Put(sessionID, keyPassword, string(hash)); err != nil {
		return err
	}
	p, _ := s.Profile(sessionID)
	s.notice(ctx, "Password changed", map[string]string{"email": p.Email})
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (s *AccountService) CheckPassword(sessionID, password string) (bool, error) {
	var hash string
	ok, err := s.Records.Get(sessionID, keyPassword, &hash)
	if err != nil || !ok {
		return false, err
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, nil
}

// notice posts to the forms relay. Failures are logged only.
func (s *AccountService) notice(ctx context.Context, subject string, fields map[string]string) {
	if err := s.Relay.Notify(ctx, subject, fields); err != nil {
		applog.Error(nil, "account.notice_failed", err, map[string]any{"subject": subject})
	}
}
