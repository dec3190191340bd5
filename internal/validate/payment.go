package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Payment methods accepted at checkout.
const (
	MethodCard    = "card"
	MethodPayPal  = "paypal"
	MethodCrypto  = "crypto"
	MethodBilling = "billing"
)

var (
	reDigits = regexp.MustCompile(`^[0-9]+$`)
	reCVV    = regexp.MustCompile(`^[0-9]{3,4}$`)
	reExpiry = regexp.MustCompile(`^(0[1-9]|1[0-2])/([0-9]{2})$`)
	reWallet = regexp.MustCompile(`^[A-Za-z0-9]{26,64}$`)

	cryptoCurrencies = map[string]bool{"BTC": true, "ETH": true, "USDC": true}
)

// Result is the outcome of a checkout validation. Field names the first
// invalid input so the form can focus it.
type Result struct {
	Valid   bool   `json:"valid"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}

func fail(field, msg string) Result { return Result{Field: field, Message: msg} }

// Checkout validates the fields for the chosen payment method in form order.
func Checkout(method string, f map[string]string, now time.Time) Result {
	get := func(k string) string { return strings.TrimSpace(f[k]) }

	if _, ok := Name(get("name")); !ok {
		return fail("name", "Please enter your full name (up to 60 characters).")
	}
	if _, ok := Email(get("email")); !ok {
		return fail("email", "Please enter a valid email address.")
	}

	switch method {
	case MethodCard:
		return card(get, now)
	case MethodPayPal:
		if _, ok := Email(get("paypal_email")); !ok {
			return fail("paypal_email", "Please enter the email linked to your PayPal account.")
		}
	case MethodCrypto:
		if !cryptoCurrencies[strings.ToUpper(get("crypto_currency"))] {
			return fail("crypto_currency", "Please choose BTC, ETH or USDC.")
		}
		if !reWallet.MatchString(get("wallet_address")) {
			return fail("wallet_address", "Please enter a valid wallet address.")
		}
	case MethodBilling:
		if get("company_name") == "" {
			return fail("company_name", "Please enter your company name.")
		}
		if _, ok := Email(get("billing_email")); !ok {
			return fail("billing_email", "Please enter a valid billing email address.")
		}
		if get("billing_address") == "" {
			return fail("billing_address", "Please enter a billing address.")
		}
	default:
		return fail("payment_method", "Please choose a payment method.")
	}
	return Result{Valid: true}
}

func card(get func(string) string, now time.Time) Result {
	if get("card_name") == "" {
		return fail("card_name", "Please enter the name on the card.")
	}
	if _, ok := CardNumber(get("card_number")); !ok {
		return fail("card_number", "Please enter a valid card number.")
	}
	if !CardExpiry(get("card_expiry"), now) {
		return fail("card_expiry", "Please enter a valid expiry date (MM/YY).")
	}
	if !reCVV.MatchString(get("card_cvv")) {
		return fail("card_cvv", "Please enter a valid CVV.")
	}
	return Result{Valid: true}
}

// CardNumber strips spaces and accepts 13 to 19 digits.
func CardNumber(s string) (string, bool) {
	digits := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if len(digits) < 13 || len(digits) > 19 || !reDigits.MatchString(digits) {
		return "", false
	}
	return digits, true
}

// CardExpiry accepts MM/YY that is not before now's month.
func CardExpiry(s string, now time.Time) bool {
	m := reExpiry.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return false
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	year += 2000
	return year > now.Year() || (year == now.Year() && month >= int(now.Month()))
}
