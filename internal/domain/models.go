package domain

// Flow names the two booking variants.
const (
	FlowCall       = "call"
	FlowConsulting = "consulting"
)

type BookingDetails struct {
	BookingID string `json:"bookingId"`
	Flow      string `json:"flow"`
	Date      string `json:"date"`   // YYYY-MM-DD
	Time24    string `json:"time"`   // HH:MM
	Time12    string `json:"time12"` // 9:30 AM
	Duration  int    `json:"duration"`
	Type      string `json:"type,omitempty"`
}

type CartItem struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Price          float64         `json:"price"`
	Quantity       int             `json:"quantity"`
	Category       string          `json:"category,omitempty"`
	BookingDetails *BookingDetails `json:"bookingDetails,omitempty"`
}

type Booking struct {
	ID        string `db:"id" json:"id"`
	SessionID string `db:"session_id" json:"-"`
	Flow      string `db:"flow" json:"flow"`
	Date      string `db:"date" json:"date"`
	Time24    string `db:"time24" json:"time24"`
	Duration  int    `db:"duration" json:"duration"`
	CreatedAt string `db:"created_at" json:"createdAt"`
}

// Slot is one bookable start time.
type Slot struct {
	Time24 string `json:"time24"`
	Time12 string `json:"time12"`
}

type Product struct {
	ID       string   `json:"id"`
	Category string   `json:"category"` // module | package
	Name     string   `json:"name"`
	Summary  string   `json:"summary"`
	Price    float64  `json:"price"`
	Period   string   `json:"period,omitempty"` // month | one-time
	Features []string `json:"features,omitempty"`
	Badge    string   `json:"badge,omitempty"`
}

type Profile struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Company   string `json:"company,omitempty"`
	Phone     string `json:"phone,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

type ShippingAddress struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// PaymentMethod is a saved, display-only method. Card numbers are never stored.
type PaymentMethod struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"` // card | paypal | crypto | billing
	Label   string `json:"label"`
	Last4   string `json:"last4,omitempty"`
	Default bool   `json:"default,omitempty"`
}
