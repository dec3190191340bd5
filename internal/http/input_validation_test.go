package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// reject malformed inputs early
func TestValidationBadInputs(t *testing.T) {
	app, _ := newTestApp(t, testConfig(), nil)

	// availability with a malformed date
	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/availability?flow=call&date=14-10-2026", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad date expected 400, got %d", resp.StatusCode)
	}

	// availability on a weekend
	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/availability?flow=call&date=2030-01-05", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("weekend expected 400, got %d", resp.StatusCode)
	}

	// search with invalid chars
	resp, err = app.Test(httptest.NewRequest("GET", "/search?q=%3Cscript%3E", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad search expected 400, got %d", resp.StatusCode)
	}

	// order with a 12-digit card number
	s := newSession(t, app)
	if r := s.form("/cart", "productId=route-optimizer&qty=1"); r.StatusCode != http.StatusFound {
		t.Fatalf("cart add expected redirect, got %d", r.StatusCode)
	}
	respOrder := s.form("/orders", "payment_method=card&name=Alice&email=alice@gasper.test"+
		"&card_name=Alice&card_number=4111+1111+1111&card_expiry=12%2F30&card_cvv=123")
	body, _ := io.ReadAll(respOrder.Body)
	if respOrder.StatusCode != http.StatusBadRequest {
		t.Fatalf("short card expected 400, got %d body=%s", respOrder.StatusCode, body)
	}
	if !strings.Contains(string(body), `data-field="card_number"`) {
		t.Fatalf("invalid field not reported; body=%s", body)
	}
	if strings.Contains(string(body), "4111") {
		t.Fatalf("card number echoed back")
	}
}

// templates auto-escape untrusted text
func TestTemplateAutoEscape(t *testing.T) {
	app, _ := newTestApp(t, testConfig(), nil)
	s := newSession(t, app)

	resp := s.form("/orders", "payment_method=paypal&name=%3Cscript%3Ealert(1)%3C%2Fscript%3E&email=nope")
	body, _ := io.ReadAll(resp.Body)
	out := string(body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if strings.Contains(out, "<script>alert(1)</script>") {
		t.Fatalf("found unescaped script tag in output")
	}
	if !strings.Contains(out, "&lt;script&gt;alert(1)&lt;/script&gt;") {
		t.Fatalf("escaped script not found; output=%s", out)
	}
}

func TestCheckoutValidateAPI(t *testing.T) {
	app, _ := newTestApp(t, testConfig(), nil)
	s := newSession(t, app)

	ok := s.json("POST", "/api/v1/checkout/validate", map[string]any{
		"method": "card",
		"fields": map[string]string{
			"name": "Ada", "email": "ada@example.com", "card_name": "Ada",
			"card_number": "4111 1111 1111 1", "card_expiry": "12/39", "card_cvv": "123",
		},
	})
	if ok.StatusCode != http.StatusOK {
		t.Fatalf("13-digit card expected 200, got %d", ok.StatusCode)
	}

	bad := s.json("POST", "/api/v1/checkout/validate", map[string]any{
		"method": "crypto",
		"fields": map[string]string{"name": "Ada", "email": "ada@example.com", "crypto_currency": "DOGE"},
	})
	var res struct {
		Valid bool   `json:"valid"`
		Field string `json:"field"`
	}
	decode(t, bad, &res)
	if bad.StatusCode != http.StatusUnprocessableEntity || res.Valid || res.Field != "crypto_currency" {
		t.Fatalf("unexpected result %d %+v", bad.StatusCode, res)
	}
}
