package handlers_test

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"gasper/internal/domain"
	"gasper/internal/repos"
)

type accessLogEntry struct {
	Action string                 `json:"action"`
	Fields map[string]interface{} `json:"fields"`
}

type lockedBuf struct {
	b  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureAccessLogs(t *testing.T, fn func()) []accessLogEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedBuf{b: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []accessLogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e accessLogEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

// access control denials are logged
func TestAccessDeniedLogs(t *testing.T) {
	app, db := newTestApp(t, testConfig(), nil)
	ordRepo := repos.NewOrderRepo(db)

	// Prepare order owned by sid-owner
	if err := ordRepo.Create(repos.OrderRow{
		ID: "oid-1", SessionID: "sid-owner", PaymentMethod: "card",
		Customer: "Alice", Email: "a@x.com", Subtotal: 10, Tax: 0.8, Total: 10.8,
	}, []domain.CartItem{{ID: "starter", Name: "Starter", Price: 10, Quantity: 1}}); err != nil {
		t.Fatalf("create order: %v", err)
	}

	// Owner sees it
	req := httptest.NewRequest("GET", "/order/oid-1", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "sid-owner"})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("owner expected 200, got %d", resp.StatusCode)
	}

	// Non-owner access should 404 and log access.denied.order
	status := 0
	entries := captureAccessLogs(t, func() {
		req := httptest.NewRequest("GET", "/order/oid-1", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: "sid-other"})
		resp, err := app.Test(req)
		if err == nil {
			status = resp.StatusCode
		}
	})
	if status != http.StatusNotFound {
		t.Fatalf("non-owner expected 404, got %d", status)
	}
	foundOrder := false
	for _, e := range entries {
		if e.Action == "access.denied.order" {
			foundOrder = true
			break
		}
	}
	if !foundOrder {
		t.Fatalf("expected access.denied.order log")
	}
}

// cart and booking mutations leave an audit trail with the session id
func TestAuditLogsCarrySession(t *testing.T) {
	app, _ := newTestApp(t, testConfig(), nil)
	s := newSession(t, app)

	var found *auditEntry
	lines := captureRaw(t, func() {
		s.json("POST", "/api/v1/cart/items", map[string]any{"productId": "fleet-tracker", "quantity": 2})
	})
	for i := range lines {
		if lines[i].Action == "cart.add" {
			found = &lines[i]
		}
	}
	if found == nil {
		t.Fatalf("expected cart.add audit log")
	}
	if found.Level != "audit" || found.Session != s.sid {
		t.Fatalf("unexpected audit entry %+v", *found)
	}
}

type auditEntry struct {
	Level   string `json:"level"`
	Action  string `json:"action"`
	Session string `json:"sid"`
}

func captureRaw(t *testing.T, fn func()) []auditEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	log.SetOutput(&lockedBuf{b: &buf, mu: &mu})
	defer log.SetOutput(oldW)

	fn()

	var out []auditEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var e auditEntry
		if i := strings.Index(line, "{"); i >= 0 && json.Unmarshal([]byte(line[i:]), &e) == nil {
			out = append(out, e)
		}
	}
	return out
}
