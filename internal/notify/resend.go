package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ResendMailer talks to the Resend REST API.
type ResendMailer struct {
	apiKey  string
	from    string
	baseURL string
	client  *http.Client
}

func NewResendMailer(apiKey, from, baseURL string) *ResendMailer {
	if baseURL == "" {
		baseURL = "https://api.resend.com"
	}
	return &ResendMailer{
		apiKey:  apiKey,
		from:    from,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type resendTag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type resendRequest struct {
	From    string      `json:"from"`
	To      []string    `json:"to"`
	Subject string      `json:"subject"`
	HTML    string      `json:"html,omitempty"`
	Text    string      `json:"text,omitempty"`
	Tags    []resendTag `json:"tags,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

type resendError struct {
	Message string `json:"message"`
	Name    string `json:"name"`
}

func (s *ResendMailer) Send(ctx context.Context, msg Message) (string, error) {
	body := resendRequest{From: s.from, To: []string{msg.To}, Subject: msg.Subject, HTML: msg.HTML, Text: msg.Text}
	if msg.Tag != "" {
		body.Tags = []resendTag{{Name: "category", Value: msg.Tag}}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("notify: marshal resend request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("notify: build resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("notify: resend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var e resendError
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Message == "" {
			return "", fmt.Errorf("notify: resend returned status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("notify: resend: %s", e.Message)
	}

	var out resendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("notify: decode resend response: %w", err)
	}
	if out.ID == "" {
		return "", errors.New("notify: resend response had no id")
	}
	return out.ID, nil
}

// splitFrom turns "Name <addr>" into its parts.
func splitFrom(from string) (name, addr string) {
	from = strings.TrimSpace(from)
	i := strings.LastIndex(from, "<")
	j := strings.LastIndex(from, ">")
	if i < 0 || j < i {
		return "", from
	}
	return strings.TrimSpace(from[:i]), strings.TrimSpace(from[i+1 : j])
}
