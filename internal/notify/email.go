package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

var ErrNotConfigured = errors.New("notify: email provider not configured")

// Mailer sends one transactional e-mail and returns the provider's message id.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
	Tag     string
}

// EmailConfig mirrors config.EmailConfig so this package stays free of app config.
type EmailConfig struct {
	Provider       string
	ResendAPIKey   string
	ResendBaseURL  string
	SendGridAPIKey string
	From           string
}

// NewMailer picks the provider; it returns ErrNotConfigured when the key is missing.
func NewMailer(cfg EmailConfig) (Mailer, error) {
	switch cfg.Provider {
	case "sendgrid":
		if cfg.SendGridAPIKey == "" {
			return nil, ErrNotConfigured
		}
		return NewSendGridMailer(cfg.SendGridAPIKey, cfg.From), nil
	case "resend", "":
		if cfg.ResendAPIKey == "" {
			return nil, ErrNotConfigured
		}
		return NewResendMailer(cfg.ResendAPIKey, cfg.From, cfg.ResendBaseURL), nil
	default:
		return nil, fmt.Errorf("notify: unknown email provider %q", cfg.Provider)
	}
}

type SendGridMailer struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewSendGridMailer(apiKey, from string) *SendGridMailer {
	name, addr := splitFrom(from)
	return &SendGridMailer{client: sendgrid.NewSendClient(apiKey), fromEmail: addr, fromName: name}
}

func (s *SendGridMailer) Send(ctx context.Context, msg Message) (string, error) {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)
	text := msg.Text
	if text == "" {
		text = msg.Subject
	}
	m := mail.NewSingleEmail(from, msg.Subject, to, text, msg.HTML)
	if msg.Tag != "" {
		m.AddCategories(msg.Tag)
	}

	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return "", fmt.Errorf("notify: sendgrid send failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("notify: sendgrid returned status %d", resp.StatusCode)
	}
	if ids := resp.Headers["X-Message-Id"]; len(ids) > 0 && ids[0] != "" {
		return ids[0], nil
	}
	return "", errors.New("notify: sendgrid response had no message id")
}
