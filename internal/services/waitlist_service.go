package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/google/uuid"

	applog "gasper/internal/log"
	"gasper/internal/metrics"
	"gasper/internal/notify"
	"gasper/internal/repos"
	"gasper/internal/validate"
)

var ErrInvalidSignup = errors.New("email, role and company size are required")

type WaitlistSignup struct {
	Email       string `json:"email"`
	Role        string `json:"role"`
	CompanySize string `json:"companySize"`
}

// WaitlistService mails a confirmation to each signup and records it.
type WaitlistService struct {
	Mailer   notify.Mailer // nil when no provider is configured
	Repo     *repos.WaitlistRepo
	Metrics  *metrics.SiteMetrics
	NotifyTo string
	Fallback string
}

func NewWaitlistService(m notify.Mailer, repo *repos.WaitlistRepo, sm *metrics.SiteMetrics, notifyTo, fallback string) *WaitlistService {
	return &WaitlistService{Mailer: m, Repo: repo, Metrics: sm, NotifyTo: notifyTo, Fallback: fallback}
}

// FallbackMessage is shown whenever the signup could not be mailed.
func (s *WaitlistService) FallbackMessage() string {
	return fmt.Sprintf("We couldn't add you to the waitlist right now. Please contact us at %s.", s.Fallback)
}

// Join validates the signup, sends the confirmation and returns the provider message id.
func (s *WaitlistService) Join(ctx context.Context, in WaitlistSignup) (string, error) {
	in.Role = strings.TrimSpace(in.Role)
	in.CompanySize = strings.TrimSpace(in.CompanySize)
	email, ok := validate.Email(in.Email)
	if !ok || in.Role == "" || in.CompanySize == "" {
		s.Metrics.Waitlist("invalid")
		return "", ErrInvalidSignup
	}
	in.Email = email

	if s.Mailer == nil {
		s.Metrics.Waitlist("unconfigured")
		return "", notify.ErrNotConfigured
	}

	id, err := s.Mailer.Send(ctx, notify.Message{
		To:      in.Email,
		Subject: "You're on the Gasper waitlist",
		Text:    "Thanks for joining the Gasper waitlist. We'll be in touch as soon as early access opens.",
		HTML: fmt.Sprintf(`<p>Thanks for joining the Gasper waitlist.</p>
<p>Role: %s<br>Company size: %s</p>
<p>We'll be in touch as soon as early access opens.</p>`,
			html.EscapeString(in.Role), html.EscapeString(in.CompanySize)),
		Tag: "waitlist",
	})
	if err != nil {
		s.Metrics.Waitlist("provider_error")
		return "", err
	}

	if s.NotifyTo != "" {
		if _, err := s.Mailer.Send(ctx, notify.Message{
			To:      s.NotifyTo,
			Subject: "New waitlist signup",
			Text:    fmt.Sprintf("%s (%s, %s)", in.Email, in.Role, in.CompanySize),
			Tag:     "waitlist-internal",
		}); err != nil {
			applog.Error(nil, "waitlist.team_notice_failed", err, nil)
		}
	}

	if err := s.Repo.Insert(repos.WaitlistEntry{
		ID:          uuid.NewString(),
		Email:       in.Email,
		Role:        in.Role,
		CompanySize: in.CompanySize,
		ProviderID:  id,
	}); err != nil {
		applog.Error(nil, "waitlist.record_failed", err, map[string]any{"provider_id": id})
	}
	s.Metrics.Waitlist("joined")
	return id, nil
}
