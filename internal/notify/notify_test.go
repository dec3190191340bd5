package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResendMailerSend(t *testing.T) {
	var got resendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/emails", r.URL.Path)
		require.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":"email_123"}`))
	}))
	defer srv.Close()

	m := NewResendMailer("re_test", "Gasper <noreply@gasper.app>", srv.URL)
	id, err := m.Send(context.Background(), Message{To: "team@gasper.app", Subject: "hi", HTML: "<p>hi</p>", Tag: "waitlist"})
	require.NoError(t, err)
	require.Equal(t, "email_123", id)
	require.Equal(t, []string{"team@gasper.app"}, got.To)
	require.Equal(t, "waitlist", got.Tags[0].Value)
}

func TestResendMailerProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"name":"validation_error","message":"domain not verified"}`))
	}))
	defer srv.Close()

	_, err := NewResendMailer("re_test", "x@y.io", srv.URL).Send(context.Background(), Message{To: "a@b.io"})
	require.ErrorContains(t, err, "domain not verified")
}

func TestNewMailerSelection(t *testing.T) {
	_, err := NewMailer(EmailConfig{Provider: "resend"})
	require.ErrorIs(t, err, ErrNotConfigured)
	_, err = NewMailer(EmailConfig{Provider: "sendgrid"})
	require.ErrorIs(t, err, ErrNotConfigured)
	_, err = NewMailer(EmailConfig{Provider: "pigeon", ResendAPIKey: "k"})
	require.Error(t, err)

	m, err := NewMailer(EmailConfig{Provider: "sendgrid", SendGridAPIKey: "SG.x", From: "Gasper <a@b.io>"})
	require.NoError(t, err)
	sg := m.(*SendGridMailer)
	require.Equal(t, "a@b.io", sg.fromEmail)
	require.Equal(t, "Gasper", sg.fromName)
}

func TestRelayClient(t *testing.T) {
	var subject, email string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		subject = r.PostForm.Get("_subject")
		email = r.PostForm.Get("email")
	}))
	defer srv.Close()

	require.NoError(t, NewRelayClient(srv.URL).Notify(context.Background(), "Email changed", map[string]string{"email": "new@acme.io"}))
	require.Equal(t, "Email changed", subject)
	require.Equal(t, "new@acme.io", email)

	var nilRelay *RelayClient
	require.NoError(t, nilRelay.Notify(context.Background(), "x", nil))
	require.Nil(t, NewRelayClient(""))
}
