package email

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"time"

	"github.com/resend/resend-go/v2"
)

// ErrDisabled is returned by senders that have no delivery backend configured.
var ErrDisabled = errors.New("email delivery is not configured")

type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender logs emails instead of sending them. Used in ENV=local.
type LogSender struct {
	logger *slog.Logger
}

func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	s.logger.InfoContext(ctx, "verification email (local dev)", "to", to, "subject", subject, "body", body)
	return nil
}

// DisabledSender is used outside local when no Resend key is set. Startup
// still succeeds; every send reports ErrDisabled.
type DisabledSender struct{}

func (DisabledSender) Send(context.Context, string, string, string) error {
	return ErrDisabled
}

// ResendSender sends emails via the Resend API. Used in staging and production.
type ResendSender struct {
	client *resend.Client
	from   string
}

func (s *ResendSender) Send(ctx context.Context, to, subject, body string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}
	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// NewSender returns a LogSender for ENV=local, a ResendSender when an API key
// and sender address are configured, and a DisabledSender otherwise.
func NewSender(env, apiKey, from string, logger *slog.Logger) Sender {
	if env == "local" {
		return &LogSender{logger: logger.With("component", "email")}
	}
	if apiKey == "" || from == "" {
		logger.Warn("email delivery disabled: RESEND_API_KEY or RESEND_FROM not set")
		return DisabledSender{}
	}
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// VerificationEmail renders the subject and HTML body for the account
// verification link. ttl is the token lifetime shown to the reader.
func VerificationEmail(displayName, verifyURL string, ttl time.Duration) (subject, body string) {
	greeting := "Hi"
	if displayName != "" {
		greeting = "Hi, " + html.EscapeString(displayName)
	}
	link := html.EscapeString(verifyURL)
	body = fmt.Sprintf(
		`<div style="font-family:Arial,sans-serif;line-height:1.5">`+
			`<h2>%s</h2>`+
			`<p>Confirm your email to activate your account (the link expires in %s):</p>`+
			`<p><a href="%s">Verify account</a></p>`+
			`<p style="color:#6b7280;font-size:12px">If you did not sign up, ignore this email.</p>`+
			`</div>`,
		greeting, humanDuration(ttl), link,
	)
	return "Verify your account", body
}

// humanDuration renders whole hours or minutes, e.g. "1 hour", "90 minutes".
func humanDuration(d time.Duration) string {
	unit, n := "minute", int64(d/time.Minute)
	if d >= time.Hour && d%time.Hour == 0 {
		unit, n = "hour", int64(d/time.Hour)
	}
	if n < 1 {
		unit, n = "minute", 1
	}
	if n != 1 {
		unit += "s"
	}
	return strconv.FormatInt(n, 10) + " " + unit
}

// Ready reports ErrDisabled when s cannot deliver mail. Used by readiness probes.
func Ready(s Sender) error {
	if _, off := s.(DisabledSender); off {
		return ErrDisabled
	}
	return nil
}
