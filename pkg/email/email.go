// Package email sends transactional email through Resend.
//
// Two kinds of mail leave the system: password reset links and approval
// notifications ("your leave was approved", "a request awaits you").
// Deliveries run behind a circuit breaker so a Resend outage does not add
// a timeout to every approval request.
package email

import (
	"context"
	"fmt"
	"html"

	"github.com/resend/resend-go/v3"

	"github.com/akinalp/workdesk/pkg/breaker"
)

// Message is a rendered notification email.
type Message struct {
	Subject string
	Title   string
	Body    string
	// Link is a path inside the app ("/leaves/abc"); the sender prefixes the app URL.
	Link string
}

// Sender is what services depend on.
type Sender interface {
	SendPasswordReset(ctx context.Context, toEmail, token string) error
	SendNotification(ctx context.Context, toEmail string, msg Message) error
}

type resendSender struct {
	client    *resend.Client
	fromEmail string
	appURL    string
	cb        breaker.Breaker
}

// NewResendSender creates a Sender. fromEmail must be a verified Resend sender.
func NewResendSender(apiKey, fromEmail, appURL string) Sender {
	return &resendSender{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		appURL:    appURL,
		cb:        breaker.Default("email"),
	}
}

func (s *resendSender) SendPasswordReset(ctx context.Context, toEmail, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.appURL, token)
	body := renderLayout(
		"Password Reset Request",
		"We received a request to reset your workdesk password. The link expires in 20 minutes. "+
			"If you did not ask for this you can ignore this email.",
		link, "Reset Password",
	)
	return s.send(ctx, toEmail, "Reset your password", body)
}

func (s *resendSender) SendNotification(ctx context.Context, toEmail string, msg Message) error {
	link := ""
	if msg.Link != "" {
		link = s.appURL + msg.Link
	}
	body := renderLayout(msg.Title, msg.Body, link, "Open workdesk")
	return s.send(ctx, toEmail, msg.Subject, body)
}

func (s *resendSender) send(ctx context.Context, to, subject, htmlBody string) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("workdesk <%s>", s.fromEmail),
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
	}

	_, err := s.cb.Execute(func() (interface{}, error) {
		return s.client.Emails.SendWithContext(ctx, params)
	})
	if err != nil {
		return fmt.Errorf("failed to send email %q: %w", subject, err)
	}
	return nil
}

// renderLayout wraps a title, paragraph and optional button in the mail template.
func renderLayout(title, text, link, button string) string {
	action := ""
	if link != "" {
		action = fmt.Sprintf(`
              <table cellpadding="0" cellspacing="0" style="margin:0 0 24px 0;">
                <tr>
                  <td style="background-color:#2563eb;border-radius:6px;padding:12px 32px;">
                    <a href="%s" style="color:#ffffff;text-decoration:none;font-size:15px;font-weight:600;">%s</a>
                  </td>
                </tr>
              </table>`, html.EscapeString(link), html.EscapeString(button))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin:0;padding:0;background-color:#f1f5f9;font-family:Arial,Helvetica,sans-serif;">
  <table width="100%%" cellpadding="0" cellspacing="0" style="background-color:#f1f5f9;padding:40px 0;">
    <tr>
      <td align="center">
        <table width="480" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:8px;padding:40px;">
          <tr>
            <td>
              <h1 style="color:#0f172a;font-size:22px;margin:0 0 8px 0;">workdesk</h1>
              <h2 style="color:#0f172a;font-size:18px;margin:0 0 24px 0;">%s</h2>
              <p style="color:#334155;font-size:15px;line-height:1.6;margin:0 0 24px 0;">%s</p>%s
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`, html.EscapeString(title), html.EscapeString(text), action)
}
