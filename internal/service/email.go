package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"muds-matching-backend/internal/config"
	"muds-matching-backend/internal/logger"
)

type sendgridMailer struct {
	client     *sendgrid.Client
	from       *mail.Email
	adminEmail string
}

// NewSendgridMailer builds the admin alert mailer. Alerts are plain-text
// operational notices (matches made, sync failures), not student-facing.
func NewSendgridMailer(cfg config.EmailConfig) AdminMailer {
	return &sendgridMailer{
		client:     sendgrid.NewSendClient(cfg.APIKey),
		from:       mail.NewEmail(cfg.FromName, cfg.From),
		adminEmail: cfg.AdminEmail,
	}
}

func (m *sendgridMailer) SendAdminAlert(ctx context.Context, subject, body string) error {
	logger.ExternalServiceCall("sendgrid", "SendAdminAlert", "subject", subject)

	to := mail.NewEmail("", m.adminEmail)
	message := mail.NewSingleEmail(m.from, subject, to, body, "")
	resp, err := m.client.SendWithContext(ctx, message)
	if err == nil && resp.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}
	logger.ExternalServiceResult("sendgrid", "SendAdminAlert", err)
	return err
}

// noopMailer is used when email is disabled in config.
type noopMailer struct{}

func NewNoopMailer() AdminMailer { return noopMailer{} }

func (noopMailer) SendAdminAlert(context.Context, string, string) error { return nil }
