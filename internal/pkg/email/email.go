package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/leave-backend-go/internal/config"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// EmailService defines the interface for sending emails
type EmailService interface {
	SendInvitation(to, invitationLink string, expiresAt time.Time) error
}

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
	send      func(m *gomail.Message) error
	backoff   func(attempt int) time.Duration
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)

	return &emailServiceImpl{
		cfg:       cfg,
		templates: tmpl,
		send: func(m *gomail.Message) error {
			return dialer.DialAndSend(m)
		},
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<(attempt-1)) * time.Second
		},
	}, nil
}

type invitationEmailData struct {
	Email          string
	InvitationLink string
	ExpiresAt      string
}

// SendInvitation sends the registration link to an invited candidate
func (s *emailServiceImpl) SendInvitation(to, invitationLink string, expiresAt time.Time) error {
	data := invitationEmailData{
		Email:          to,
		InvitationLink: invitationLink,
		ExpiresAt:      expiresAt.UTC().Format("02 Jan 2006 15:04 MST"),
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "invitation.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendHTML(to, "Invitation to join Leave Management", body.String())
}

func (s *emailServiceImpl) compose(to, subject, htmlBody string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.From, s.cfg.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)
	return m
}

func (s *emailServiceImpl) sendHTML(to, subject, htmlBody string) error {
	// Skip sending if SMTP is not configured
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	m := s.compose(to, subject, htmlBody)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.send(m)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		if attempt < maxRetries {
			time.Sleep(s.backoff(attempt))
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
