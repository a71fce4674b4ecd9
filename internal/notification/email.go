package notification

import (
	"context"
	"strings"

	"skill-staffing/internal/domain/user"
	"skill-staffing/internal/infrastructure/email"
)

type Mailer interface {
	Enabled() bool
	Send(ctx context.Context, msg email.Message) error
}

// Email mails the recipient; it is skipped when no mailer is configured.
type Email struct {
	mailer  Mailer
	users   func() user.Repository
	baseURL string
}

func NewEmail(mailer Mailer, users func() user.Repository, publicBaseURL string) *Email {
	return &Email{
		mailer:  mailer,
		users:   users,
		baseURL: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
	}
}

func (e *Email) Name() string { return "email" }

func (e *Email) Deliver(ctx context.Context, n Notification) error {
	if e.mailer == nil || !e.mailer.Enabled() {
		return nil
	}
	u, err := e.users().GetByID(ctx, n.RecipientID)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(n.Message)
	if n.Link != "" {
		b.WriteString("\n\n")
		b.WriteString(e.baseURL)
		b.WriteString(n.Link)
	}

	return e.mailer.Send(ctx, email.Message{
		To:      email.Address{Email: u.Email, Name: u.FullName},
		Subject: n.Title,
		Text:    b.String(),
	})
}
