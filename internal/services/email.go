package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventboard/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// templateForKind maps a notification kind to its template base name.
var templateForKind = map[domain.NotificationKind]string{
	domain.KindEventCreated:     "event_created",
	domain.KindEventUpdated:     "event_updated",
	domain.KindEventCancelled:   "event_cancelled",
	domain.KindMemberConfirmed:  "member_confirmed",
	domain.KindMemberCancelled:  "member_cancelled",
	domain.KindEventReminder24h: "event_reminder_24h",
	domain.KindEventReview:      "event_review",
}

// SendEventNotification renders the template for the kind and sends it.
func (s *emailService) SendEventNotification(ctx context.Context, kind domain.NotificationKind, data *domain.EventEmailData) error {
	if data == nil {
		return fmt.Errorf("event email data is nil")
	}
	name, ok := templateForKind[kind]
	if !ok {
		return fmt.Errorf("no email template for notification kind %q", kind)
	}
	subject, htmlBody, textBody, err := s.renderer.Render(name, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", name, err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", name, err)
	}
	s.logger.Info("event email sent", "kind", string(kind), "to", data.Email)
	return nil
}
