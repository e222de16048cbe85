package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// EventEmailData holds data for event notification emails. Fields not used
// by a given template are left empty.
type EventEmailData struct {
	Email         string
	EventName     string
	EventDate     string
	EventTime     string
	EventLocation string
	MemberName    string
	MembersCount  int
	EventURL      string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendEventNotification(ctx context.Context, kind NotificationKind, data *EventEmailData) error
}
