package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventboard/internal/domain"
)

type fakeMailer struct {
	to      string
	subject string
	err     error
}

func (f *fakeMailer) Send(to, subject, htmlBody, textBody string) error {
	if f.err != nil {
		return f.err
	}
	f.to = to
	f.subject = subject
	return nil
}

type fakeRenderer struct {
	lastTemplate string
	err          error
}

func (f *fakeRenderer) Render(templateName string, data any) (string, string, string, error) {
	if f.err != nil {
		return "", "", "", f.err
	}
	f.lastTemplate = templateName
	return "subject " + templateName, "<p>html</p>", "text", nil
}

func TestEmailService_SendEventNotification(t *testing.T) {
	ctx := context.Background()

	t.Run("renders the template for the kind and sends", func(t *testing.T) {
		mailer := &fakeMailer{}
		renderer := &fakeRenderer{}
		svc := NewEmailService(mailer, renderer, testLogger())

		err := svc.SendEventNotification(ctx, domain.KindEventReview, &domain.EventEmailData{Email: "member@example.com"})
		require.NoError(t, err)
		assert.Equal(t, "event_review", renderer.lastTemplate)
		assert.Equal(t, "member@example.com", mailer.to)
		assert.Equal(t, "subject event_review", mailer.subject)
	})

	t.Run("nil data", func(t *testing.T) {
		svc := NewEmailService(&fakeMailer{}, &fakeRenderer{}, testLogger())
		err := svc.SendEventNotification(ctx, domain.KindEventReview, nil)
		require.Error(t, err)
	})

	t.Run("unknown kind", func(t *testing.T) {
		svc := NewEmailService(&fakeMailer{}, &fakeRenderer{}, testLogger())
		err := svc.SendEventNotification(ctx, domain.NotificationKind("mystery"), &domain.EventEmailData{})
		require.Error(t, err)
	})

	t.Run("render failure", func(t *testing.T) {
		svc := NewEmailService(&fakeMailer{}, &fakeRenderer{err: errors.New("bad template")}, testLogger())
		err := svc.SendEventNotification(ctx, domain.KindEventUpdated, &domain.EventEmailData{})
		require.Error(t, err)
	})

	t.Run("send failure", func(t *testing.T) {
		svc := NewEmailService(&fakeMailer{err: errors.New("smtp down")}, &fakeRenderer{}, testLogger())
		err := svc.SendEventNotification(ctx, domain.KindEventUpdated, &domain.EventEmailData{Email: "x@example.com"})
		require.Error(t, err)
	})
}
