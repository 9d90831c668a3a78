package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirelane/recruitment-service/internal/events"
	"github.com/hirelane/recruitment-service/internal/mail"
	"github.com/hirelane/recruitment-service/internal/observability"
)

type captureMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *captureMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func TestNotificationsSendEmails(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	mailer := &captureMailer{}
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	NewNotificationService(dispatcher, mailer, metrics, nil).RegisterHandlers()
	ctx := context.Background()

	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventUserRegistered, nil, events.UserRegisteredPayload{
		Email: "ana@example.com", FullName: "Ana Perez", VerifyLink: "https://jobs.example.com/accounts/register/verify/abc/tok",
	})))
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventPasswordResetRequested, nil, events.PasswordResetRequestedPayload{
		Email: "ana@example.com", ResetLink: "https://jobs.example.com/accounts/password/reset/confirm/abc/tok",
	})))
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventApplicationSubmitted, nil, events.ApplicationSubmittedPayload{
		ApplicationID: "app-1",
	})))

	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "Activate your account", mailer.sent[0].Subject)
	assert.Contains(t, mailer.sent[0].Body, "Hello Ana Perez,")
	assert.Contains(t, mailer.sent[0].Body, "/accounts/register/verify/abc/tok")
	assert.Contains(t, mailer.sent[1].Body, "Hello,")
	assert.Contains(t, mailer.sent[1].Body, "/accounts/password/reset/confirm/abc/tok")

	series, err := testutil.GatherAndCount(reg, "recruitment_notifications_total")
	require.NoError(t, err)
	assert.Equal(t, 3, series)
}

func TestNotificationFailureIsReported(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	mailer := &captureMailer{err: errors.New("smtp down")}
	NewNotificationService(dispatcher, mailer, nil, nil).RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.New(events.EventPasswordChanged, nil, events.PasswordChangedPayload{Email: "ana@example.com"}))
	assert.ErrorContains(t, err, "smtp down")
}
