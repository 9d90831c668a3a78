package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hirelane/recruitment-service/internal/events"
	"github.com/hirelane/recruitment-service/internal/mail"
	"github.com/hirelane/recruitment-service/internal/service"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	fail bool
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func TestMailQueueDeliversOnStop(t *testing.T) {
	inner := &recordingMailer{}
	q := NewMailQueue(inner, 3, 10, nil)
	q.Start(context.Background())

	for i := 0; i < 10; i++ {
		require.NoError(t, q.Send(context.Background(), mail.Message{To: "a@example.com", Subject: "hi"}))
	}
	q.Stop()
	assert.Equal(t, 10, inner.count())
	assert.ErrorIs(t, q.Send(context.Background(), mail.Message{To: "a@example.com"}), ErrQueueClosed)
	q.Stop()
}

func TestMailQueueFull(t *testing.T) {
	q := NewMailQueue(&recordingMailer{}, 1, 1, nil)
	require.NoError(t, q.Send(context.Background(), mail.Message{To: "a@example.com"}))
	assert.ErrorIs(t, q.Send(context.Background(), mail.Message{To: "b@example.com"}), ErrQueueFull)
	q.Stop()
}

func TestMailQueueLogsFailures(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	q := NewMailQueue(&recordingMailer{fail: true}, 1, 4, zap.New(core))
	q.Start(context.Background())
	require.NoError(t, q.Send(context.Background(), mail.Message{To: "a@example.com", Subject: "Password reset"}))
	q.Stop()

	entries := logs.FilterMessage("mail delivery failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Password reset", entries[0].ContextMap()["subject"])
}

func TestStartNotificationWorker(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	inner := &recordingMailer{}
	q := NewMailQueue(inner, 2, 8, nil)
	svc := service.NewNotificationService(dispatcher, q, nil, nil)

	StartNotificationWorker(context.Background(), svc, q)
	require.NoError(t, dispatcher.Publish(context.Background(), events.New(events.EventUserVerified, nil, events.UserVerifiedPayload{Email: "ana@example.com"})))
	q.Stop()

	require.Equal(t, 1, inner.count())
	assert.Equal(t, "Your account is active", inner.sent[0].Subject)
}
