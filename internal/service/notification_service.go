package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hirelane/recruitment-service/internal/events"
	"github.com/hirelane/recruitment-service/internal/mail"
	"github.com/hirelane/recruitment-service/internal/observability"
)

// NotificationService turns domain events into emails.
type NotificationService struct {
	dispatcher events.Dispatcher
	mailer     mail.Mailer
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, mailer mail.Mailer, metrics *observability.Metrics, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		mailer:     mailer,
		metrics:    metrics,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil || n.mailer == nil {
		return
	}
	for _, t := range []events.EventType{
		events.EventUserRegistered,
		events.EventUserVerified,
		events.EventPasswordResetRequested,
		events.EventPasswordChanged,
		events.EventApplicationSubmitted,
	} {
		n.dispatcher.Subscribe(t, n.handle)
	}
}

func (n *NotificationService) handle(ctx context.Context, event events.Event) error {
	msg, ok := renderMessage(event)
	if !ok {
		n.metrics.RecordNotification(string(event.Type), "skipped")
		return nil
	}
	if err := n.mailer.Send(ctx, msg); err != nil {
		n.metrics.RecordNotification(string(event.Type), "failed")
		n.logger.Error("send notification", zap.String("event_type", string(event.Type)), zap.String("event_id", event.ID), zap.Error(err))
		return err
	}
	n.metrics.RecordNotification(string(event.Type), "sent")
	return nil
}

func greeting(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return "Hello " + name + ","
	}
	return "Hello,"
}

// renderMessage builds the email for event. ok is false when the event carries no recipient.
func renderMessage(event events.Event) (mail.Message, bool) {
	var msg mail.Message
	switch p := event.Payload.(type) {
	case events.UserRegisteredPayload:
		msg = mail.Message{
			To:      p.Email,
			Subject: "Activate your account",
			Body: fmt.Sprintf("%s\n\nPlease confirm your email address by opening the link below:\n\n%s\n",
				greeting(p.FullName), p.VerifyLink),
		}
	case events.UserVerifiedPayload:
		msg = mail.Message{
			To:      p.Email,
			Subject: "Your account is active",
			Body:    "Your email address has been confirmed. You can now sign in.\n",
		}
	case events.PasswordResetRequestedPayload:
		msg = mail.Message{
			To:      p.Email,
			Subject: "Password reset",
			Body: fmt.Sprintf("%s\n\nYou're receiving this email because a password reset was requested for your account.\n"+
				"Open the link below to choose a new password:\n\n%s\n\nIf you did not request this, you can ignore this email.\n",
				greeting(p.FullName), p.ResetLink),
		}
	case events.PasswordChangedPayload:
		msg = mail.Message{
			To:      p.Email,
			Subject: "Your password was changed",
			Body:    "The password for your account was just changed. If this wasn't you, reset it immediately.\n",
		}
	case events.ApplicationSubmittedPayload:
		msg = mail.Message{
			To:      p.Email,
			Subject: "We received your application",
			Body: fmt.Sprintf("%s\n\nThank you for applying. Your application reference is %s.\n",
				greeting(p.FullName), p.ApplicationID),
		}
	default:
		return mail.Message{}, false
	}
	if strings.TrimSpace(msg.To) == "" {
		return mail.Message{}, false
	}
	return msg, true
}
