package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered         EventType = "user_registered"
	EventUserVerified           EventType = "user_verified"
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventPasswordChanged        EventType = "password_changed"
	EventApplicationSubmitted   EventType = "application_submitted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    *string     `json:"user_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with an id and the current time.
func New(eventType EventType, userID *string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// UserRegisteredPayload carries the activation link for a new account.
type UserRegisteredPayload struct {
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	VerifyLink string `json:"verify_link"`
}

// UserVerifiedPayload payload.
type UserVerifiedPayload struct {
	Email string `json:"email"`
}

// PasswordResetRequestedPayload carries the reset link.
type PasswordResetRequestedPayload struct {
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	ResetLink string `json:"reset_link"`
}

// PasswordChangedPayload payload.
type PasswordChangedPayload struct {
	Email  string `json:"email"`
	Source string `json:"source"`
}

// ApplicationSubmittedPayload payload.
type ApplicationSubmittedPayload struct {
	ApplicationID string `json:"application_id"`
	PersonID      string `json:"person_id"`
	Email         string `json:"email"`
	FullName      string `json:"full_name"`
	Match         string `json:"match"`
}
