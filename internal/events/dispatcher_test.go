package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishRunsAllHandlersAndJoinsErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("smtp down")

	var calls []string
	d.Subscribe(EventUserRegistered, func(ctx context.Context, e Event) error {
		calls = append(calls, "first")
		return boom
	})
	d.Subscribe(EventUserRegistered, func(ctx context.Context, e Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventUserVerified, func(ctx context.Context, e Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), New(EventUserRegistered, nil, UserRegisteredPayload{Email: "a@b.c"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), New(EventPasswordChanged, nil, nil)))
}

func TestNewStampsEvent(t *testing.T) {
	uid := "user-1"
	e := New(EventApplicationSubmitted, &uid, ApplicationSubmittedPayload{ApplicationID: "app-1"})
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())
	assert.Equal(t, "user-1", *e.UserID)
	assert.Equal(t, "app-1", e.Payload.(ApplicationSubmittedPayload).ApplicationID)
}
