package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogMailer(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewLogMailer("noreply@example.com", zap.New(core))

	require.NoError(t, m.Send(context.Background(), Message{To: "ana@example.com", Subject: "Hi", Body: "link"}))
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "ana@example.com", fields["to"])
	assert.Equal(t, "noreply@example.com", fields["from"])

	assert.Error(t, m.Send(context.Background(), Message{To: " "}))
}
