package notifications

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"organizer/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyEmailService struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (f *flakyEmailService) Send(ctx context.Context, email Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return errors.New("smtp unavailable")
	}
	return nil
}

func quietLogger() *logger.Logger {
	return logger.NewWithOptions(logger.Options{Level: "error", Output: io.Discard})
}

func messageFor(t *testing.T, event *SplitEvent) *sarama.ConsumerMessage {
	t.Helper()
	payload, err := event.ToJSON()
	require.NoError(t, err)
	return &sarama.ConsumerMessage{Topic: "booking-split-events", Value: payload}
}

func TestProcessMessageSendsEmails(t *testing.T) {
	emails := NewMemoryEmailService()
	handler := NewConsumerGroupHandler(0, emails, quietLogger(), 2, 0)

	err := handler.ProcessMessage(context.Background(), messageFor(t, configuredEvent()))

	require.NoError(t, err)
	sent := emails.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "ana@example.com", sent[0].To)
}

func TestProcessMessageRetriesTransientFailures(t *testing.T) {
	emails := &flakyEmailService{failures: 2}
	handler := NewConsumerGroupHandler(0, emails, quietLogger(), 2, 0)

	event := configuredEvent()
	event.Participants = event.Participants[:1]
	err := handler.ProcessMessage(context.Background(), messageFor(t, event))

	require.NoError(t, err)
	assert.Equal(t, 3, emails.calls)
}

func TestProcessMessageGivesUpAfterMaxRetries(t *testing.T) {
	emails := &flakyEmailService{failures: 10}
	handler := NewConsumerGroupHandler(0, emails, quietLogger(), 1, 0)

	err := handler.ProcessMessage(context.Background(), messageFor(t, configuredEvent()))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp unavailable")
	assert.Equal(t, 2, emails.calls)
}

func TestProcessMessageDropsMalformedPayload(t *testing.T) {
	emails := NewMemoryEmailService()
	handler := NewConsumerGroupHandler(0, emails, quietLogger(), 0, 0)

	err := handler.ProcessMessage(context.Background(), &sarama.ConsumerMessage{Value: []byte("{not json")})

	assert.NoError(t, err)
	assert.Empty(t, emails.Sent())
}
