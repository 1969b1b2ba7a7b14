package notifications

import (
	"context"
	"errors"
	"testing"

	circuit "github.com/rubyist/circuitbreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmailService struct {
	calls int
	err   error
}

func (s *countingEmailService) Send(ctx context.Context, email Email) error {
	s.calls++
	return s.err
}

func TestBreakerEmailServiceTrips(t *testing.T) {
	relay := &countingEmailService{err: errors.New("421 service not available")}
	svc := NewBreakerEmailService(relay, 3, 0)
	email := Email{To: "ana@example.com", Subject: "Your share"}

	for i := 0; i < 3; i++ {
		assert.Error(t, svc.Send(context.Background(), email))
	}
	require.True(t, svc.Tripped())

	err := svc.Send(context.Background(), email)
	assert.ErrorIs(t, err, circuit.ErrBreakerOpen)
	assert.Equal(t, 3, relay.calls)
}

func TestBreakerEmailServicePassesThrough(t *testing.T) {
	relay := &countingEmailService{}
	svc := NewBreakerEmailService(relay, 3, 0)

	require.NoError(t, svc.Send(context.Background(), Email{To: "ana@example.com"}))
	assert.Equal(t, 1, relay.calls)
	assert.False(t, svc.Tripped())
}
