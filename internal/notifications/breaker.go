package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	circuit "github.com/rubyist/circuitbreaker"
)

// BreakerEmailService fails fast once the relay has failed threshold times in
// a row, until the breaker's backoff lets a trial send through.
type BreakerEmailService struct {
	next    EmailService
	breaker *circuit.Breaker
	timeout time.Duration
}

func NewBreakerEmailService(next EmailService, threshold int64, timeout time.Duration) *BreakerEmailService {
	return &BreakerEmailService{
		next:    next,
		breaker: circuit.NewConsecutiveBreaker(threshold),
		timeout: timeout,
	}
}

func (s *BreakerEmailService) Send(ctx context.Context, email Email) error {
	err := s.breaker.Call(func() error {
		return s.next.Send(ctx, email)
	}, s.timeout)
	if errors.Is(err, circuit.ErrBreakerOpen) {
		return fmt.Errorf("email relay unavailable: %w", err)
	}
	return err
}

// Tripped reports whether sends are currently short-circuited.
func (s *BreakerEmailService) Tripped() bool {
	return s.breaker.Tripped()
}
