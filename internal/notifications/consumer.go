package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"organizer/pkg/logger"

	"github.com/IBM/sarama"
)

type SplitConsumer interface {
	StartConsumers(ctx context.Context, numWorkers int) error
	Stop() error
	HealthCheck(ctx context.Context) error
}

type ConsumerConfig struct {
	Brokers              []string
	GroupID              string
	Topics               []string
	SessionTimeoutMs     int
	HeartbeatMs          int
	RetryBackoffMs       int
	MaxProcessingTime    time.Duration
	OffsetOldest         bool
	MaxRetries           int
	RetryBackoffDuration time.Duration
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:              []string{"localhost:9092"},
		GroupID:              "organizer-split-notifiers",
		Topics:               []string{"booking-split-events"},
		SessionTimeoutMs:     30000,
		HeartbeatMs:          3000,
		RetryBackoffMs:       100,
		MaxProcessingTime:    5 * time.Minute,
		OffsetOldest:         false,
		MaxRetries:           3,
		RetryBackoffDuration: time.Second,
	}
}

// KafkaSplitConsumer turns split events into participant emails.
type KafkaSplitConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	emailService  EmailService
	log           *logger.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

func NewKafkaSplitConsumer(config *ConsumerConfig, emailService EmailService, log *logger.Logger) (*KafkaSplitConsumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = time.Duration(config.SessionTimeoutMs) * time.Millisecond
	saramaConfig.Consumer.Group.Heartbeat.Interval = time.Duration(config.HeartbeatMs) * time.Millisecond
	saramaConfig.Consumer.Retry.Backoff = time.Duration(config.RetryBackoffMs) * time.Millisecond
	saramaConfig.Consumer.MaxProcessingTime = config.MaxProcessingTime
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second
	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &KafkaSplitConsumer{
		consumerGroup: consumerGroup,
		config:        config,
		emailService:  emailService,
		log:           log,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func (c *KafkaSplitConsumer) StartConsumers(ctx context.Context, numWorkers int) error {
	if numWorkers < 1 {
		numWorkers = 1
	}
	c.log.Info("Starting split notification workers", slog.Int("workers", numWorkers), slog.Any("topics", c.config.Topics))

	go c.handleErrors()

	runCtx, cancel := context.WithCancel(ctx)
	go func() {
		<-c.ctx.Done()
		cancel()
	}()

	for i := 0; i < numWorkers; i++ {
		c.wg.Add(1)
		go func(workerID int) {
			defer c.wg.Done()
			c.runWorker(runCtx, workerID)
		}(i)
	}
	return nil
}

func (c *KafkaSplitConsumer) runWorker(ctx context.Context, workerID int) {
	handler := NewConsumerGroupHandler(workerID, c.emailService, c.log, c.config.MaxRetries, c.config.RetryBackoffDuration)

	for {
		if ctx.Err() != nil {
			c.log.Info("Split notification worker shutting down", slog.Int("worker", workerID))
			return
		}
		if err := c.consumerGroup.Consume(ctx, c.config.Topics, handler); err != nil {
			c.log.Error("Error consuming split events", slog.Int("worker", workerID), slog.String("error", err.Error()))
			time.Sleep(time.Second)
		}
	}
}

func (c *KafkaSplitConsumer) handleErrors() {
	for err := range c.consumerGroup.Errors() {
		c.log.Error("Consumer group error", slog.String("error", err.Error()))
	}
}

func (c *KafkaSplitConsumer) Stop() error {
	c.cancel()
	c.wg.Wait()
	if err := c.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	c.log.Info("Split notification consumer stopped")
	return nil
}

func (c *KafkaSplitConsumer) HealthCheck(ctx context.Context) error {
	select {
	case <-c.ctx.Done():
		return fmt.Errorf("consumer context is cancelled")
	default:
		if c.emailService == nil {
			return fmt.Errorf("email service not configured")
		}
		return nil
	}
}

// ConsumerGroupHandler implements sarama.ConsumerGroupHandler.
type ConsumerGroupHandler struct {
	workerID     int
	emailService EmailService
	log          *logger.Logger
	maxRetries   int
	backoff      time.Duration
}

func NewConsumerGroupHandler(workerID int, emailService EmailService, log *logger.Logger, maxRetries int, backoff time.Duration) *ConsumerGroupHandler {
	return &ConsumerGroupHandler{
		workerID:     workerID,
		emailService: emailService,
		log:          log,
		maxRetries:   maxRetries,
		backoff:      backoff,
	}
}

func (h *ConsumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	h.log.Debug("Consumer group session started", slog.Int("worker", h.workerID))
	return nil
}

func (h *ConsumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	h.log.Debug("Consumer group session ended", slog.Int("worker", h.workerID))
	return nil
}

func (h *ConsumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok || message == nil {
				return nil
			}
			if err := h.ProcessMessage(session.Context(), message); err != nil {
				h.log.Error("Error processing split event",
					slog.Int("worker", h.workerID),
					slog.Int64("offset", message.Offset),
					slog.String("error", err.Error()),
				)
				continue
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

// ProcessMessage decodes one split event and emails every reachable participant.
// Malformed payloads are dropped so they do not block the partition.
func (h *ConsumerGroupHandler) ProcessMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	event, err := ParseSplitEvent(message.Value)
	if err != nil {
		h.log.Warn("Dropping malformed split event",
			slog.Int64("offset", message.Offset),
			slog.String("error", err.Error()),
		)
		return nil
	}

	for _, email := range BuildEmails(event) {
		if err := h.sendWithRetry(ctx, email); err != nil {
			return fmt.Errorf("split %d: %w", event.SplitID, err)
		}
	}
	return nil
}

func (h *ConsumerGroupHandler) sendWithRetry(ctx context.Context, email Email) error {
	backoff := h.backoff
	var lastErr error
	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		lastErr = h.emailService.Send(ctx, email)
		if lastErr == nil {
			return nil
		}
		if attempt == h.maxRetries {
			break
		}

		h.log.Warn("Email send failed, retrying",
			slog.String("to", email.To),
			slog.Int("attempt", attempt+1),
			slog.String("error", lastErr.Error()),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
		}
	}
	return fmt.Errorf("failed after %d retries: %w", h.maxRetries, lastErr)
}
