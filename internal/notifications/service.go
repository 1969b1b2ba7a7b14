package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"organizer/internal/shared/config"
	"organizer/pkg/logger"
)

const (
	emailBreakerThreshold = 5
	emailSendTimeout      = 30 * time.Second
)

// Service owns the publisher and, when Kafka is enabled, the consumer that
// delivers split emails.
type Service struct {
	Publisher Publisher
	consumer  SplitConsumer
	workers   int
	log       *logger.Logger
}

// NewService wires notifications from configuration. With Kafka disabled
// events are only logged.
func NewService(cfg *config.Config, log *logger.Logger) (*Service, error) {
	svc := &Service{log: log, workers: cfg.Kafka.NumConsumerWorkers}

	if !cfg.Kafka.Enabled {
		svc.Publisher = NewLogPublisher(log)
		return svc, nil
	}

	producerConfig := DefaultKafkaProducerConfig()
	producerConfig.Brokers = cfg.Kafka.Brokers
	producerConfig.Topic = cfg.Kafka.SplitTopic
	publisher, err := NewKafkaPublisher(producerConfig)
	if err != nil {
		return nil, err
	}
	svc.Publisher = publisher

	emailService, err := newEmailService(cfg.Email, log)
	if err != nil {
		_ = publisher.Close()
		return nil, err
	}

	consumerConfig := DefaultConsumerConfig()
	consumerConfig.Brokers = cfg.Kafka.Brokers
	consumerConfig.GroupID = cfg.Kafka.ConsumerGroupID
	consumerConfig.Topics = []string{cfg.Kafka.SplitTopic}
	consumer, err := NewKafkaSplitConsumer(consumerConfig, emailService, log)
	if err != nil {
		_ = publisher.Close()
		return nil, err
	}
	svc.consumer = consumer

	return svc, nil
}

func newEmailService(cfg config.EmailConfig, log *logger.Logger) (EmailService, error) {
	if cfg.SMTPHost == "" {
		log.Warn("SMTP_HOST not set, split emails will only be captured in memory")
		return NewMemoryEmailService(), nil
	}
	smtpService, err := NewSMTPEmailService(&SMTPConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		FromEmail: cfg.FromEmail,
		FromName:  cfg.FromName,
		UseTLS:    cfg.SMTPPort == 587,
	})
	if err != nil {
		return nil, err
	}
	return NewBreakerEmailService(smtpService, emailBreakerThreshold, emailSendTimeout), nil
}

func (s *Service) Start(ctx context.Context) error {
	if s.consumer == nil {
		return nil
	}
	if err := s.consumer.StartConsumers(ctx, s.workers); err != nil {
		return fmt.Errorf("failed to start split consumers: %w", err)
	}
	return nil
}

func (s *Service) Stop() error {
	var firstErr error
	if s.consumer != nil {
		if err := s.consumer.Stop(); err != nil {
			firstErr = err
		}
	}
	if err := s.Publisher.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if firstErr != nil {
		s.log.Error("Notification shutdown failed", slog.String("error", firstErr.Error()))
	}
	return firstErr
}

func (s *Service) HealthCheck(ctx context.Context) error {
	if s.consumer == nil {
		return nil
	}
	return s.consumer.HealthCheck(ctx)
}
