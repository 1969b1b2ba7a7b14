package splits

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"organizer/pkg/logger"
)

// JobProcessor runs background maintenance for splits
type JobProcessor struct {
	service Service
	config  *JobConfig
	log     *logger.Logger
	done    chan struct{}
	once    sync.Once
}

// JobConfig contains configuration for background jobs
type JobConfig struct {
	ExpiryCheckInterval time.Duration
	BatchSize           int
}

// DefaultJobConfig returns default job configuration
func DefaultJobConfig() *JobConfig {
	return &JobConfig{
		ExpiryCheckInterval: time.Minute,
		BatchSize:           100,
	}
}

func NewJobProcessor(service Service, config *JobConfig, log *logger.Logger) *JobProcessor {
	if config == nil {
		config = DefaultJobConfig()
	}
	return &JobProcessor{
		service: service,
		config:  config,
		log:     log,
		done:    make(chan struct{}),
	}
}

// Start launches the expiry loop in the background.
func (jp *JobProcessor) Start(ctx context.Context) {
	go jp.startExpiryProcessor(ctx)
	jp.log.Info("Split background jobs started",
		slog.String("expiry_interval", jp.config.ExpiryCheckInterval.String()),
		slog.Int("batch_size", jp.config.BatchSize),
	)
}

func (jp *JobProcessor) Stop() {
	jp.once.Do(func() {
		close(jp.done)
		jp.log.Info("Split background jobs stopped")
	})
}

func (jp *JobProcessor) startExpiryProcessor(ctx context.Context) {
	ticker := time.NewTicker(jp.config.ExpiryCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			jp.ProcessExpiredSplits(ctx)
		case <-jp.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// ProcessExpiredSplits drains overdue splits one batch at a time.
func (jp *JobProcessor) ProcessExpiredSplits(ctx context.Context) int64 {
	var total int64
	for {
		expired, err := jp.service.ExpireOverdueSplits(ctx, jp.config.BatchSize)
		if err != nil {
			jp.log.Error("Error expiring splits", slog.String("error", err.Error()))
			break
		}
		total += expired
		if expired < int64(jp.config.BatchSize) || ctx.Err() != nil {
			break
		}
	}

	if total > 0 {
		jp.log.Info("Expired overdue splits", slog.Int64("count", total))
	}
	return total
}

// GetJobStatus returns the status of background jobs
func (jp *JobProcessor) GetJobStatus() map[string]interface{} {
	status := "running"
	select {
	case <-jp.done:
		status = "stopped"
	default:
	}
	return map[string]interface{}{
		"expiry_check_interval": jp.config.ExpiryCheckInterval.String(),
		"batch_size":            jp.config.BatchSize,
		"status":                status,
	}
}
