package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smartspace/smartspace-be/models"
	"github.com/smartspace/smartspace-be/queue"
)

// SMTPConfig holds outbound mail settings. An empty Host disables real
// delivery; jobs are then logged and dropped, which keeps development
// environments working without a mail server.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// Processor consumes jobs from the queue: email delivery and deferred
// space flag updates. Job failures are retried with backoff and parked in
// the DLQ after too many attempts; they never propagate anywhere near the
// booking flow.
type Processor struct {
	db     *gorm.DB
	queue  *queue.Queue
	smtp   SMTPConfig
	logger *zap.Logger
}

func NewProcessor(db *gorm.DB, q *queue.Queue, smtpCfg SMTPConfig, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{db: db, queue: q, smtp: smtpCfg, logger: logger}
}

// Run processes jobs until ctx is cancelled.
func (p *Processor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, key, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, key, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
		}
	}
}

// Process dispatches a single job by type.
func (p *Processor) Process(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeEmail:
		var payload queue.EmailPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("unmarshal email payload: %w", err)
		}
		return p.sendEmail(payload)
	case queue.JobTypeSpaceStatus:
		var payload queue.SpaceStatusPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("unmarshal space status payload: %w", err)
		}
		return p.updateSpaceStatus(ctx, payload)
	default:
		p.logger.Warn("unknown job type dropped", zap.String("type", string(job.Type)))
		return nil
	}
}

func (p *Processor) sendEmail(payload queue.EmailPayload) error {
	if p.smtp.Host == "" {
		p.logger.Info("smtp disabled, dropping email",
			zap.String("email_type", payload.EmailType),
			zap.String("recipient", payload.Recipient),
			zap.String("subject", payload.Subject))
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		p.smtp.From, payload.Recipient, payload.Subject, payload.Body)

	addr := fmt.Sprintf("%s:%d", p.smtp.Host, p.smtp.Port)
	var auth smtp.Auth
	if p.smtp.User != "" {
		auth = smtp.PlainAuth("", p.smtp.User, p.smtp.Pass, p.smtp.Host)
	}
	if err := smtp.SendMail(addr, auth, p.smtp.From, []string{payload.Recipient}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", payload.Recipient, err)
	}
	p.logger.Info("email sent",
		zap.String("email_type", payload.EmailType),
		zap.String("recipient", payload.Recipient))
	return nil
}

// updateSpaceStatus applies a deferred space flag change, re-validating
// against the current event state since time has passed since enqueue.
func (p *Processor) updateSpaceStatus(ctx context.Context, payload queue.SpaceStatusPayload) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch models.SpaceStatus(payload.Status) {
		case models.SpaceBooked:
			// Only book the space if the approval still stands.
			var event models.Event
			if err := tx.First(&event, payload.EventID).Error; err != nil {
				return fmt.Errorf("load event %d: %w", payload.EventID, err)
			}
			if event.Status != models.StatusConfirmed {
				p.logger.Info("space status job skipped, event no longer confirmed",
					zap.Uint("event_id", payload.EventID),
					zap.String("event_status", string(event.Status)))
				return nil
			}
		case models.SpaceFree:
			// Only free the space while no confirmed event still holds it.
			var count int64
			err := tx.Model(&models.Event{}).
				Where("space_id = ? AND status = ? AND end_datetime > ?",
					payload.SpaceID, models.StatusConfirmed, time.Now()).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count > 0 {
				p.logger.Info("space status job skipped, space still held",
					zap.Uint("space_id", payload.SpaceID))
				return nil
			}
		default:
			return fmt.Errorf("unknown space status %q", payload.Status)
		}

		res := tx.Model(&models.Space{}).
			Where("id = ?", payload.SpaceID).
			Update("status", payload.Status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			p.logger.Info("space status updated",
				zap.Uint("space_id", payload.SpaceID),
				zap.String("status", payload.Status))
		}
		return nil
	})
}
