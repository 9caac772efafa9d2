package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/File-Sharing-BondBridg/files-manager/internal/models"
	"github.com/File-Sharing-BondBridg/files-manager/internal/services"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// JobHandler processes one decoded thumbnail job.
type JobHandler func(ctx context.Context, job models.ThumbnailJob) error

// ThumbnailQueue publishes thumbnail jobs to JetStream.
type ThumbnailQueue struct {
	js      nats.JetStreamContext
	subject string
}

func NewThumbnailQueue(client *Client, subject string) *ThumbnailQueue {
	return &ThumbnailQueue{js: client.JS, subject: subject}
}

func (q *ThumbnailQueue) Enqueue(ctx context.Context, job models.ThumbnailJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	// Use a message ID for idempotency
	_, err = q.js.Publish(q.subject, data, nats.MsgId(uuid.NewString()), nats.Context(ctx))
	if err != nil {
		return fmt.Errorf("publish %s: %w", q.subject, err)
	}
	return nil
}

// acknowledger is the settlement side of a JetStream message.
type acknowledger interface {
	Ack(opts ...nats.AckOpt) error
	Term(opts ...nats.AckOpt) error
	NakWithDelay(delay time.Duration, opts ...nats.AckOpt) error
}

const (
	retryBaseDelay = 5 * time.Second
	retryMaxDelay  = time.Minute
)

// retryDelay grows linearly with the delivery count.
func retryDelay(delivered uint64) time.Duration {
	if delivered == 0 {
		delivered = 1
	}
	delay := time.Duration(delivered) * retryBaseDelay
	if delay > retryMaxDelay {
		return retryMaxDelay
	}
	return delay
}

// handleMessage decodes a job, runs the handler and settles the message:
// success acks, fatal job errors and undecodable payloads terminate, and
// everything else is redelivered after a delay.
func handleMessage(ctx context.Context, data []byte, delivered uint64, msg acknowledger, handler JobHandler, logger *slog.Logger) string {
	var job models.ThumbnailJob
	if err := json.Unmarshal(data, &job); err != nil {
		logger.Error("[NATS] undecodable job payload", "error", err)
		settleErr(msg.Term(), logger)
		services.RecordThumbnailJob("terminated")
		return "terminated"
	}

	err := handler(ctx, job)
	switch {
	case err == nil:
		settleErr(msg.Ack(), logger)
		services.RecordThumbnailJob("completed")
		return "completed"
	case services.IsFatalJobError(err):
		logger.Error("[NATS] job failed permanently", "file_id", job.FileID, "user_id", job.UserID, "error", err)
		settleErr(msg.Term(), logger)
		services.RecordThumbnailJob("terminated")
		return "terminated"
	default:
		delay := retryDelay(delivered)
		logger.Warn("[NATS] job failed, will retry", "file_id", job.FileID, "delivered", delivered, "delay", delay, "error", err)
		settleErr(msg.NakWithDelay(delay), logger)
		services.RecordThumbnailJob("retried")
		return "retried"
	}
}

func settleErr(err error, logger *slog.Logger) {
	if err != nil {
		logger.Warn("[NATS] failed to settle message", "error", err)
	}
}
