package nats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/File-Sharing-BondBridg/files-manager/internal/configuration"
	"github.com/File-Sharing-BondBridg/files-manager/internal/logger"
	"github.com/File-Sharing-BondBridg/files-manager/internal/models"
	"github.com/File-Sharing-BondBridg/files-manager/internal/services"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAck struct {
	acked      int
	terminated int
	naked      []time.Duration
}

func (f *fakeAck) Ack(...nats.AckOpt) error {
	f.acked++
	return nil
}

func (f *fakeAck) Term(...nats.AckOpt) error {
	f.terminated++
	return nil
}

func (f *fakeAck) NakWithDelay(d time.Duration, _ ...nats.AckOpt) error {
	f.naked = append(f.naked, d)
	return nil
}

func TestHandleMessage_Success(t *testing.T) {
	ack := &fakeAck{}
	var got models.ThumbnailJob
	handler := func(_ context.Context, job models.ThumbnailJob) error {
		got = job
		return nil
	}

	outcome := handleMessage(context.Background(), []byte(`{"fileId":"f1","userId":"u1"}`), 1, ack, handler, logger.Discard())

	assert.Equal(t, "completed", outcome)
	assert.Equal(t, models.ThumbnailJob{FileID: "f1", UserID: "u1"}, got)
	assert.Equal(t, 1, ack.acked)
	assert.Zero(t, ack.terminated)
	assert.Empty(t, ack.naked)
}

func TestHandleMessage_FatalErrorTerminates(t *testing.T) {
	ack := &fakeAck{}
	handler := func(context.Context, models.ThumbnailJob) error {
		return &services.JobError{Reason: "missing fileId", Fatal: true}
	}

	outcome := handleMessage(context.Background(), []byte(`{"userId":"u1"}`), 1, ack, handler, logger.Discard())

	assert.Equal(t, "terminated", outcome)
	assert.Equal(t, 1, ack.terminated)
	assert.Zero(t, ack.acked)
}

func TestHandleMessage_RetryableErrorNaks(t *testing.T) {
	ack := &fakeAck{}
	handler := func(context.Context, models.ThumbnailJob) error {
		return &services.JobError{Reason: "file not found", Err: errors.New("record not found")}
	}

	outcome := handleMessage(context.Background(), []byte(`{"fileId":"f1","userId":"u1"}`), 3, ack, handler, logger.Discard())

	assert.Equal(t, "retried", outcome)
	require.Len(t, ack.naked, 1)
	assert.Equal(t, 15*time.Second, ack.naked[0])
}

func TestHandleMessage_UndecodablePayloadTerminates(t *testing.T) {
	ack := &fakeAck{}
	called := false
	handler := func(context.Context, models.ThumbnailJob) error {
		called = true
		return nil
	}

	outcome := handleMessage(context.Background(), []byte("not json"), 1, ack, handler, logger.Discard())

	assert.Equal(t, "terminated", outcome)
	assert.False(t, called)
	assert.Equal(t, 1, ack.terminated)
}

func TestRetryDelay(t *testing.T) {
	assert.Equal(t, retryBaseDelay, retryDelay(0))
	assert.Equal(t, retryBaseDelay, retryDelay(1))
	assert.Equal(t, 2*retryBaseDelay, retryDelay(2))
	assert.Equal(t, retryMaxDelay, retryDelay(100))
}

func TestRoutes(t *testing.T) {
	cfg := configuration.NATSConfig{Subject: "files.thumbnail", Durable: "thumbnail-worker"}
	routes := Routes(cfg, func(context.Context, models.ThumbnailJob) error { return nil })

	require.Len(t, routes, 1)
	assert.Equal(t, "files.thumbnail", routes[0].Subject)
	assert.Equal(t, "thumbnail-worker", routes[0].Durable)
	assert.NotNil(t, routes[0].Handler)
}
