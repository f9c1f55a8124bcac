package sqs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

const (
	receiveBatchSize   = 10
	receiveWaitSeconds = 20

	defaultMinBackoff = time.Second
	defaultMaxBackoff = 30 * time.Second
)

// ConsumerAPI defines the interface for SQS operations used by Consumer.
type ConsumerAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Consumer long-polls the health event queue and logs every event it reads.
type Consumer struct {
	client   ConsumerAPI
	queueURL string

	// retry delay after a failed receive, doubled per consecutive failure
	minBackoff time.Duration
	maxBackoff time.Duration
}

// NewConsumer creates a new SQS Consumer with the given client and queue URL.
func NewConsumer(client ConsumerAPI, queueURL string) *Consumer {
	return &Consumer{
		client:     client,
		queueURL:   queueURL,
		minBackoff: defaultMinBackoff,
		maxBackoff: defaultMaxBackoff,
	}
}

// Start polls until ctx is cancelled and then returns ctx.Err().
// Receive failures are logged and retried after a capped backoff.
func (c *Consumer) Start(ctx context.Context) error {
	slog.Info("Starting SQS consumer", slog.String("queueURL", c.queueURL))

	var backoff time.Duration
	for ctx.Err() == nil {
		err := c.poll(ctx)
		if err == nil {
			backoff = 0
			continue
		}
		if ctx.Err() != nil {
			break
		}

		backoff = nextBackoff(backoff, c.minBackoff, c.maxBackoff)
		slog.Error("Error receiving messages", slog.Any("err", err), slog.Duration("retry_in", backoff))

		select {
		case <-ctx.Done():
		case <-time.After(backoff):
		}
	}

	slog.Info("Stopping SQS consumer")
	return ctx.Err()
}

func nextBackoff(current, minDelay, maxDelay time.Duration) time.Duration {
	if current < minDelay {
		return minDelay
	}
	return min(current*2, maxDelay)
}

// poll receives one batch. Only the receive itself can fail it; bad
// messages are logged and left on the queue for redelivery.
func (c *Consumer) poll(ctx context.Context) error {
	result, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: receiveBatchSize,
		WaitTimeSeconds:     receiveWaitSeconds,
	})
	if err != nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}

	for _, message := range result.Messages {
		healthMsg, err := decodeHealthMessage(message)
		if err != nil {
			slog.Error("Skipping unreadable health event", slog.Any("err", err))
			continue
		}
		logHealthMessage(healthMsg)

		if err := c.ack(ctx, message); err != nil {
			slog.Error("Error deleting message", slog.Any("err", err))
		}
	}

	return nil
}

func decodeHealthMessage(message types.Message) (HealthMessage, error) {
	var healthMsg HealthMessage
	if message.Body == nil {
		return healthMsg, errors.New("message body is nil")
	}
	if err := json.Unmarshal([]byte(*message.Body), &healthMsg); err != nil {
		return healthMsg, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	return healthMsg, nil
}

func logHealthMessage(healthMsg HealthMessage) {
	if !healthMsg.DBUp {
		slog.Warn("Database reported down",
			slog.String("event_id", healthMsg.ID),
			slog.String("error", healthMsg.Error),
			slog.Time("checked_at", healthMsg.CheckedAt),
		)
		return
	}

	slog.Info("Database reported up",
		slog.String("event_id", healthMsg.ID),
		slog.Float64("latency_seconds", healthMsg.LatencySeconds),
		slog.Time("checked_at", healthMsg.CheckedAt),
	)
}

func (c *Consumer) ack(ctx context.Context, message types.Message) error {
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: message.ReceiptHandle,
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
