package sqs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/iyhunko/apm-demo-service/internal/model"
)

// PublisherAPI defines the interface for SQS operations used by Publisher.
type PublisherAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Publisher handles publishing messages to AWS SQS.
type Publisher struct {
	client   PublisherAPI
	queueURL string
}

// NewPublisher creates a new SQS Publisher with the given client and queue URL.
func NewPublisher(client PublisherAPI, queueURL string) *Publisher {
	return &Publisher{
		client:   client,
		queueURL: queueURL,
	}
}

// HealthMessage is the wire form of a database health check result.
type HealthMessage struct {
	ID             string    `json:"id"`
	DBUp           bool      `json:"db_up"`
	LatencySeconds float64   `json:"latency_seconds,omitempty"`
	Error          string    `json:"error,omitempty"`
	CheckedAt      time.Time `json:"checked_at"`
}

// NewHealthMessage converts a health event into its message form.
func NewHealthMessage(event *model.HealthEvent) HealthMessage {
	return HealthMessage{
		ID:             event.ID.String(),
		DBUp:           event.DBUp,
		LatencySeconds: event.LatencySeconds,
		Error:          event.Error,
		CheckedAt:      event.CheckedAt,
	}
}

// PublishHealthEvent publishes a health check result to the SQS queue.
func (p *Publisher) PublishHealthEvent(ctx context.Context, event *model.HealthEvent) error {
	messageBody, err := json.Marshal(NewHealthMessage(event))
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	status := "up"
	if !event.DBUp {
		status = "down"
	}

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(messageBody)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"db_status": {
				DataType:    aws.String("String"),
				StringValue: aws.String(status),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	return nil
}
