package sqs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testQueueURL = "http://localhost:4566/000000000000/db-health"

// fakeQueue serves canned receive results and records deleted receipt handles.
type fakeQueue struct {
	receive   func(ctx context.Context) (*sqs.ReceiveMessageOutput, error)
	deleteErr error

	receives atomic.Int32
	deleted  []string
	lastIn   *sqs.ReceiveMessageInput
}

func (f *fakeQueue) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.receives.Add(1)
	f.lastIn = params
	if f.receive == nil {
		return &sqs.ReceiveMessageOutput{}, nil
	}
	return f.receive(ctx)
}

func (f *fakeQueue) DeleteMessage(_ context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func batch(bodies ...*string) func(context.Context) (*sqs.ReceiveMessageOutput, error) {
	return func(context.Context) (*sqs.ReceiveMessageOutput, error) {
		out := &sqs.ReceiveMessageOutput{}
		for i, body := range bodies {
			out.Messages = append(out.Messages, types.Message{
				Body:          body,
				ReceiptHandle: aws.String(string(rune('a' + i))),
			})
		}
		return out, nil
	}
}

func TestDecodeHealthMessage(t *testing.T) {
	tests := []struct {
		name    string
		body    *string
		want    HealthMessage
		wantErr string
	}{
		{
			name: "database up",
			body: aws.String(`{"id":"5f0c7d3e-8d7b-4c3e-9a55-0d6f3a2b9c11","db_up":true,"latency_seconds":0.012,"checked_at":"2025-03-01T10:00:00Z"}`),
			want: HealthMessage{
				ID:             "5f0c7d3e-8d7b-4c3e-9a55-0d6f3a2b9c11",
				DBUp:           true,
				LatencySeconds: 0.012,
				CheckedAt:      time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
			},
		},
		{
			name: "database down",
			body: aws.String(`{"id":"a1","db_up":false,"error":"acquire connection: connection refused","checked_at":"2025-03-01T10:00:15Z"}`),
			want: HealthMessage{
				ID:        "a1",
				Error:     "acquire connection: connection refused",
				CheckedAt: time.Date(2025, 3, 1, 10, 0, 15, 0, time.UTC),
			},
		},
		{name: "nil body", body: nil, wantErr: "message body is nil"},
		{name: "malformed json", body: aws.String(`{"db_up":`), wantErr: "failed to unmarshal message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeHealthMessage(types.Message{Body: tt.body})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConsumer_poll(t *testing.T) {
	ctx := context.Background()

	t.Run("long polls the configured queue", func(t *testing.T) {
		queue := &fakeQueue{}
		require.NoError(t, NewConsumer(queue, testQueueURL).poll(ctx))

		require.NotNil(t, queue.lastIn)
		assert.Equal(t, testQueueURL, aws.ToString(queue.lastIn.QueueUrl))
		assert.Equal(t, int32(receiveBatchSize), queue.lastIn.MaxNumberOfMessages)
		assert.Equal(t, int32(receiveWaitSeconds), queue.lastIn.WaitTimeSeconds)
	})

	t.Run("acks readable events and leaves unreadable ones", func(t *testing.T) {
		queue := &fakeQueue{receive: batch(
			aws.String(`{"id":"1","db_up":true,"checked_at":"2025-03-01T10:00:00Z"}`),
			aws.String(`not json`),
			aws.String(`{"id":"3","db_up":false,"error":"timeout","checked_at":"2025-03-01T10:00:30Z"}`),
		)}

		require.NoError(t, NewConsumer(queue, testQueueURL).poll(ctx))
		assert.Equal(t, []string{"a", "c"}, queue.deleted)
	})

	t.Run("delete failure does not fail the batch", func(t *testing.T) {
		queue := &fakeQueue{
			receive:   batch(aws.String(`{"id":"1","db_up":true,"checked_at":"2025-03-01T10:00:00Z"}`)),
			deleteErr: errors.New("receipt handle expired"),
		}

		assert.NoError(t, NewConsumer(queue, testQueueURL).poll(ctx))
	})

	t.Run("receive failure is returned", func(t *testing.T) {
		queue := &fakeQueue{receive: func(context.Context) (*sqs.ReceiveMessageOutput, error) {
			return nil, errors.New("AWS.SimpleQueueService.NonExistentQueue")
		}}

		err := NewConsumer(queue, testQueueURL).poll(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to receive messages")
	})
}

func TestConsumer_StartBacksOffOnReceiveErrors(t *testing.T) {
	queue := &fakeQueue{receive: func(context.Context) (*sqs.ReceiveMessageOutput, error) {
		return nil, errors.New("AccessDenied")
	}}
	consumer := NewConsumer(queue, testQueueURL)
	consumer.minBackoff = 20 * time.Millisecond
	consumer.maxBackoff = 40 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	err := consumer.Start(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// retries land at roughly 0, 20, 60, 100 and 140ms
	receives := queue.receives.Load()
	assert.GreaterOrEqual(t, receives, int32(2))
	assert.LessOrEqual(t, receives, int32(7))
}

func TestConsumer_StartStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	queue := &fakeQueue{receive: func(ctx context.Context) (*sqs.ReceiveMessageOutput, error) {
		cancel()
		return nil, ctx.Err()
	}}

	done := make(chan error, 1)
	go func() { done <- NewConsumer(queue, testQueueURL).Start(ctx) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop after cancel")
	}
	assert.Equal(t, int32(1), queue.receives.Load())
}

func TestNextBackoff(t *testing.T) {
	minDelay, maxDelay := time.Second, 30*time.Second

	var delays []time.Duration
	var current time.Duration
	for range 7 {
		current = nextBackoff(current, minDelay, maxDelay)
		delays = append(delays, current)
	}

	assert.Equal(t, []time.Duration{
		time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second,
		16 * time.Second, 30 * time.Second, 30 * time.Second,
	}, delays)
}

func TestNewConsumer(t *testing.T) {
	consumer := NewConsumer(&fakeQueue{}, testQueueURL)

	require.NotNil(t, consumer)
	assert.Equal(t, testQueueURL, consumer.queueURL)
	assert.Equal(t, defaultMinBackoff, consumer.minBackoff)
	assert.Equal(t, defaultMaxBackoff, consumer.maxBackoff)
}
