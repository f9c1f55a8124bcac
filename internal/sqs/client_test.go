package sqs

import (
	"context"
	"testing"

	"github.com/iyhunko/apm-demo-service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHealthPublisher(t *testing.T) {
	t.Run("no queue configured", func(t *testing.T) {
		publisher, err := NewHealthPublisher(context.Background(), config.AWSConfig{Region: "us-east-1"})
		require.NoError(t, err)
		assert.Nil(t, publisher)
	})

	t.Run("queue with local endpoint", func(t *testing.T) {
		t.Setenv("AWS_ACCESS_KEY_ID", "test")
		t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

		conf := config.AWSConfig{
			Region:      "us-east-1",
			Endpoint:    "http://localhost:4566",
			SQSQueueURL: "http://localhost:4566/000000000000/db-health",
		}
		publisher, err := NewHealthPublisher(context.Background(), conf)
		require.NoError(t, err)
		require.NotNil(t, publisher)
		assert.Equal(t, conf.SQSQueueURL, publisher.queueURL)
	})
}
