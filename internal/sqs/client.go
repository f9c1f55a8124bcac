package sqs

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/iyhunko/apm-demo-service/internal/config"
)

// NewClient builds an SQS client from the default AWS credential chain.
// A non-empty Endpoint (LocalStack, ElasticMQ) overrides the regional one.
func NewClient(ctx context.Context, conf config.AWSConfig) (*sqs.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(conf.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if conf.Endpoint != "" {
		awsCfg.BaseEndpoint = aws.String(conf.Endpoint)
	}

	return sqs.NewFromConfig(awsCfg), nil
}

// NewHealthPublisher returns a publisher for the configured queue, or nil
// when no queue is configured.
func NewHealthPublisher(ctx context.Context, conf config.AWSConfig) (*Publisher, error) {
	if conf.SQSQueueURL == "" {
		return nil, nil
	}
	client, err := NewClient(ctx, conf)
	if err != nil {
		return nil, err
	}
	return NewPublisher(client, conf.SQSQueueURL), nil
}
