package awsclient

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"go.uber.org/zap"
)

// LoadConfig loads the default AWS configuration for region. A non-empty
// endpoint marks a local emulator (DynamoDB Local, ElasticMQ, cognito-local),
// which gets static dummy credentials; the caller still sets BaseEndpoint on
// its service client.
func LoadConfig(ctx context.Context, region, endpoint string, log *zap.Logger) (aws.Config, error) {
	configOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}

	if endpoint != "" {
		log.Info("Configuring AWS client for local development",
			zap.String("endpoint", endpoint))
		configOpts = append(configOpts,
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("dummy", "dummy", "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return cfg, nil
}
