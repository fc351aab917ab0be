package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Service    Service    `envconfig:"SERVICE"`
	Store      Store      `envconfig:"STORE"`
	DynamoDB   DynamoDB   `envconfig:"DYNAMODB"`
	Cognito    Cognito    `envconfig:"COGNITO"`
	Campaign   Campaign   `envconfig:"CAMPAIGN"`
	Analytics  Analytics  `envconfig:"ANALYTICS"`
	SQS        SQS        `envconfig:"SQS"`
	ClickHouse ClickHouse `envconfig:"CLICKHOUSE"`
	Consumer   Consumer   `envconfig:"CONSUMER"`
}

type Service struct {
	Environment string `split_words:"true" required:"true"`
	APIPort     string `split_words:"true" default:"8080"`
	LogLevel    string `split_words:"true" default:"info"`
	AuthHeader  string `split_words:"true" default:"X-Authenticated-Subject"`
}

// Store selects the durable store backend: "dynamodb" or "memory".
type Store struct {
	Backend string `split_words:"true" default:"dynamodb"`
}

type DynamoDB struct {
	Region              string `split_words:"true" default:"us-east-1"`
	Endpoint            string `split_words:"true"`
	ClickTable          string `split_words:"true" default:"click_log"`
	DedupTable          string `split_words:"true" default:"click_dedup"`
	CampaignDedupTable  string `split_words:"true" default:"campaign_click_dedup"`
	CampaignsTable      string `split_words:"true" default:"campaigns"`
	ButtonIndex         string `split_words:"true" default:"button_id-index"`
	CampaignOwnerIndex  string `split_words:"true" default:"owner_user_id-index"`
	CampaignGuardTTLSec int    `split_words:"true" default:"86400"`
}

type Cognito struct {
	Region     string `split_words:"true" default:"us-east-1"`
	Endpoint   string `split_words:"true"`
	UserPoolID string `split_words:"true"`
	PageSize   int32  `split_words:"true" default:"60"`
}

type Campaign struct {
	AppBase    string `split_words:"true" default:"http://localhost:8080"`
	MaxNameLen int    `split_words:"true" default:"32"`
}

type Analytics struct {
	Enabled bool `split_words:"true" default:"false"`
}

type SQS struct {
	Endpoint string `split_words:"true"`
	QueueURL string `split_words:"true"`
	Region   string `split_words:"true" default:"us-east-1"`
}

type ClickHouse struct {
	Host               string `split_words:"true"`
	Port               string `split_words:"true" default:"9000"`
	Database           string `split_words:"true" default:"default"`
	User               string `split_words:"true" default:""`
	Password           string `split_words:"true" default:""`
	UseTLS             bool   `split_words:"true" default:"false"`
	MaxOpenConns       int    `split_words:"true" default:"5"`
	MaxIdleConns       int    `split_words:"true" default:"2"`
	ConnMaxLifetimeSec int    `split_words:"true" default:"3600"`
}

type Consumer struct {
	BatchSizeMax    int    `split_words:"true" default:"2000"`
	BatchTimeoutSec int    `split_words:"true" default:"10"`
	HealthCheckPort string `split_words:"true" default:"8081"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case "dynamodb", "memory":
	default:
		return fmt.Errorf("unsupported STORE_BACKEND: %s (supported: dynamodb, memory)", c.Store.Backend)
	}

	if c.Consumer.BatchSizeMax <= 0 {
		return fmt.Errorf("CONSUMER_BATCH_SIZE_MAX must be positive, got %d", c.Consumer.BatchSizeMax)
	}
	if c.Consumer.BatchTimeoutSec <= 0 {
		return fmt.Errorf("CONSUMER_BATCH_TIMEOUT_SEC must be positive, got %d", c.Consumer.BatchTimeoutSec)
	}

	if c.Analytics.Enabled {
		if c.SQS.QueueURL == "" {
			return fmt.Errorf("SQS_QUEUE_URL is required when analytics is enabled")
		}
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("CLICKHOUSE_HOST is required when analytics is enabled")
		}
	}

	return nil
}
