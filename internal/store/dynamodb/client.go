package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"github.com/BarkinBalci/click-vote-service/internal/awsclient"
	"github.com/BarkinBalci/click-vote-service/internal/config"
	"github.com/BarkinBalci/click-vote-service/internal/store"
)

// NewClient creates a DynamoDB client. A configured endpoint points it at DynamoDB Local.
func NewClient(ctx context.Context, cfg config.DynamoDB, log *zap.Logger) (*dynamodb.Client, error) {
	awsCfg, err := awsclient.LoadConfig(ctx, cfg.Region, cfg.Endpoint, log)
	if err != nil {
		return nil, err
	}

	var clientOpts []func(*dynamodb.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	log.Info("DynamoDB client created",
		zap.String("region", cfg.Region),
		zap.String("click_table", cfg.ClickTable),
		zap.String("dedup_table", cfg.DedupTable),
		zap.String("campaign_dedup_table", cfg.CampaignDedupTable),
		zap.String("campaigns_table", cfg.CampaignsTable))

	return dynamodb.NewFromConfig(awsCfg, clientOpts...), nil
}

// NewTables binds every schema to a DynamoDB table
func NewTables(api API, schemas store.Schemas, log *zap.Logger) store.Tables {
	return store.Tables{
		Clicks:         NewTable(api, schemas.Clicks, log),
		Guards:         NewTable(api, schemas.Guards, log),
		WindowedGuards: NewTable(api, schemas.WindowedGuards, log),
		Campaigns:      NewTable(api, schemas.Campaigns, log),
	}
}
