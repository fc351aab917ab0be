package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVICE_ENVIRONMENT", "development")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Service.APIPort)
	assert.Equal(t, "X-Authenticated-Subject", cfg.Service.AuthHeader)
	assert.Equal(t, "info", cfg.Service.LogLevel)
	assert.Equal(t, "dynamodb", cfg.Store.Backend)
	assert.Equal(t, "button_id-index", cfg.DynamoDB.ButtonIndex)
	assert.Equal(t, 86400, cfg.DynamoDB.CampaignGuardTTLSec)
	assert.Equal(t, 32, cfg.Campaign.MaxNameLen)
	assert.Equal(t, int32(60), cfg.Cognito.PageSize)
	assert.False(t, cfg.Analytics.Enabled)
}

func TestLoad_MissingEnvironment(t *testing.T) {
	t.Setenv("SERVICE_ENVIRONMENT", "")
	require.NoError(t, os.Unsetenv("SERVICE_ENVIRONMENT"))

	_, err := Load()

	assert.Error(t, err)
}

func TestLoad_UnsupportedBackend(t *testing.T) {
	t.Setenv("SERVICE_ENVIRONMENT", "development")
	t.Setenv("STORE_BACKEND", "postgres")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported STORE_BACKEND")
}

func TestLoad_AnalyticsRequiresQueue(t *testing.T) {
	t.Setenv("SERVICE_ENVIRONMENT", "development")
	t.Setenv("ANALYTICS_ENABLED", "true")
	t.Setenv("CLICKHOUSE_HOST", "localhost")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SQS_QUEUE_URL")
}

func TestLoad_AnalyticsEnabled(t *testing.T) {
	t.Setenv("SERVICE_ENVIRONMENT", "production")
	t.Setenv("ANALYTICS_ENABLED", "true")
	t.Setenv("SQS_QUEUE_URL", "http://localhost:9324/queue/clicks")
	t.Setenv("CLICKHOUSE_HOST", "localhost")

	cfg, err := Load()

	require.NoError(t, err)
	assert.True(t, cfg.Analytics.Enabled)
	assert.Equal(t, "9000", cfg.ClickHouse.Port)
	assert.Equal(t, 2000, cfg.Consumer.BatchSizeMax)
}

func TestLoad_RejectsNonPositiveBatchSettings(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{name: "zero timeout", key: "CONSUMER_BATCH_TIMEOUT_SEC", value: "0", wantErr: "CONSUMER_BATCH_TIMEOUT_SEC"},
		{name: "negative timeout", key: "CONSUMER_BATCH_TIMEOUT_SEC", value: "-5", wantErr: "CONSUMER_BATCH_TIMEOUT_SEC"},
		{name: "zero batch size", key: "CONSUMER_BATCH_SIZE_MAX", value: "0", wantErr: "CONSUMER_BATCH_SIZE_MAX"},
		{name: "negative batch size", key: "CONSUMER_BATCH_SIZE_MAX", value: "-1", wantErr: "CONSUMER_BATCH_SIZE_MAX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SERVICE_ENVIRONMENT", "development")
			t.Setenv(tt.key, tt.value)

			_, err := Load()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
