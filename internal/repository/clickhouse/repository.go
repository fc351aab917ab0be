package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/BarkinBalci/click-vote-service/internal/domain"
	"github.com/BarkinBalci/click-vote-service/internal/repository"
)

const createClickEventsTable = `
	CREATE TABLE IF NOT EXISTS click_events (
		event_id String,
		actor_id String,
		button_id LowCardinality(String),
		target_url String,
		campaign_id String,
		session_id String,
		timestamp DateTime64(6, 'UTC'),
		ingested_at DateTime64(3) DEFAULT now64(3),
		version UInt64
	) ENGINE = ReplacingMergeTree(version)
	PRIMARY KEY (event_id)
	ORDER BY (event_id)
	PARTITION BY toYYYYMM(timestamp)
	SETTINGS index_granularity = 8192
	`

// Repository implements ClickRepository for ClickHouse. Redelivered clicks
// share an event_id and collapse under ReplacingMergeTree.
type Repository struct {
	client *Client
	now    func() time.Time
	log    *zap.Logger
}

// NewRepository creates a new ClickHouse repository
func NewRepository(client *Client, log *zap.Logger) *Repository {
	return &Repository{
		client: client,
		now:    time.Now,
		log:    log,
	}
}

// InitSchema creates the click_events table if it does not exist
func (r *Repository) InitSchema(ctx context.Context) error {
	if err := r.client.Conn().Exec(ctx, createClickEventsTable); err != nil {
		return fmt.Errorf("failed to create click_events table: %w", err)
	}

	r.log.Info("ClickHouse schema initialized successfully")
	return nil
}

// InsertBatch inserts a batch of clicks into ClickHouse
func (r *Repository) InsertBatch(ctx context.Context, events []*domain.ClickEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	batch, err := r.client.Conn().PrepareBatch(ctx, "INSERT INTO click_events")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare batch: %w", err)
	}

	now := r.now()
	version := uint64(now.UnixNano())
	for _, event := range events {
		if err := batch.Append(
			event.EventID,
			event.ActorID,
			event.ButtonID,
			event.TargetURL,
			event.CampaignID,
			event.SessionID,
			event.Timestamp,
			now,
			version,
		); err != nil {
			return 0, fmt.Errorf("failed to append click to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("failed to send batch: %w", err)
	}

	return len(events), nil
}

// Ping checks if the ClickHouse connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Conn().Ping(ctx)
}

// Close closes the ClickHouse connection
func (r *Repository) Close() error {
	return r.client.Close()
}

// GetMetrics retrieves aggregated click metrics from ClickHouse
func (r *Repository) GetMetrics(ctx context.Context, query repository.MetricsQuery) (*repository.MetricsResult, error) {
	overall, grouped, args, err := metricsQueries(query)
	if err != nil {
		return nil, err
	}

	result := &repository.MetricsResult{}

	row := r.client.Conn().QueryRow(ctx, overall, args...)
	if err := row.Scan(&result.TotalCount, &result.UniqueActors); err != nil {
		return nil, fmt.Errorf("failed to query overall metrics: %w", err)
	}

	if grouped == "" {
		return result, nil
	}

	rows, err := r.client.Conn().Query(ctx, grouped, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query grouped metrics: %w", err)
	}
	defer func(rows driver.Rows) {
		if err := rows.Close(); err != nil {
			r.log.Error("Failed to close grouped metrics rows", zap.Error(err))
		}
	}(rows)

	for rows.Next() {
		var group repository.MetricsGroupResult
		if err := rows.Scan(&group.GroupValue, &group.TotalCount); err != nil {
			return nil, fmt.Errorf("failed to scan grouped metrics row: %w", err)
		}
		result.Groups = append(result.Groups, group)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating grouped metrics rows: %w", err)
	}

	return result, nil
}

// metricsQueries builds the overall query and, when grouping is requested,
// the grouped query. Both take the same positional args.
func metricsQueries(query repository.MetricsQuery) (string, string, []any, error) {
	where := "WHERE button_id = ? AND toUnixTimestamp(timestamp) >= ? AND toUnixTimestamp(timestamp) <= ?"
	args := []any{query.ButtonID, query.From, query.To}

	overall := fmt.Sprintf(`
		SELECT
			count() AS total_count,
			uniq(actor_id) AS unique_actors
		FROM click_events FINAL
		%s
	`, where)

	var selectField, groupBy, orderBy string
	switch query.GroupBy {
	case "":
		return overall, "", args, nil
	case "campaign":
		selectField = "campaign_id"
		groupBy = "GROUP BY campaign_id"
		orderBy = "ORDER BY total_count DESC, group_value ASC"
	case "hour":
		selectField = "formatDateTime(toStartOfHour(timestamp), '%Y-%m-%d %H:00:00')"
		groupBy = "GROUP BY toStartOfHour(timestamp)"
		orderBy = "ORDER BY group_value ASC"
	case "day":
		selectField = "formatDateTime(toStartOfDay(timestamp), '%Y-%m-%d')"
		groupBy = "GROUP BY toStartOfDay(timestamp)"
		orderBy = "ORDER BY group_value ASC"
	default:
		return "", "", nil, fmt.Errorf("unsupported group_by value: %s (supported: campaign, hour, day)", query.GroupBy)
	}

	grouped := fmt.Sprintf(`
		SELECT
			%s AS group_value,
			count() AS total_count
		FROM click_events FINAL
		%s
		%s
		%s
	`, selectField, where, groupBy, orderBy)

	return overall, grouped, args, nil
}
