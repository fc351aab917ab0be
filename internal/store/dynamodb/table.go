package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/BarkinBalci/click-vote-service/internal/store"
)

// API is the subset of the DynamoDB client used by Table
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Table implements store.Table on a DynamoDB table
type Table struct {
	api    API
	schema store.Schema
	now    func() time.Time
	log    *zap.Logger
}

// NewTable creates a DynamoDB-backed table for schema
func NewTable(api API, schema store.Schema, log *zap.Logger) *Table {
	return &Table{
		api:    api,
		schema: schema,
		now:    time.Now,
		log:    log.With(zap.String("table", schema.Name)),
	}
}

// PutIfAbsent writes item with a condition that no live row exists at its key.
// Expired rows that DynamoDB has not reclaimed yet are overwritten.
func (t *Table) PutIfAbsent(ctx context.Context, item store.Item) (store.PutOutcome, error) {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return store.PutOK, fmt.Errorf("failed to marshal item: %w", err)
	}

	cond := expression.AttributeNotExists(expression.Name(t.schema.PartitionKey))
	if t.schema.TTLAttribute != "" {
		cond = cond.Or(expression.Name(t.schema.TTLAttribute).LessThanEqual(expression.Value(t.now().Unix())))
	}

	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return store.PutOK, fmt.Errorf("failed to build condition expression: %w", err)
	}

	_, err = t.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(t.schema.Name),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return store.PutConflict, nil
		}
		t.log.Error("Conditional put failed", zap.Error(err))
		return store.PutOK, fmt.Errorf("failed to put item: %w", err)
	}

	return store.PutOK, nil
}

// PutItem writes item unconditionally
func (t *Table) PutItem(ctx context.Context, item store.Item) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	_, err = t.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.schema.Name),
		Item:      av,
	})
	if err != nil {
		t.log.Error("Put failed", zap.Error(err))
		return fmt.Errorf("failed to put item: %w", err)
	}

	return nil
}

// GetItem reads the row at key
func (t *Table) GetItem(ctx context.Context, key store.Item) (store.Item, error) {
	av, err := attributevalue.MarshalMap(t.schema.KeyOf(key))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal key: %w", err)
	}

	out, err := t.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.schema.Name),
		Key:       av,
	})
	if err != nil {
		t.log.Error("Get failed", zap.Error(err))
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	if len(out.Item) == 0 {
		return nil, store.ErrNotFound
	}

	item, err := unmarshalItem(out.Item)
	if err != nil {
		return nil, err
	}

	if t.expired(item) {
		return nil, store.ErrNotFound
	}

	return item, nil
}

// Query returns one page of rows matching q
func (t *Table) Query(ctx context.Context, q store.Query) (*store.Page, error) {
	builder := expression.NewBuilder().
		WithKeyCondition(expression.Key(q.KeyName).Equal(expression.Value(q.KeyValue)))
	if len(q.Projection) > 0 && !q.CountOnly {
		builder = builder.WithProjection(projection(q.Projection))
	}

	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(t.schema.Name),
		KeyConditionExpression:    expr.KeyCondition(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(!q.Descending),
	}
	if q.Index != "" {
		input.IndexName = aws.String(q.Index)
	}
	if q.CountOnly {
		input.Select = types.SelectCount
	}
	if q.Limit > 0 {
		input.Limit = aws.Int32(q.Limit)
	}
	if len(q.Cursor) > 0 {
		if input.ExclusiveStartKey, err = attributevalue.MarshalMap(map[string]string(q.Cursor)); err != nil {
			return nil, fmt.Errorf("failed to marshal cursor: %w", err)
		}
	}

	out, err := t.api.Query(ctx, input)
	if err != nil {
		t.log.Error("Query failed",
			zap.String("index", q.Index),
			zap.String("key", q.KeyName),
			zap.Error(err))
		return nil, fmt.Errorf("failed to query table: %w", err)
	}

	return t.toPage(out.Items, out.Count, out.LastEvaluatedKey)
}

// Scan returns one page of the full table
func (t *Table) Scan(ctx context.Context, s store.Scan) (*store.Page, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(t.schema.Name),
	}

	if len(s.Projection) > 0 {
		expr, err := expression.NewBuilder().WithProjection(projection(s.Projection)).Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build projection expression: %w", err)
		}
		input.ProjectionExpression = expr.Projection()
		input.ExpressionAttributeNames = expr.Names()
	}
	if s.Limit > 0 {
		input.Limit = aws.Int32(s.Limit)
	}
	if len(s.Cursor) > 0 {
		startKey, err := attributevalue.MarshalMap(map[string]string(s.Cursor))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal cursor: %w", err)
		}
		input.ExclusiveStartKey = startKey
	}

	out, err := t.api.Scan(ctx, input)
	if err != nil {
		t.log.Error("Scan failed", zap.Error(err))
		return nil, fmt.Errorf("failed to scan table: %w", err)
	}

	return t.toPage(out.Items, out.Count, out.LastEvaluatedKey)
}

func (t *Table) toPage(rows []map[string]types.AttributeValue, count int32, lastKey map[string]types.AttributeValue) (*store.Page, error) {
	page := &store.Page{Count: int(count)}

	if len(rows) > 0 {
		page.Items = make([]store.Item, 0, len(rows))
		for _, row := range rows {
			item, err := unmarshalItem(row)
			if err != nil {
				return nil, err
			}
			page.Items = append(page.Items, item)
		}
	}

	if len(lastKey) > 0 {
		var cursor map[string]string
		if err := attributevalue.UnmarshalMap(lastKey, &cursor); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cursor: %w", err)
		}
		page.Cursor = cursor
	}

	return page, nil
}

func (t *Table) expired(item store.Item) bool {
	if t.schema.TTLAttribute == "" {
		return false
	}
	expiry := item.Int64(t.schema.TTLAttribute)
	return expiry != 0 && expiry <= t.now().Unix()
}

func unmarshalItem(av map[string]types.AttributeValue) (store.Item, error) {
	var item map[string]any
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return item, nil
}

func projection(names []string) expression.ProjectionBuilder {
	rest := make([]expression.NameBuilder, 0, len(names)-1)
	for _, name := range names[1:] {
		rest = append(rest, expression.Name(name))
	}
	return expression.NamesList(expression.Name(names[0]), rest...)
}
