package service

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/BarkinBalci/click-vote-service/internal/config"
	"github.com/BarkinBalci/click-vote-service/internal/domain"
	"github.com/BarkinBalci/click-vote-service/internal/identity"
	"github.com/BarkinBalci/click-vote-service/internal/repository"
	"github.com/BarkinBalci/click-vote-service/internal/store"
	"github.com/BarkinBalci/click-vote-service/internal/store/memory"
)

var testDynamoConfig = config.DynamoDB{
	ClickTable:         "click_log",
	DedupTable:         "click_dedup",
	CampaignDedupTable: "campaign_click_dedup",
	CampaignsTable:     "campaigns",
	ButtonIndex:        "button_id-index",
	CampaignOwnerIndex: "owner_user_id-index",
}

// testClock is a settable time source shared by the service and the memory tables
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestTables(clock *testClock, pageSize int) store.Tables {
	return memory.NewTables(store.SchemasFromConfig(testDynamoConfig),
		memory.WithPageSize(pageSize),
		memory.WithClock(clock.Now))
}

func rowCount(t store.Table) int {
	return t.(*memory.Table).Len()
}

// failingPutTable fails every unconditional write
type failingPutTable struct {
	store.Table
}

func (f failingPutTable) PutItem(ctx context.Context, item store.Item) error {
	return errStoreDown
}

// failingTable fails every call
type failingTable struct {
	store.Table
}

func (failingTable) PutIfAbsent(ctx context.Context, item store.Item) (store.PutOutcome, error) {
	return store.PutOK, errStoreDown
}

func (failingTable) GetItem(ctx context.Context, key store.Item) (store.Item, error) {
	return nil, errStoreDown
}

func (failingTable) Query(ctx context.Context, q store.Query) (*store.Page, error) {
	return nil, errStoreDown
}

func (failingTable) Scan(ctx context.Context, s store.Scan) (*store.Page, error) {
	return nil, errStoreDown
}

type storeError string

func (e storeError) Error() string { return string(e) }

const errStoreDown = storeError("store unavailable")

// MockClickPublisher is a mock implementation of queue.ClickPublisher
type MockClickPublisher struct {
	mock.Mock
}

func (m *MockClickPublisher) PublishClick(ctx context.Context, event *domain.ClickEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockIdentityProvider is a mock implementation of identity.Provider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) ListUsers(ctx context.Context, attributes []string, pageSize int32, token string) (*identity.Page, error) {
	args := m.Called(ctx, attributes, pageSize, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Page), args.Error(1)
}

// MockClickRepository is a mock implementation of repository.ClickRepository
type MockClickRepository struct {
	mock.Mock
}

func (m *MockClickRepository) InsertBatch(ctx context.Context, events []*domain.ClickEvent) (int, error) {
	args := m.Called(ctx, events)
	return args.Int(0), args.Error(1)
}

func (m *MockClickRepository) InitSchema(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockClickRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockClickRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockClickRepository) GetMetrics(ctx context.Context, query repository.MetricsQuery) (*repository.MetricsResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.MetricsResult), args.Error(1)
}
