package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/debtwise/insight-api/internal/domain"
	"github.com/debtwise/insight-api/internal/events"
	"github.com/debtwise/insight-api/internal/generation"
	"github.com/debtwise/insight-api/internal/store"
)

// MockDebtStore mocks the store.DebtStore interface
type MockDebtStore struct {
	mock.Mock
}

func (m *MockDebtStore) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Debt, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Debt), args.Error(1)
}

func (m *MockDebtStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Debt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Debt), args.Error(1)
}

func (m *MockDebtStore) Create(ctx context.Context, debt *domain.Debt) error {
	args := m.Called(ctx, debt)
	return args.Error(0)
}

func (m *MockDebtStore) Update(ctx context.Context, debt *domain.Debt) error {
	args := m.Called(ctx, debt)
	return args.Error(0)
}

func (m *MockDebtStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDebtStore) WithTx(tx *sql.Tx) store.DebtStore {
	args := m.Called(tx)
	return args.Get(0).(store.DebtStore)
}

// MockCacheStore mocks the store.CacheStore interface
type MockCacheStore struct {
	mock.Mock
}

func (m *MockCacheStore) GetLatestValid(
	ctx context.Context,
	userID uuid.UUID,
	fingerprint string,
) (*domain.CacheEntry, error) {
	args := m.Called(ctx, userID, fingerprint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CacheEntry), args.Error(1)
}

func (m *MockCacheStore) GetLatestAny(ctx context.Context, userID uuid.UUID) (*domain.CacheEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CacheEntry), args.Error(1)
}

func (m *MockCacheStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.CacheEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CacheEntry), args.Error(1)
}

func (m *MockCacheStore) Insert(ctx context.Context, entry *domain.CacheEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockCacheStore) Invalidate(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheStore) PurgeExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheStore) WithTx(tx *sql.Tx) store.CacheStore {
	args := m.Called(tx)
	return args.Get(0).(store.CacheStore)
}

// MockJobQueue mocks the store.JobQueue interface
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) Enqueue(
	ctx context.Context,
	userID uuid.UUID,
	taskType string,
	priority int,
	payload []byte,
) (*domain.InsightJob, error) {
	args := m.Called(ctx, userID, taskType, priority, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InsightJob), args.Error(1)
}

func (m *MockJobQueue) GetActiveJob(
	ctx context.Context,
	userID uuid.UUID,
	taskType string,
) (*domain.InsightJob, error) {
	args := m.Called(ctx, userID, taskType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InsightJob), args.Error(1)
}

func (m *MockJobQueue) GetLatestJob(
	ctx context.Context,
	userID uuid.UUID,
	taskType string,
) (*domain.InsightJob, error) {
	args := m.Called(ctx, userID, taskType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InsightJob), args.Error(1)
}

func (m *MockJobQueue) ClaimNext(ctx context.Context, workerID string) (*domain.InsightJob, error) {
	args := m.Called(ctx, workerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InsightJob), args.Error(1)
}

func (m *MockJobQueue) MarkCompleted(ctx context.Context, jobID uuid.UUID, result []byte) error {
	args := m.Called(ctx, jobID, result)
	return args.Error(0)
}

func (m *MockJobQueue) MarkFailed(ctx context.Context, jobID uuid.UUID, errorMessage string) error {
	args := m.Called(ctx, jobID, errorMessage)
	return args.Error(0)
}

func (m *MockJobQueue) ReapStale(ctx context.Context, staleThreshold time.Duration) (int64, error) {
	args := m.Called(ctx, staleThreshold)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJobQueue) CountByStatus(ctx context.Context) (map[domain.JobStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.JobStatus]int64), args.Error(1)
}

// MockInsightGenerator mocks the generation.InsightGenerator interface
type MockInsightGenerator struct {
	mock.Mock
}

func (m *MockInsightGenerator) GenerateInsights(
	ctx context.Context,
	userID uuid.UUID,
	debts []*domain.Debt,
) (*generation.Insights, error) {
	args := m.Called(ctx, userID, debts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*generation.Insights), args.Error(1)
}

// MockEventEmitter mocks the events.EventEmitter interface
type MockEventEmitter struct {
	mock.Mock
}

func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.MutationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
