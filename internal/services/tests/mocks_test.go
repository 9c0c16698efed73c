package services_test

import (
	"context"
	"sync"
	"wallpaper_studio_go_backend/internal/services"

	"github.com/stretchr/testify/mock"
)

type MockQuotaStore struct {
	mock.Mock
}

func (m *MockQuotaStore) GetTier(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *MockQuotaStore) UpsertTier(userID, tier string) error {
	args := m.Called(userID, tier)
	return args.Error(0)
}

func (m *MockQuotaStore) GetUsageCount(userID, date string) (int, error) {
	args := m.Called(userID, date)
	return args.Int(0), args.Error(1)
}

func (m *MockQuotaStore) IncrementUsage(userID, date string) (int, error) {
	args := m.Called(userID, date)
	return args.Int(0), args.Error(1)
}

type MockQuotaManager struct {
	mock.Mock
}

func (m *MockQuotaManager) CheckQuota(userID, tier, date string) (services.QuotaStatus, error) {
	args := m.Called(userID, tier, date)
	return args.Get(0).(services.QuotaStatus), args.Error(1)
}

func (m *MockQuotaManager) ConsumeQuota(userID, date string) (services.QuotaStatus, error) {
	args := m.Called(userID, date)
	return args.Get(0).(services.QuotaStatus), args.Error(1)
}

func (m *MockQuotaManager) GetTier(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

type MockGenerationAPI struct {
	mock.Mock
}

func (m *MockGenerationAPI) SubmitJob(ctx context.Context, req services.SubmitRequest) (services.SubmitResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(services.SubmitResult), args.Error(1)
}

func (m *MockGenerationAPI) JobStatus(ctx context.Context, taskID string) (services.TaskStatusInfo, error) {
	args := m.Called(ctx, taskID)
	return args.Get(0).(services.TaskStatusInfo), args.Error(1)
}

func (m *MockGenerationAPI) GetUploadPolicy(ctx context.Context, model string) (services.UploadPolicy, error) {
	args := m.Called(ctx, model)
	return args.Get(0).(services.UploadPolicy), args.Error(1)
}

func (m *MockGenerationAPI) Configured() bool {
	args := m.Called()
	return args.Bool(0)
}

type MockStorageUploader struct {
	mock.Mock
}

func (m *MockStorageUploader) Upload(ctx context.Context, file services.UploadFile, userID, model string) (string, error) {
	args := m.Called(ctx, file, userID, model)
	return args.String(0), args.Error(1)
}

// fakeQuotaStore is an in-memory store with real increment semantics, used
// where the counter's arithmetic matters more than call expectations.
type fakeQuotaStore struct {
	mu     sync.Mutex
	tiers  map[string]string
	counts map[string]int
}

func newFakeQuotaStore() *fakeQuotaStore {
	return &fakeQuotaStore{
		tiers:  make(map[string]string),
		counts: make(map[string]int),
	}
}

func (f *fakeQuotaStore) GetTier(userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tier, ok := f.tiers[userID]; ok {
		return tier, nil
	}
	return "free", nil
}

func (f *fakeQuotaStore) UpsertTier(userID, tier string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tiers[userID] = tier
	return nil
}

func (f *fakeQuotaStore) GetUsageCount(userID, date string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[userID+"|"+date], nil
}

func (f *fakeQuotaStore) IncrementUsage(userID, date string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := userID + "|" + date
	f.counts[key]++
	return f.counts[key], nil
}
