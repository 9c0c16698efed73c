package services_test

import (
	"fmt"
	"sync"
	"testing"
	"wallpaper_studio_go_backend/internal/models"
	"wallpaper_studio_go_backend/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestCheckQuota(t *testing.T) {
	// Setup
	mockStore := new(MockQuotaStore)
	quotaService := services.NewQuotaService(mockStore)
	userID := "auth0|user1"
	date := "2026-08-31"

	t.Run("Free user with no usage is allowed", func(t *testing.T) {
		mockStore.ExpectedCalls = nil
		mockStore.On("GetUsageCount", userID, date).Return(0, nil).Once()

		status, err := quotaService.CheckQuota(userID, models.TierFree, date)

		assert.NoError(t, err)
		assert.True(t, status.Allowed)
		assert.Equal(t, 0, status.UsedToday)
		assert.Equal(t, services.FreeDailyLimit, status.Limit)
		assert.Equal(t, services.FreeDailyLimit, status.Remaining)
		mockStore.AssertExpectations(t)
	})

	t.Run("Free user at the limit is denied", func(t *testing.T) {
		mockStore.ExpectedCalls = nil
		mockStore.On("GetUsageCount", userID, date).Return(services.FreeDailyLimit, nil).Once()

		status, err := quotaService.CheckQuota(userID, models.TierFree, date)

		assert.NoError(t, err)
		assert.False(t, status.Allowed)
		assert.Equal(t, 0, status.Remaining)
		mockStore.AssertExpectations(t)
	})

	t.Run("Premium user is always allowed", func(t *testing.T) {
		mockStore.ExpectedCalls = nil
		mockStore.On("GetUsageCount", userID, date).Return(42, nil).Once()

		status, err := quotaService.CheckQuota(userID, models.TierPremium, date)

		assert.NoError(t, err)
		assert.True(t, status.Allowed)
		assert.Equal(t, 42, status.UsedToday)
		assert.Equal(t, services.UnlimitedQuota, status.Limit)
		assert.Equal(t, services.UnlimitedQuota, status.Remaining)
		mockStore.AssertExpectations(t)
	})

	t.Run("CheckQuota never mutates the ledger", func(t *testing.T) {
		store := newFakeQuotaStore()
		quotaSvc := services.NewQuotaService(store)

		for i := 0; i < 5; i++ {
			status, err := quotaSvc.CheckQuota(userID, models.TierFree, date)
			assert.NoError(t, err)
			assert.True(t, status.Allowed)
			assert.Equal(t, 0, status.UsedToday)
		}
	})

	t.Run("Store error is propagated", func(t *testing.T) {
		mockStore.ExpectedCalls = nil
		expectedErr := fmt.Errorf("connection refused")
		mockStore.On("GetUsageCount", userID, date).Return(0, expectedErr).Once()

		_, err := quotaService.CheckQuota(userID, models.TierFree, date)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), expectedErr.Error())
		mockStore.AssertExpectations(t)
	})
}

func TestConsumeQuota(t *testing.T) {
	userID := "auth0|user1"
	date := "2026-08-31"

	t.Run("First consumption exhausts the free quota", func(t *testing.T) {
		store := newFakeQuotaStore()
		quotaService := services.NewQuotaService(store)

		status, err := quotaService.ConsumeQuota(userID, date)

		assert.NoError(t, err)
		assert.Equal(t, 1, status.UsedToday)
		assert.Equal(t, 0, status.Remaining)
		assert.False(t, status.Allowed)

		// Next check must deny
		checked, err := quotaService.CheckQuota(userID, models.TierFree, date)
		assert.NoError(t, err)
		assert.False(t, checked.Allowed)
	})

	t.Run("Counter is monotonic across repeated consumption", func(t *testing.T) {
		store := newFakeQuotaStore()
		quotaService := services.NewQuotaService(store)

		for i := 1; i <= 3; i++ {
			status, err := quotaService.ConsumeQuota(userID, date)
			assert.NoError(t, err)
			assert.Equal(t, i, status.UsedToday)
		}
	})

	t.Run("Concurrent consumption loses no increments", func(t *testing.T) {
		store := newFakeQuotaStore()
		quotaService := services.NewQuotaService(store)

		const n = 20
		var wg sync.WaitGroup
		wg.Add(n)
		for i := 0; i < n; i++ {
			go func() {
				defer wg.Done()
				_, err := quotaService.ConsumeQuota(userID, date)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		count, err := store.GetUsageCount(userID, date)
		assert.NoError(t, err)
		assert.Equal(t, n, count)
	})

	t.Run("Premium consumption still reports unlimited", func(t *testing.T) {
		store := newFakeQuotaStore()
		assert.NoError(t, store.UpsertTier(userID, models.TierPremium))
		quotaService := services.NewQuotaService(store)

		status, err := quotaService.ConsumeQuota(userID, date)

		assert.NoError(t, err)
		assert.True(t, status.Allowed)
		assert.Equal(t, services.UnlimitedQuota, status.Limit)
		assert.Equal(t, services.UnlimitedQuota, status.Remaining)
	})

	t.Run("Separate dates keep separate counters", func(t *testing.T) {
		store := newFakeQuotaStore()
		quotaService := services.NewQuotaService(store)

		_, err := quotaService.ConsumeQuota(userID, "2026-08-30")
		assert.NoError(t, err)

		status, err := quotaService.CheckQuota(userID, models.TierFree, "2026-08-31")
		assert.NoError(t, err)
		assert.True(t, status.Allowed)
		assert.Equal(t, 0, status.UsedToday)
	})
}

func TestSetTier(t *testing.T) {
	// Setup
	mockStore := new(MockQuotaStore)
	quotaService := services.NewQuotaService(mockStore)

	t.Run("Valid tiers are upserted", func(t *testing.T) {
		mockStore.ExpectedCalls = nil
		mockStore.On("UpsertTier", "auth0|user1", models.TierPremium).Return(nil).Once()

		err := quotaService.SetTier("auth0|user1", models.TierPremium)

		assert.NoError(t, err)
		mockStore.AssertExpectations(t)
	})

	t.Run("Unknown tier is rejected before touching the store", func(t *testing.T) {
		mockStore.ExpectedCalls = nil

		err := quotaService.SetTier("auth0|user1", "gold")

		assert.Error(t, err)
		var validationErr *services.ValidationError
		assert.ErrorAs(t, err, &validationErr)
		mockStore.AssertNotCalled(t, "UpsertTier")
	})
}
