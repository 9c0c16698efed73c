package services

import (
	"fmt"
	"time"

	"wallpaper_studio_go_backend/internal/models"
)

// FreeDailyLimit is the number of generations a free-tier user gets per
// calendar day. Premium is unlimited, reported as -1.
const FreeDailyLimit = 1

const UnlimitedQuota = -1

// QuotaStatus is the externally visible view of a user's daily quota.
type QuotaStatus struct {
	Tier      string `json:"tier"`
	Allowed   bool   `json:"allowed"`
	UsedToday int    `json:"usedToday"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
}

// QuotaService is the quota ledger: advisory reads before expensive work,
// one unconditional commit after a successful generation.
type QuotaService struct {
	store QuotaStoreDB
}

func NewQuotaService(store QuotaStoreDB) *QuotaService {
	return &QuotaService{store: store}
}

// Today returns the server-local quota day bucket.
func Today() string {
	return time.Now().Format("2006-01-02")
}

// GetTier returns the user's tier; absence of a row means free.
func (s *QuotaService) GetTier(userID string) (string, error) {
	return s.store.GetTier(userID)
}

// SetTier upserts a user's tier. Administrative operation.
func (s *QuotaService) SetTier(userID, tier string) error {
	if tier != models.TierFree && tier != models.TierPremium {
		return &ValidationError{Msg: fmt.Sprintf("tier must be %q or %q", models.TierFree, models.TierPremium)}
	}
	return s.store.UpsertTier(userID, tier)
}

// CheckQuota reports whether a generation may proceed. It never mutates the
// ledger, so calling it any number of times is free.
func (s *QuotaService) CheckQuota(userID, tier, date string) (QuotaStatus, error) {
	usedToday, err := s.store.GetUsageCount(userID, date)
	if err != nil {
		return QuotaStatus{}, err
	}

	if tier == models.TierPremium {
		return QuotaStatus{
			Tier:      tier,
			Allowed:   true,
			UsedToday: usedToday,
			Limit:     UnlimitedQuota,
			Remaining: UnlimitedQuota,
		}, nil
	}

	remaining := FreeDailyLimit - usedToday
	if remaining < 0 {
		remaining = 0
	}
	return QuotaStatus{
		Tier:      tier,
		Allowed:   usedToday < FreeDailyLimit,
		UsedToday: usedToday,
		Limit:     FreeDailyLimit,
		Remaining: remaining,
	}, nil
}

// ConsumeQuota unconditionally increments the day's counter. Enforcement is
// the caller's job via CheckQuota before starting expensive work; commit
// happens after the remote job succeeded.
func (s *QuotaService) ConsumeQuota(userID, date string) (QuotaStatus, error) {
	newCount, err := s.store.IncrementUsage(userID, date)
	if err != nil {
		return QuotaStatus{}, err
	}

	tier, err := s.store.GetTier(userID)
	if err != nil {
		tier = models.TierFree
	}

	status := QuotaStatus{
		Tier:      tier,
		Allowed:   true,
		UsedToday: newCount,
		Limit:     FreeDailyLimit,
		Remaining: FreeDailyLimit - newCount,
	}
	if status.Remaining < 0 {
		status.Remaining = 0
	}
	if tier == models.TierPremium {
		status.Limit = UnlimitedQuota
		status.Remaining = UnlimitedQuota
	} else if newCount >= FreeDailyLimit {
		status.Allowed = false
	}
	return status, nil
}
