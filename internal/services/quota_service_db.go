package services

import (
	"errors"

	"wallpaper_studio_go_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultQuotaStore implements QuotaStoreDB on postgres via gorm. The server
// connects with the service-role credential, so the write path is not
// subject to the row-level restrictions a user-scoped session would see.
type DefaultQuotaStore struct {
	db *gorm.DB
}

func NewQuotaStoreDB(db *gorm.DB) QuotaStoreDB {
	return &DefaultQuotaStore{db: db}
}

// GetTier returns the user's tier, defaulting to free when no row exists.
func (s *DefaultQuotaStore) GetTier(userID string) (string, error) {
	var tier models.UserTier
	err := s.db.Where("user_id = ?", userID).First(&tier).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.TierFree, nil
	}
	if err != nil {
		return "", err
	}
	return tier.Tier, nil
}

func (s *DefaultQuotaStore) UpsertTier(userID, tier string) error {
	record := models.UserTier{UserID: userID, Tier: tier}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"tier", "updated_at"}),
	}).Create(&record).Error
}

// GetUsageCount is the read path; it never mutates the ledger.
func (s *DefaultQuotaStore) GetUsageCount(userID, date string) (int, error) {
	var record models.UsageRecord
	err := s.db.Where("user_id = ? AND date = ?", userID, date).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return record.Count, nil
}

// IncrementUsage bumps the per-day counter by one and returns the new count.
// The ON CONFLICT increment keeps concurrent consumers from losing updates.
func (s *DefaultQuotaStore) IncrementUsage(userID, date string) (int, error) {
	record := models.UsageRecord{UserID: userID, Date: date, Count: 1}
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count":      gorm.Expr("usage_records.count + 1"),
			"updated_at": gorm.Expr("NOW()"),
		}),
	}).Create(&record).Error
	if err != nil {
		return 0, err
	}
	return s.GetUsageCount(userID, date)
}
