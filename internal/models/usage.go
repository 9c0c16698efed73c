package models

import (
	"time"
)

// UsageRecord tracks how many generations a user has consumed on a given
// calendar day. One row per (user, date); the count only ever goes up.
type UsageRecord struct {
	ID        uint   `gorm:"primarykey"`
	UserID    string `gorm:"uniqueIndex:idx_usage_user_date;not null"`
	Date      string `gorm:"uniqueIndex:idx_usage_user_date;not null"` // YYYY-MM-DD, server-local
	Count     int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	TierFree    = "free"
	TierPremium = "premium"
)

// UserTier records a user's account class. A missing row means free.
type UserTier struct {
	UserID    string `gorm:"primaryKey"`
	Tier      string `gorm:"not null;default:free"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
