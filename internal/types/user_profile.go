package types

import (
	"time"

	"gorm.io/datatypes"
)

const DefaultPreferredLanguage = "ar"

// UserProfile is created lazily on the first authenticated request and never
// deleted by this system. user_id matches the external identity service's id.
type UserProfile struct {
	ID                      int64          `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	UserID                  string         `gorm:"uniqueIndex;not null;column:user_id" json:"user_id"`
	AgeRange                *string        `gorm:"column:age_range" json:"age_range"`
	PreferredLanguage       string         `gorm:"not null;default:ar;column:preferred_language" json:"preferred_language"`
	Timezone                *string        `gorm:"column:timezone" json:"timezone"`
	MoodTrackingEnabled     int            `gorm:"not null;default:1;column:mood_tracking_enabled" json:"mood_tracking_enabled"`
	NotificationPreferences datatypes.JSON `gorm:"column:notification_preferences" json:"notification_preferences"`
	CreatedAt               time.Time      `gorm:"not null;autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt               time.Time      `gorm:"not null;autoUpdateTime;column:updated_at" json:"updated_at"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
