package types

import (
	"time"

	"gorm.io/datatypes"
)

const (
	SessionTypeFace     = "face"
	SessionTypeVoice    = "voice"
	SessionTypeCombined = "combined"
)

// MoodSession is one persisted record of a single face/voice analysis event.
// The row is created atomically with its full analysis payload; user_feedback
// is the only column mutable after creation.
type MoodSession struct {
	ID                int64          `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	UserID            string         `gorm:"index;not null;column:user_id" json:"user_id"`
	SessionType       string         `gorm:"not null;column:session_type" json:"session_type"`
	MoodAnalysis      datatypes.JSON `gorm:"column:mood_analysis" json:"mood_analysis"`
	EmotionsDetected  datatypes.JSON `gorm:"column:emotions_detected" json:"emotions_detected"`
	ConfidenceScore   *float64       `gorm:"column:confidence_score" json:"confidence_score"`
	AIRecommendations datatypes.JSON `gorm:"column:ai_recommendations" json:"ai_recommendations"`
	UserFeedback      *int           `gorm:"column:user_feedback" json:"user_feedback"`
	CreatedAt         time.Time      `gorm:"not null;autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null;autoUpdateTime;column:updated_at" json:"updated_at"`
}

func (MoodSession) TableName() string {
	return "mood_sessions"
}
