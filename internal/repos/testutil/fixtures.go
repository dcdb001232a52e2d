package testutil

import (
	"context"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/myaralbdany4-glitch/MoodLens/internal/types"
)

func SeedMoodSession(tb testing.TB, ctx context.Context, tx *gorm.DB, userID string, sessionType string, createdAt time.Time) *types.MoodSession {
	tb.Helper()
	confidence := 85.0
	s := &types.MoodSession{
		UserID:            userID,
		SessionType:       sessionType,
		MoodAnalysis:      datatypes.JSON([]byte(`{"emotions":[{"name":"calm","confidence":85}],"overallMood":"calm","moodScore":7,"confidence":85,"recommendations":["a","b","c"]}`)),
		EmotionsDetected:  datatypes.JSON([]byte(`[{"name":"calm","confidence":85}]`)),
		ConfidenceScore:   &confidence,
		AIRecommendations: datatypes.JSON([]byte(`["a","b","c"]`)),
		CreatedAt:         createdAt,
		UpdatedAt:         createdAt,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed mood session: %v", err)
	}
	return s
}
