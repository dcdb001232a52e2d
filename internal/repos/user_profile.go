package repos

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/myaralbdany4-glitch/MoodLens/internal/logger"
	"github.com/myaralbdany4-glitch/MoodLens/internal/types"
)

type UserProfileRepo interface {
	EnsureExists(ctx context.Context, tx *gorm.DB, userID string, preferredLanguage string) error
	GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*types.UserProfile, error)
}

type userProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserProfileRepo(db *gorm.DB, baseLog *logger.Logger) UserProfileRepo {
	repoLog := baseLog.With("repo", "UserProfileRepo")
	return &userProfileRepo{db: db, log: repoLog}
}

// EnsureExists creates the profile row if absent, as a single conditional
// insert against the unique user_id index. Concurrent first requests for the
// same identity still yield exactly one row.
func (pr *userProfileRepo) EnsureExists(ctx context.Context, tx *gorm.DB, userID string, preferredLanguage string) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	profile := &types.UserProfile{
		UserID:              userID,
		PreferredLanguage:   preferredLanguage,
		MoodTrackingEnabled: 1,
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(profile).Error
}

func (pr *userProfileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*types.UserProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var result types.UserProfile
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&result).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}
