package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/myaralbdany4-glitch/MoodLens/internal/logger"
	"github.com/myaralbdany4-glitch/MoodLens/internal/types"
)

type MoodSessionRepo interface {
	Insert(ctx context.Context, tx *gorm.DB, session *types.MoodSession) (*types.MoodSession, error)
	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.MoodSession, error)
	ListRecentByUser(ctx context.Context, tx *gorm.DB, userID string, limit int) ([]*types.MoodSession, error)
	SetFeedback(ctx context.Context, tx *gorm.DB, id int64, userID string, rating int) error
}

type moodSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMoodSessionRepo(db *gorm.DB, baseLog *logger.Logger) MoodSessionRepo {
	repoLog := baseLog.With("repo", "MoodSessionRepo")
	return &moodSessionRepo{db: db, log: repoLog}
}

func (mr *moodSessionRepo) Insert(ctx context.Context, tx *gorm.DB, session *types.MoodSession) (*types.MoodSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	if err := transaction.WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (mr *moodSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.MoodSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var result types.MoodSession
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (mr *moodSessionRepo) ListRecentByUser(ctx context.Context, tx *gorm.DB, userID string, limit int) ([]*types.MoodSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var results []*types.MoodSession
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// SetFeedback records the rating on the row matching both the session id and
// the caller. The update is scoped so a cross-user id can neither mutate nor
// probe another caller's row; the rating lands at most once per session.
func (mr *moodSessionRepo) SetFeedback(ctx context.Context, tx *gorm.DB, id int64, userID string, rating int) error {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.MoodSession{}).
		Where("id = ? AND user_id = ? AND user_feedback IS NULL", id, userID).
		Update("user_feedback", rating)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.MoodSession{}).
		Where("id = ? AND user_id = ?", id, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrFeedbackAlreadySet
	}
	return ErrNotFound
}
