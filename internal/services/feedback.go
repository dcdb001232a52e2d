package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/myaralbdany4-glitch/MoodLens/internal/apierr"
	"github.com/myaralbdany4-glitch/MoodLens/internal/logger"
	"github.com/myaralbdany4-glitch/MoodLens/internal/repos"
)

type FeedbackService interface {
	Submit(ctx context.Context, userID string, sessionID int64, rating int) error
}

type feedbackService struct {
	db          *gorm.DB
	log         *logger.Logger
	sessionRepo repos.MoodSessionRepo
}

func NewFeedbackService(db *gorm.DB, log *logger.Logger, sessionRepo repos.MoodSessionRepo) FeedbackService {
	serviceLog := log.With("service", "FeedbackService")
	return &feedbackService{db: db, log: serviceLog, sessionRepo: sessionRepo}
}

func (fs *feedbackService) Submit(ctx context.Context, userID string, sessionID int64, rating int) error {
	if rating < 1 || rating > 5 {
		return apierr.Validation("invalid_rating", fmt.Errorf("rating %d out of range [1,5]", rating))
	}

	err := fs.sessionRepo.SetFeedback(ctx, fs.db, sessionID, userID, rating)
	switch {
	case err == nil:
		fs.log.Info("feedback recorded", "user_id", userID, "session_id", sessionID, "rating", rating)
		return nil
	case errors.Is(err, repos.ErrNotFound):
		return apierr.NotFound("session_not_found", err)
	case errors.Is(err, repos.ErrFeedbackAlreadySet):
		return apierr.Conflict("feedback_already_submitted", err)
	default:
		return apierr.Internal("feedback_write_failed", err)
	}
}
