package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/myaralbdany4-glitch/MoodLens/internal/apierr"
	"github.com/myaralbdany4-glitch/MoodLens/internal/logger"
	"github.com/myaralbdany4-glitch/MoodLens/internal/repos"
	"github.com/myaralbdany4-glitch/MoodLens/internal/types"
)

const defaultHistoryLimit = 10

type HistoryService interface {
	Recent(ctx context.Context, userID string, limit int) ([]*types.MoodSession, error)
}

type historyService struct {
	db          *gorm.DB
	log         *logger.Logger
	sessionRepo repos.MoodSessionRepo
}

func NewHistoryService(db *gorm.DB, log *logger.Logger, sessionRepo repos.MoodSessionRepo) HistoryService {
	serviceLog := log.With("service", "HistoryService")
	return &historyService{db: db, log: serviceLog, sessionRepo: sessionRepo}
}

func (hs *historyService) Recent(ctx context.Context, userID string, limit int) ([]*types.MoodSession, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	rows, err := hs.sessionRepo.ListRecentByUser(ctx, hs.db, userID, limit)
	if err != nil {
		return nil, apierr.Internal("history_read_failed", err)
	}
	return rows, nil
}
