package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/myaralbdany4-glitch/MoodLens/internal/apierr"
	"github.com/myaralbdany4-glitch/MoodLens/internal/logger"
	"github.com/myaralbdany4-glitch/MoodLens/internal/repos"
	"github.com/myaralbdany4-glitch/MoodLens/internal/types"
)

type ProfileService interface {
	// Bootstrap lazily creates the caller's profile row with the default
	// locale. Safe to call on every authenticated request.
	Bootstrap(ctx context.Context, userID string) error
	Get(ctx context.Context, userID string) (*types.UserProfile, error)
}

type profileService struct {
	db          *gorm.DB
	log         *logger.Logger
	profileRepo repos.UserProfileRepo
}

func NewProfileService(db *gorm.DB, log *logger.Logger, profileRepo repos.UserProfileRepo) ProfileService {
	serviceLog := log.With("service", "ProfileService")
	return &profileService{db: db, log: serviceLog, profileRepo: profileRepo}
}

func (ps *profileService) Bootstrap(ctx context.Context, userID string) error {
	if err := ps.profileRepo.EnsureExists(ctx, ps.db, userID, types.DefaultPreferredLanguage); err != nil {
		return apierr.Internal("profile_bootstrap_failed", err)
	}
	return nil
}

func (ps *profileService) Get(ctx context.Context, userID string) (*types.UserProfile, error) {
	profile, err := ps.profileRepo.GetByUserID(ctx, ps.db, userID)
	if err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return nil, apierr.NotFound("profile_not_found", err)
		}
		return nil, apierr.Internal("profile_read_failed", err)
	}
	return profile, nil
}
