package services

import (
	"context"
	"errors"

	"github.com/myaralbdany4-glitch/MoodLens/internal/apierr"
	"github.com/myaralbdany4-glitch/MoodLens/internal/clients/identity"
	"github.com/myaralbdany4-glitch/MoodLens/internal/clients/redis"
	"github.com/myaralbdany4-glitch/MoodLens/internal/logger"
)

// AuthService is the session boundary over the external identity service.
// It never mints or validates tokens itself.
type AuthService interface {
	RedirectURL(ctx context.Context) (string, error)
	ExchangeCode(ctx context.Context, code string) (string, error)
	ResolveToken(ctx context.Context, sessionToken string) (*identity.Identity, error)
	Logout(ctx context.Context, sessionToken string) error
}

type authService struct {
	log            *logger.Logger
	identityClient identity.Client
	cache          redis.IdentityCache // nil when redis is not configured
}

func NewAuthService(log *logger.Logger, identityClient identity.Client, cache redis.IdentityCache) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{log: serviceLog, identityClient: identityClient, cache: cache}
}

func (as *authService) RedirectURL(ctx context.Context) (string, error) {
	url, err := as.identityClient.RedirectURL(ctx)
	if err != nil {
		return "", apierr.Upstream("redirect_url_failed", err)
	}
	return url, nil
}

func (as *authService) ExchangeCode(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", apierr.Validation("code_required", errors.New("No authorization code provided"))
	}
	token, err := as.identityClient.ExchangeCode(ctx, code)
	if err != nil {
		return "", apierr.Upstream("code_exchange_failed", err)
	}
	return token, nil
}

func (as *authService) ResolveToken(ctx context.Context, sessionToken string) (*identity.Identity, error) {
	if sessionToken == "" {
		return nil, apierr.Auth("missing_session", errors.New("no session token"))
	}

	if as.cache != nil {
		if ident, ok := as.cache.Get(ctx, sessionToken); ok {
			return ident, nil
		}
	}

	ident, err := as.identityClient.CurrentUser(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, identity.ErrUnauthenticated) {
			return nil, apierr.Auth("invalid_session", err)
		}
		return nil, apierr.Upstream("identity_lookup_failed", err)
	}

	if as.cache != nil {
		as.cache.Set(ctx, sessionToken, ident)
	}
	return ident, nil
}

// Logout clears local state and best-effort revokes the remote session.
// The cookie is gone either way, so a remote failure only gets logged.
func (as *authService) Logout(ctx context.Context, sessionToken string) error {
	if sessionToken == "" {
		return nil
	}
	if as.cache != nil {
		as.cache.Delete(ctx, sessionToken)
	}
	if err := as.identityClient.DeleteSession(ctx, sessionToken); err != nil {
		as.log.Warn("remote session delete failed", "error", err)
	}
	return nil
}
