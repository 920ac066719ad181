package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/calehr/taskbridge/internal/adapter/asana"
	"github.com/calehr/taskbridge/internal/config"
	"github.com/calehr/taskbridge/internal/domain"
	"github.com/calehr/taskbridge/internal/domain/mapping"
	"github.com/calehr/taskbridge/internal/port/database"
)

// OAuthRefresher exchanges a refresh token for a fresh access token.
type OAuthRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*asana.TokenResponse, error)
}

// TokenService manages per-user Asana OAuth credentials. It implements
// tokenprovider.Provider for the sync engine and exposes the store/delete
// operations used by the token routes.
type TokenService struct {
	store database.Store
	oauth OAuthRefresher
	log   *slog.Logger
	cfg   config.Sync
	now   func() time.Time
}

// NewTokenService creates a token service.
func NewTokenService(store database.Store, oauth OAuthRefresher, log *slog.Logger, cfg config.Sync) *TokenService {
	return &TokenService{
		store: store,
		oauth: oauth,
		log:   log,
		cfg:   cfg,
		now:   time.Now,
	}
}

// ValidAccessToken returns an access token that is good for at least the
// configured skew window, refreshing through the OAuth endpoint when the
// stored one is stale. A user with no stored credential gets
// domain.ErrNoToken.
func (s *TokenService) ValidAccessToken(ctx context.Context, userID string) (string, error) {
	tok, err := s.store.GetOAuthToken(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return "", domain.ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("load oauth token: %w", err)
	}

	if !tok.Expired(s.now(), s.cfg.TokenSkew) {
		return tok.AccessToken, nil
	}
	if tok.RefreshToken == "" {
		return "", fmt.Errorf("access token expired and no refresh token stored: %w", domain.ErrNoToken)
	}

	var tr *asana.TokenResponse
	backoff := retry.WithMaxRetries(s.cfg.RefreshTries, retry.NewExponential(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		var rerr error
		tr, rerr = s.oauth.Refresh(ctx, tok.RefreshToken)
		if rerr != nil {
			return retry.RetryableError(rerr)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("refresh access token: %w", err)
	}

	// Asana rotates refresh tokens on some grants; keep the old one when
	// the response omits it.
	refresh := tr.RefreshToken
	if refresh == "" {
		refresh = tok.RefreshToken
	}
	updated := &mapping.OAuthToken{
		UserID:       userID,
		AccessToken:  tr.AccessToken,
		RefreshToken: refresh,
		ExpiresAt:    tr.ExpiresAt(s.now()),
	}
	if err := s.store.UpsertOAuthToken(ctx, updated); err != nil {
		// The refreshed token is still usable this pass even if the save
		// failed; the next pass will refresh again.
		s.log.Error("persist refreshed token",
			slog.String("user_id", userID),
			slog.Any("error", err))
	} else {
		s.log.Info("oauth token refreshed", slog.String("user_id", userID))
	}
	return tr.AccessToken, nil
}

// StoreToken validates and persists a user's OAuth credential.
func (s *TokenService) StoreToken(ctx context.Context, tok *mapping.OAuthToken) error {
	if tok.UserID == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("%w: access token is required", domain.ErrValidation)
	}
	if tok.ExpiresAt.IsZero() {
		return fmt.Errorf("%w: expiry is required", domain.ErrValidation)
	}
	return s.store.UpsertOAuthToken(ctx, tok)
}

// DeleteToken removes a user's stored credential.
func (s *TokenService) DeleteToken(ctx context.Context, userID string) error {
	return s.store.DeleteOAuthToken(ctx, userID)
}
