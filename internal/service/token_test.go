package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/calehr/taskbridge/internal/adapter/asana"
	"github.com/calehr/taskbridge/internal/config"
	"github.com/calehr/taskbridge/internal/domain"
	"github.com/calehr/taskbridge/internal/domain/mapping"
)

func newTokenFixture(store *mockStore, oauth *mockRefresher) *TokenService {
	svc := NewTokenService(store, oauth, testLogger(), config.Defaults().Sync)
	svc.now = func() time.Time {
		return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestValidAccessTokenFresh(t *testing.T) {
	store := &mockStore{
		getTokenFn: func(ctx context.Context, userID string) (*mapping.OAuthToken, error) {
			return &mapping.OAuthToken{
				UserID:      userID,
				AccessToken: "still-good",
				ExpiresAt:   time.Date(2026, 8, 29, 14, 0, 0, 0, time.UTC),
			}, nil
		},
	}
	oauth := &mockRefresher{}

	got, err := newTokenFixture(store, oauth).ValidAccessToken(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ValidAccessToken: %v", err)
	}
	if got != "still-good" {
		t.Errorf("token = %q, want still-good", got)
	}
	if oauth.calls != 0 {
		t.Errorf("refresh called %d times for a fresh token", oauth.calls)
	}
}

func TestValidAccessTokenNoCredential(t *testing.T) {
	_, err := newTokenFixture(&mockStore{}, &mockRefresher{}).ValidAccessToken(context.Background(), "u-1")
	if !errors.Is(err, domain.ErrNoToken) {
		t.Fatalf("err = %v, want ErrNoToken", err)
	}
}

func TestValidAccessTokenRefreshesWithinSkew(t *testing.T) {
	// Expires in 2 minutes; the 5 minute skew window forces a refresh.
	store := &mockStore{
		getTokenFn: func(ctx context.Context, userID string) (*mapping.OAuthToken, error) {
			return &mapping.OAuthToken{
				UserID:       userID,
				AccessToken:  "stale",
				RefreshToken: "refresh-1",
				ExpiresAt:    time.Date(2026, 8, 29, 12, 2, 0, 0, time.UTC),
			}, nil
		},
	}
	var saved *mapping.OAuthToken
	store.upsertTokenFn = func(ctx context.Context, tok *mapping.OAuthToken) error {
		saved = tok
		return nil
	}
	oauth := &mockRefresher{
		refreshFn: func(ctx context.Context, refreshToken string) (*asana.TokenResponse, error) {
			if refreshToken != "refresh-1" {
				t.Errorf("refresh token = %q", refreshToken)
			}
			return &asana.TokenResponse{
				AccessToken:  "fresh",
				RefreshToken: "refresh-2",
				ExpiresIn:    3600,
			}, nil
		},
	}

	got, err := newTokenFixture(store, oauth).ValidAccessToken(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ValidAccessToken: %v", err)
	}
	if got != "fresh" {
		t.Errorf("token = %q, want fresh", got)
	}
	if saved == nil {
		t.Fatal("refreshed token not persisted")
	}
	if saved.AccessToken != "fresh" || saved.RefreshToken != "refresh-2" {
		t.Errorf("persisted = %+v", saved)
	}
	want := time.Date(2026, 8, 29, 13, 0, 0, 0, time.UTC)
	if !saved.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", saved.ExpiresAt, want)
	}
}

func TestValidAccessTokenKeepsOldRefreshToken(t *testing.T) {
	store := &mockStore{
		getTokenFn: func(ctx context.Context, userID string) (*mapping.OAuthToken, error) {
			return &mapping.OAuthToken{
				UserID:       userID,
				AccessToken:  "stale",
				RefreshToken: "refresh-1",
				ExpiresAt:    time.Date(2026, 8, 29, 11, 0, 0, 0, time.UTC),
			}, nil
		},
	}
	var saved *mapping.OAuthToken
	store.upsertTokenFn = func(ctx context.Context, tok *mapping.OAuthToken) error {
		saved = tok
		return nil
	}
	// Response omits the refresh token: Asana did not rotate it.
	oauth := &mockRefresher{
		refreshFn: func(ctx context.Context, refreshToken string) (*asana.TokenResponse, error) {
			return &asana.TokenResponse{AccessToken: "fresh", ExpiresIn: 3600}, nil
		},
	}

	if _, err := newTokenFixture(store, oauth).ValidAccessToken(context.Background(), "u-1"); err != nil {
		t.Fatalf("ValidAccessToken: %v", err)
	}
	if saved == nil || saved.RefreshToken != "refresh-1" {
		t.Errorf("persisted = %+v, want old refresh token kept", saved)
	}
}

func TestValidAccessTokenRefreshRetries(t *testing.T) {
	store := &mockStore{
		getTokenFn: func(ctx context.Context, userID string) (*mapping.OAuthToken, error) {
			return &mapping.OAuthToken{
				UserID:       userID,
				AccessToken:  "stale",
				RefreshToken: "refresh-1",
				ExpiresAt:    time.Date(2026, 8, 29, 11, 0, 0, 0, time.UTC),
			}, nil
		},
	}
	oauth := &mockRefresher{
		refreshFn: func(ctx context.Context, refreshToken string) (*asana.TokenResponse, error) {
			return nil, errors.New("token endpoint status 503")
		},
	}

	svc := newTokenFixture(store, oauth)
	_, err := svc.ValidAccessToken(context.Background(), "u-1")
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	// Initial attempt plus the configured retries.
	want := int(config.Defaults().Sync.RefreshTries) + 1
	if oauth.calls != want {
		t.Errorf("refresh attempts = %d, want %d", oauth.calls, want)
	}
}

func TestValidAccessTokenExpiredWithoutRefreshToken(t *testing.T) {
	store := &mockStore{
		getTokenFn: func(ctx context.Context, userID string) (*mapping.OAuthToken, error) {
			return &mapping.OAuthToken{
				UserID:      userID,
				AccessToken: "stale",
				ExpiresAt:   time.Date(2026, 8, 29, 11, 0, 0, 0, time.UTC),
			}, nil
		},
	}

	_, err := newTokenFixture(store, &mockRefresher{}).ValidAccessToken(context.Background(), "u-1")
	if !errors.Is(err, domain.ErrNoToken) {
		t.Fatalf("err = %v, want ErrNoToken", err)
	}
}

func TestStoreTokenValidation(t *testing.T) {
	svc := newTokenFixture(&mockStore{}, &mockRefresher{})

	err := svc.StoreToken(context.Background(), &mapping.OAuthToken{UserID: "u-1"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation for missing access token", err)
	}

	err = svc.StoreToken(context.Background(), &mapping.OAuthToken{
		UserID:      "u-1",
		AccessToken: "tok",
		ExpiresAt:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Errorf("StoreToken: %v", err)
	}
}
