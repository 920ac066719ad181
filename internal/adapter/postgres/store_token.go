package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/calehr/taskbridge/internal/domain/mapping"
)

func (s *Store) GetOAuthToken(ctx context.Context, userID string) (*mapping.OAuthToken, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT user_id, access_token, refresh_token, expires_at, updated_at
		FROM oauth_tokens WHERE user_id = $1`, userID)

	var t mapping.OAuthToken
	err := row.Scan(&t.UserID, &t.AccessToken, &t.RefreshToken, &t.ExpiresAt, &t.UpdatedAt)
	if err != nil {
		return nil, notFoundWrap(err, "get oauth token for %s", userID)
	}
	return &t, nil
}

// UpsertOAuthToken stores or replaces the user's credential. Refresh
// rotates both tokens, so the whole row is replaced atomically.
func (s *Store) UpsertOAuthToken(ctx context.Context, t *mapping.OAuthToken) error {
	t.UpdatedAt = time.Now().UTC()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO oauth_tokens (user_id, access_token, refresh_token, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
		  access_token  = EXCLUDED.access_token,
		  refresh_token = EXCLUDED.refresh_token,
		  expires_at    = EXCLUDED.expires_at,
		  updated_at    = EXCLUDED.updated_at`,
		t.UserID, t.AccessToken, t.RefreshToken, t.ExpiresAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert oauth token: %w", err)
	}
	return nil
}

func (s *Store) DeleteOAuthToken(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM oauth_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete oauth token: %w", err)
	}
	return nil
}
