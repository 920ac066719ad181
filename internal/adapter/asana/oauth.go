package asana

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/calehr/taskbridge/internal/config"
)

// OAuthClient exchanges refresh tokens against the Asana OAuth endpoint.
type OAuthClient struct {
	tokenURL     string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

// NewOAuthClient creates an OAuth client from config.
func NewOAuthClient(cfg config.Asana) *OAuthClient {
	return &OAuthClient{
		tokenURL:     cfg.TokenURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
	}
}

// TokenResponse is the OAuth token endpoint response.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // seconds
	TokenType    string `json:"token_type"`
}

// ExpiresAt converts the relative expiry into an absolute timestamp.
func (r *TokenResponse) ExpiresAt(now time.Time) time.Time {
	return now.Add(time.Duration(r.ExpiresIn) * time.Second)
}

// Refresh exchanges a refresh token for a fresh access token. Asana rotates
// the refresh token on some grants; an empty refresh_token in the response
// means the old one stays valid.
func (c *OAuthClient) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var tr TokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("unmarshal token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint returned empty access token")
	}
	return &tr, nil
}
