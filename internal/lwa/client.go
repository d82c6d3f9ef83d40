// Package lwa exchanges a Login-with-Amazon refresh token for a
// short-lived access token. One fresh token is fetched per run; no
// caching or expiry tracking.
package lwa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"
)

// AuthError reports a failed or malformed token exchange. It aborts the
// whole run; the caller never retries within a run.
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("lwa token exchange failed: status=%d body=%s", e.StatusCode, e.Body)
}

// Client performs the refresh-token grant against the identity endpoint.
type Client struct {
	httpClient   *http.Client
	tokenURL     string
	clientID     string
	clientSecret string
	refreshToken string
	log          *log.Entry
}

// NewClient returns a Client. httpClient must have a bounded timeout.
func NewClient(httpClient *http.Client, tokenURL, clientID, clientSecret, refreshToken string) *Client {
	return &Client{
		httpClient:   httpClient,
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
		log:          log.WithField("component", "lwa"),
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// AccessToken exchanges the refresh token for a bearer token.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {c.refreshToken},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &AuthError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil || tok.AccessToken == "" {
		return "", &AuthError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	c.log.Debug("retrieved LWA token")
	return tok.AccessToken, nil
}
