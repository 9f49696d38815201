// ABOUTME: Short-lived access token issuance for live sessions
// ABOUTME: HTTP client for the external mint endpoint
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// TokenError reports that token issuance failed. Tokens are single-use with
// a short expiry, so callers must not retry silently.
type TokenError struct {
	Err error
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("live token: %v", e.Err)
}

func (e *TokenError) Unwrap() error { return e.Err }

// TokenIssuer mints one short-lived, single-use live session token.
type TokenIssuer interface {
	IssueLiveToken(ctx context.Context) (string, error)
}

// HTTPTokenIssuer calls the serverless mint endpoint.
type HTTPTokenIssuer struct {
	URL    string
	APIKey string
	Client *http.Client
}

// NewHTTPTokenIssuer creates an issuer for the given endpoint.
func NewHTTPTokenIssuer(url, apiKey string) *HTTPTokenIssuer {
	return &HTTPTokenIssuer{
		URL:    url,
		APIKey: apiKey,
		Client: &http.Client{Timeout: 15 * time.Second},
	}
}

type mintResponse struct {
	OK    bool   `json:"ok"`
	Token string `json:"token"`
	Error string `json:"error"`
}

// IssueLiveToken POSTs the mint endpoint and returns the token. Returns
// *TokenError on any failure.
func (i *HTTPTokenIssuer) IssueLiveToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.URL, nil)
	if err != nil {
		return "", &TokenError{Err: err}
	}
	if i.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+i.APIKey)
	}

	client := i.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", &TokenError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &TokenError{Err: fmt.Errorf("mint endpoint returned %s", resp.Status)}
	}

	var mint mintResponse
	if err := json.NewDecoder(resp.Body).Decode(&mint); err != nil {
		return "", &TokenError{Err: fmt.Errorf("decode response: %w", err)}
	}

	if !mint.OK || mint.Token == "" {
		msg := mint.Error
		if msg == "" {
			msg = "failed to mint live token"
		}
		return "", &TokenError{Err: fmt.Errorf("%s", msg)}
	}

	return mint.Token, nil
}
