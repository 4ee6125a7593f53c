// Package authclient is a small HTTP client for services that talk to the
// auth service.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrUnauthorized = errors.New("authclient: unauthorized")
	ErrTokenReuse   = errors.New("authclient: refresh token reuse")
	ErrNotFound     = errors.New("authclient: not found")
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient takes the service root, e.g. "http://auth:8001".
func NewClient(authServiceURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(authServiceURL, "/") + "/api/v1/users",
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// RefreshTokens rotates refreshToken on behalf of the device described by
// userAgent.
func (c *Client) RefreshTokens(ctx context.Context, refreshToken, userAgent string) (*TokenPair, error) {
	body, err := json.Marshal(map[string]string{
		"refresh_token": refreshToken,
		"user_agent":    userAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/refresh", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var result TokenPair
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UserEmail looks up the email of userID.
func (c *Client) UserEmail(ctx context.Context, userID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(userID)+"/email", nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	var email string
	if err := c.do(req, &email); err != nil {
		return "", err
	}
	return email, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusConflict:
		return ErrTokenReuse
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("%s %s failed with status: %d", req.Method, req.URL.Path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
