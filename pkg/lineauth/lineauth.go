// Package lineauth implements the LINE Login server side: exchanging the
// callback code for an access token and fetching the member profile. The
// session itself is the caller's concern.
package lineauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	tokenURL   = "https://api.line.me/oauth2/v2.1/token"
	profileURL = "https://api.line.me/v2/profile"
)

// Doer is the outbound HTTP client seam; main passes an httplb client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	ChannelID     string
	ChannelSecret string
	RedirectURL   string
}

type Client struct {
	cfg  Config
	http Doer
}

func New(cfg Config, httpClient Doer) *Client {
	return &Client{cfg: cfg, http: httpClient}
}

// Profile is the LINE member profile the login flow resolves.
type Profile struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	PictureURL  string `json:"pictureUrl"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// AuthorizeURL builds the LINE authorize redirect for the login-start
// endpoint. state must be an unguessable nonce the callback re-checks.
func (c *Client) AuthorizeURL(state string) string {
	v := url.Values{}
	v.Set("response_type", "code")
	v.Set("client_id", c.cfg.ChannelID)
	v.Set("redirect_uri", c.cfg.RedirectURL)
	v.Set("state", state)
	v.Set("scope", "profile openid")
	return "https://access.line.me/oauth2/v2.1/authorize?" + v.Encode()
}

// ExchangeCode trades the callback authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.cfg.RedirectURL)
	form.Set("client_id", c.cfg.ChannelID)
	form.Set("client_secret", c.cfg.ChannelSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("line token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("line token endpoint returned %d: %s", resp.StatusCode, body)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("line token decode failed: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("line token response missing access_token")
	}
	return tr.AccessToken, nil
}

// GetProfile fetches the member profile for an access token.
func (c *Client) GetProfile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profileURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("line profile request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("line profile endpoint returned %d: %s", resp.StatusCode, body)
	}

	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("line profile decode failed: %w", err)
	}
	return &p, nil
}
