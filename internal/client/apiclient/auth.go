package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/paychain/internal/client/models"
)

// Login exchanges credentials for a bearer token. Credentials travel in the
// query string, which the backend requires.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	q := url.Values{"email": {email}, "password": {password}}
	var resp models.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/login", q, nil, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, &payloadError{op: "login", detail: "missing access_token"}
	}
	return &resp, nil
}

// Register creates an account. It does not establish a session.
func (c *Client) Register(ctx context.Context, email, password, principalID string) error {
	q := url.Values{"email": {email}, "password": {password}, "principal_id": {principalID}}
	return c.get(ctx, "/api/register", q, nil)
}

// Health pings the backend.
func (c *Client) Health(ctx context.Context) error {
	return c.get(ctx, "/health", nil, nil)
}
