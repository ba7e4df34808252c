package apiclient

import (
	"context"

	"github.com/dmitrijs2005/paychain/internal/client/models"
)

func (c *Client) GetCurrentUser(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.get(ctx, "/users/me", nil, &u); err != nil {
		return nil, err
	}
	if u.ID == "" && u.Email == "" {
		return nil, &payloadError{op: "current user", detail: "empty user"}
	}
	return &u, nil
}

func (c *Client) GetUser(ctx context.Context, id models.ID) (*models.User, error) {
	var u models.User
	if err := c.get(ctx, "/users/"+escape(id), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser PUTs the partial profile. The returned user is whatever the
// backend echoed and may be nil.
func (c *Client) UpdateUser(ctx context.Context, id models.ID, p models.UserUpdate) (*models.User, error) {
	var u *models.User
	if err := c.put(ctx, "/users/"+escape(id), p, &u); err != nil {
		return nil, err
	}
	return u, nil
}
