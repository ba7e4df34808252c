package apiclient

import (
	"context"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/paychain/internal/client/models"
)

func listQuery(lq models.ListQuery) url.Values {
	q := url.Values{}
	page, size := lq.Page, lq.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(size))
	for k, v := range lq.Filters {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

func (c *Client) GetSystemStats(ctx context.Context) (*models.SystemStats, error) {
	var env models.Envelope[models.SystemStats]
	if err := c.get(ctx, "/api/system-stats", nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *Client) ListSecurityUsers(ctx context.Context, lq models.ListQuery) (*models.Page[models.UserSecurity], error) {
	var out models.Page[models.UserSecurity]
	if err := c.get(ctx, "/api/security/users", listQuery(lq), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) BlockUser(ctx context.Context, id models.ID) (*models.UserSecurity, error) {
	return c.securityAction(ctx, id, "block")
}

func (c *Client) UnblockUser(ctx context.Context, id models.ID) (*models.UserSecurity, error) {
	return c.securityAction(ctx, id, "unblock")
}

func (c *Client) securityAction(ctx context.Context, id models.ID, action string) (*models.UserSecurity, error) {
	var env models.Envelope[models.UserSecurity]
	if err := c.post(ctx, "/api/security/users/"+escape(id)+"/"+action, nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *Client) ListErrors(ctx context.Context, lq models.ListQuery) (*models.Page[models.PayChainError], error) {
	var out models.Page[models.PayChainError]
	if err := c.get(ctx, "/api/errors", listQuery(lq), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResolveError(ctx context.Context, id models.ID) (*models.PayChainError, error) {
	var env models.Envelope[models.PayChainError]
	if err := c.post(ctx, "/api/errors/"+escape(id)+"/resolve", nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}
