package apiclient

import (
	"context"

	"github.com/dmitrijs2005/paychain/internal/client/models"
)

func (c *Client) GetNotifications(ctx context.Context) (*models.NotificationList, error) {
	var out models.NotificationList
	if err := c.get(ctx, "/notifications", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetUnreadCount(ctx context.Context) (int, error) {
	var out models.UnreadCount
	if err := c.get(ctx, "/notifications/unread-count", nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id models.ID) error {
	return c.post(ctx, "/notifications/"+escape(id)+"/read", nil, nil)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.post(ctx, "/notifications/mark-all-read", nil, nil)
}
