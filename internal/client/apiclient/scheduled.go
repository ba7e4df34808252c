package apiclient

import (
	"context"

	"github.com/dmitrijs2005/paychain/internal/client/models"
)

const scheduledPath = "/scheduled-payments"

func (c *Client) ListScheduledPayments(ctx context.Context) ([]models.ScheduledPayment, error) {
	var out []models.ScheduledPayment
	if err := c.get(ctx, scheduledPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetScheduledPayment(ctx context.Context, id models.ID) (*models.ScheduledPayment, error) {
	var p models.ScheduledPayment
	if err := c.get(ctx, scheduledPath+"/"+escape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreateScheduledPayment(ctx context.Context, p models.ScheduledPayment) (*models.ScheduledPayment, error) {
	var out models.ScheduledPayment
	if err := c.post(ctx, scheduledPath, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateScheduledPayment(ctx context.Context, id models.ID, p models.ScheduledPayment) (*models.ScheduledPayment, error) {
	var out models.ScheduledPayment
	if err := c.put(ctx, scheduledPath+"/"+escape(id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteScheduledPayment(ctx context.Context, id models.ID) error {
	return c.delete(ctx, scheduledPath+"/"+escape(id))
}
