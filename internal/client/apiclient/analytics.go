package apiclient

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dmitrijs2005/paychain/internal/client/models"
)

func periodQuery(p models.Period) (url.Values, error) {
	if p == "" {
		p = models.PeriodMonth
	}
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, p)
	}
	return url.Values{"period": {string(p)}}, nil
}

// GetTransactionSummary totals the caller's activity over period ("" means month).
func (c *Client) GetTransactionSummary(ctx context.Context, p models.Period) (*models.TransactionSummary, error) {
	q, err := periodQuery(p)
	if err != nil {
		return nil, err
	}
	var out models.TransactionSummary
	if err := c.get(ctx, "/analytics/transaction-summary", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetSpendingByCategory(ctx context.Context, p models.Period) ([]models.SpendingCategory, error) {
	q, err := periodQuery(p)
	if err != nil {
		return nil, err
	}
	var out []models.SpendingCategory
	if err := c.get(ctx, "/analytics/spending-categories", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}
