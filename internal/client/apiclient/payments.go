package apiclient

import (
	"context"
	"net/url"

	"github.com/dmitrijs2005/paychain/internal/client/models"
	"github.com/shopspring/decimal"
)

// GetReceiveQRCode returns the payload for the caller's receive QR code.
func (c *Client) GetReceiveQRCode(ctx context.Context) (*models.QRCode, error) {
	var out models.QRCode
	if err := c.get(ctx, "/qr-codes/receive", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GeneratePaymentLink asks for a shareable pay-me link. A zero amount lets
// the payer choose.
func (c *Client) GeneratePaymentLink(ctx context.Context, amount decimal.Decimal, description string) (*models.PaymentLink, error) {
	q := url.Values{}
	if !amount.IsZero() {
		q.Set("amount", amount.String())
	}
	if description != "" {
		q.Set("description", description)
	}
	var out models.PaymentLink
	if err := c.get(ctx, "/payment-links/generate", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
