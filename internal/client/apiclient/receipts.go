package apiclient

import (
	"context"

	"github.com/dmitrijs2005/paychain/internal/client/models"
)

const receiptsPath = "/nft-receipts"

func (c *Client) ListReceipts(ctx context.Context) ([]models.NFTReceipt, error) {
	var out []models.NFTReceipt
	if err := c.get(ctx, receiptsPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetReceipt(ctx context.Context, id models.ID) (*models.NFTReceipt, error) {
	var r models.NFTReceipt
	if err := c.get(ctx, receiptsPath+"/"+escape(id), nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// GenerateReceipt mints a receipt for a completed transaction.
func (c *Client) GenerateReceipt(ctx context.Context, transactionID models.ID) (*models.NFTReceipt, error) {
	body := struct {
		TransactionID string `json:"transaction_id"`
	}{transactionID.String()}

	var r models.NFTReceipt
	if err := c.post(ctx, receiptsPath, body, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
