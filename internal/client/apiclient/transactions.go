package apiclient

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/paychain/internal/client/models"
	"github.com/shopspring/decimal"
)

const DefaultTransactionLimit = 100

type createTransactionRequest struct {
	RecipientPrincipal string      `json:"recipient_principal"`
	Amount             json.Number `json:"amount"`
	Description        string      `json:"description,omitempty"`
}

// GetTransactions lists the caller's transactions. limit <= 0 means
// DefaultTransactionLimit.
func (c *Client) GetTransactions(ctx context.Context, skip, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = DefaultTransactionLimit
	}
	q := url.Values{"skip": {strconv.Itoa(max(skip, 0))}, "limit": {strconv.Itoa(limit)}}
	var txs []models.Transaction
	if err := c.get(ctx, "/transactions", q, &txs); err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	return txs, nil
}

func (c *Client) CreateTransaction(ctx context.Context, in models.TransactionCreate) (*models.Transaction, error) {
	req := createTransactionRequest{
		RecipientPrincipal: in.RecipientPrincipal,
		Amount:             json.Number(in.Amount.String()),
		Description:        in.Description,
	}
	var tx models.Transaction
	if err := c.post(ctx, "/transactions", req, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (c *Client) GetBalance(ctx context.Context) (decimal.Decimal, error) {
	var b models.Balance
	if err := c.get(ctx, "/balance", nil, &b); err != nil {
		return decimal.Decimal{}, err
	}
	return b.Balance, nil
}
