package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/paychain/internal/client/models"
	"github.com/dmitrijs2005/paychain/internal/dbx"
)

// SaveTransactions replaces the cached transactions and stamps the sync time.
func (l *Local) SaveTransactions(ctx context.Context, txs []models.Transaction, syncedAt time.Time) error {
	if txs == nil {
		txs = []models.Transaction{}
	}
	data, err := json.Marshal(txs)
	if err != nil {
		return fmt.Errorf("encode transactions: %w", err)
	}
	stamp, err := syncedAt.UTC().MarshalText()
	if err != nil {
		return fmt.Errorf("encode sync time: %w", err)
	}

	return l.update(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := set(ctx, tx, KeyTransactions, data); err != nil {
			return err
		}
		return set(ctx, tx, KeyLastSync, stamp)
	})
}

// CachedTransactions returns the cached transactions; nil when nothing is cached.
func (l *Local) CachedTransactions(ctx context.Context) ([]models.Transaction, error) {
	data, err := l.Get(ctx, KeyTransactions)
	if err != nil || data == nil {
		return nil, err
	}
	var txs []models.Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		return nil, fmt.Errorf("decode cached transactions: %w", err)
	}
	return txs, nil
}

func (l *Local) SaveReceipts(ctx context.Context, receipts []models.NFTReceipt) error {
	if receipts == nil {
		receipts = []models.NFTReceipt{}
	}
	data, err := json.Marshal(receipts)
	if err != nil {
		return fmt.Errorf("encode receipts: %w", err)
	}
	return l.Set(ctx, KeyReceipts, data)
}

func (l *Local) CachedReceipts(ctx context.Context) ([]models.NFTReceipt, error) {
	data, err := l.Get(ctx, KeyReceipts)
	if err != nil || data == nil {
		return nil, err
	}
	var receipts []models.NFTReceipt
	if err := json.Unmarshal(data, &receipts); err != nil {
		return nil, fmt.Errorf("decode cached receipts: %w", err)
	}
	return receipts, nil
}

// LastSync reports when transactions were last cached. ok is false if never.
func (l *Local) LastSync(ctx context.Context) (t time.Time, ok bool, err error) {
	data, err := l.Get(ctx, KeyLastSync)
	if err != nil || data == nil {
		return time.Time{}, false, err
	}
	if err := t.UnmarshalText(data); err != nil {
		return time.Time{}, false, fmt.Errorf("decode sync time: %w", err)
	}
	return t, true, nil
}

// ClearCache drops the offline cache. The credential and session slice stay.
func (l *Local) ClearCache(ctx context.Context) error {
	return l.update(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		for _, k := range []string{KeyTransactions, KeyReceipts, KeyLastSync} {
			if err := del(ctx, tx, k); err != nil {
				return err
			}
		}
		return nil
	})
}
