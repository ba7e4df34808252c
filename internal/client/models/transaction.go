package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

type TransactionType string

const (
	TransactionPayment    TransactionType = "payment"
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
)

type Transaction struct {
	ID          ID                `json:"id"`
	Amount      decimal.Decimal   `json:"amount"`
	FromAddress string            `json:"fromAddress"`
	ToAddress   string            `json:"toAddress"`
	Timestamp   time.Time         `json:"timestamp"`
	Status      TransactionStatus `json:"status"`
	Type        TransactionType   `json:"type"`
	Description string            `json:"description,omitempty"`
}

// Field returns the value stored under the JSON field name, or nil when the
// field is unknown or an optional field is empty.
func (t Transaction) Field(name string) any {
	switch name {
	case "id":
		return string(t.ID)
	case "amount":
		return t.Amount
	case "fromAddress":
		return t.FromAddress
	case "toAddress":
		return t.ToAddress
	case "timestamp":
		return t.Timestamp
	case "status":
		return string(t.Status)
	case "type":
		return string(t.Type)
	case "description":
		if t.Description == "" {
			return nil
		}
		return t.Description
	default:
		return nil
	}
}

// TransactionCreate is the payload for sending a payment.
type TransactionCreate struct {
	RecipientPrincipal string
	Amount             decimal.Decimal
	Description        string
}

// CloneTransactions copies the slice so callers cannot alias store state.
func CloneTransactions(in []Transaction) []Transaction {
	if in == nil {
		return nil
	}
	out := make([]Transaction, len(in))
	copy(out, in)
	return out
}
