package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Frequency string

const (
	FrequencyOnce      Frequency = "once"
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// ScheduledPayment is a recurring transfer managed by the backend scheduler.
// Dates are calendar dates in YYYY-MM-DD form.
type ScheduledPayment struct {
	ID                 ID              `json:"id,omitempty"`
	RecipientPrincipal string          `json:"recipient_principal"`
	Amount             decimal.Decimal `json:"amount"`
	Description        string          `json:"description,omitempty"`
	StartDate          string          `json:"start_date"`
	Frequency          Frequency       `json:"frequency"`
	EndDate            string          `json:"end_date,omitempty"`
	MaxPayments        *int            `json:"max_payments,omitempty"`
	IsActive           bool            `json:"is_active"`
	NextPaymentDate    string          `json:"next_payment_date,omitempty"`
	PaymentsMade       int             `json:"payments_made,omitempty"`
}

func (p ScheduledPayment) Field(name string) any {
	switch name {
	case "id":
		return string(p.ID)
	case "recipient_principal":
		return p.RecipientPrincipal
	case "amount":
		return p.Amount
	case "description":
		if p.Description == "" {
			return nil
		}
		return p.Description
	case "start_date":
		return p.StartDate
	case "frequency":
		return string(p.Frequency)
	case "next_payment_date":
		if p.NextPaymentDate == "" {
			return nil
		}
		return p.NextPaymentDate
	case "is_active":
		return p.IsActive
	case "payments_made":
		return p.PaymentsMade
	default:
		return nil
	}
}

// NFTReceipt is the on-chain receipt minted for a completed transaction.
type NFTReceipt struct {
	ID            ID             `json:"id"`
	TransactionID ID             `json:"transaction_id"`
	ImageURL      string         `json:"image_url"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	OwnerID       ID             `json:"owner_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

func (r NFTReceipt) Field(name string) any {
	switch name {
	case "id":
		return string(r.ID)
	case "transaction_id":
		return string(r.TransactionID)
	case "image_url":
		return r.ImageURL
	case "created_at":
		return r.CreatedAt
	default:
		if v, ok := r.Metadata[name]; ok {
			return v
		}
		return nil
	}
}

// QRCode is the body of GET /qr-codes/receive. The image is returned as
// opaque data; rendering is left to the view.
type QRCode struct {
	QRCode      string `json:"qr_code"`
	PaymentLink string `json:"payment_link,omitempty"`
}

// PaymentLink is the body of GET /payment-links/generate.
type PaymentLink struct {
	Link      string     `json:"link"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
