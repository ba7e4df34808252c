package models

import "github.com/shopspring/decimal"

// Period selects the analytics window.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

func (p Period) Valid() bool {
	switch p {
	case PeriodWeek, PeriodMonth, PeriodYear:
		return true
	}
	return false
}

type TransactionSummary struct {
	Period           Period          `json:"period,omitempty"`
	TotalSent        decimal.Decimal `json:"total_sent"`
	TotalReceived    decimal.Decimal `json:"total_received"`
	TransactionCount int             `json:"transaction_count"`
	AverageAmount    decimal.Decimal `json:"average_amount"`
}

type SpendingCategory struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int             `json:"count"`
}
