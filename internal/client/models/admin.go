package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Envelope is the {data,status,message} wrapper used by the admin endpoints.
type Envelope[T any] struct {
	Data    T      `json:"data"`
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
}

// Page is one page of a server-side paginated listing.
type Page[T any] struct {
	Data     []T `json:"data"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

type SystemStats struct {
	TotalTransactions   int             `json:"totalTransactions"`
	ActiveUsers         int             `json:"activeUsers"`
	ErrorRate           float64         `json:"errorRate"`
	AverageResponseTime float64         `json:"averageResponseTime"`
	TotalVolume         decimal.Decimal `json:"totalVolume"`
	BlockedUsers        int             `json:"blockedUsers"`
	PendingKYC          int             `json:"pendingKyc"`
	RejectedKYC         int             `json:"rejectedKyc"`
}

type UserSecurity struct {
	ID           ID        `json:"id"`
	Principal    string    `json:"principal"`
	KYCStatus    string    `json:"kycStatus"`
	RiskScore    float64   `json:"riskScore"`
	IsBlocked    bool      `json:"isBlocked"`
	LastActivity time.Time `json:"lastActivity"`
	IPAddress    string    `json:"ipAddress,omitempty"`
}

func (u UserSecurity) Field(name string) any {
	switch name {
	case "id":
		return string(u.ID)
	case "principal":
		return u.Principal
	case "kycStatus":
		return u.KYCStatus
	case "riskScore":
		return u.RiskScore
	case "isBlocked":
		return u.IsBlocked
	case "lastActivity":
		return u.LastActivity
	case "ipAddress":
		if u.IPAddress == "" {
			return nil
		}
		return u.IPAddress
	default:
		return nil
	}
}

type PayChainError struct {
	ID        ID        `json:"id"`
	Code      int       `json:"code"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Severity  string    `json:"severity"`
	Status    string    `json:"status"`
}

func (e PayChainError) Field(name string) any {
	switch name {
	case "id":
		return string(e.ID)
	case "code":
		return e.Code
	case "category":
		return e.Category
	case "message":
		return e.Message
	case "timestamp":
		return e.Timestamp
	case "severity":
		return e.Severity
	case "status":
		return e.Status
	default:
		return nil
	}
}

// ListQuery carries server-side paging plus free-form filters.
type ListQuery struct {
	Page     int
	PageSize int
	Filters  map[string]string
}
