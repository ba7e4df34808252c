package models

import "time"

type NotificationType string

const (
	NotificationPayment  NotificationType = "payment"
	NotificationSystem   NotificationType = "system"
	NotificationSecurity NotificationType = "security"
)

type Notification struct {
	ID        ID               `json:"id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Read      bool             `json:"read"`
	Type      NotificationType `json:"type"`
}

func (n Notification) Field(name string) any {
	switch name {
	case "id":
		return string(n.ID)
	case "title":
		return n.Title
	case "message":
		return n.Message
	case "timestamp":
		return n.Timestamp
	case "read":
		return n.Read
	case "type":
		return string(n.Type)
	default:
		return nil
	}
}

// NotificationList is the body of GET /notifications.
type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unreadCount"`
}

// UnreadCount is the body of GET /notifications/unread-count.
type UnreadCount struct {
	Count int `json:"count"`
}
