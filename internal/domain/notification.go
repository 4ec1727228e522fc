package domain

import "time"

type NotificationType string

const (
	NotificationInfo     NotificationType = "info"
	NotificationSuccess  NotificationType = "success"
	NotificationWarning  NotificationType = "warning"
	NotificationError    NotificationType = "error"
	NotificationReminder NotificationType = "reminder"
)

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
)

// Notification is a time-boxed notice shown to the user. IDs are unique
// and strictly increasing in insertion order. Reminder-type notices are
// exempt from automatic expiry.
type Notification struct {
	ID        int64
	Type      NotificationType
	Title     string
	Message   string
	Priority  NotificationPriority
	Category  string
	Read      bool
	CreatedAt time.Time
}
