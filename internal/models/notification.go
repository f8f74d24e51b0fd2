package models

import (
	"strings"
	"time"
)

// NotificationType classifies a notification for display purposes.
type NotificationType string

const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeWarning NotificationType = "warning"
	NotificationTypeUrgent  NotificationType = "urgent"
)

// NotificationPriority orders notifications for display purposes.
type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "low"
	NotificationPriorityNormal NotificationPriority = "normal"
	NotificationPriorityHigh   NotificationPriority = "high"
)

// NormalizeNotificationType lowercases the input and falls back to info for
// values outside the closed set. Normalisation happens at the write boundary
// so stored notifications always carry the canonical form.
func NormalizeNotificationType(raw string) NotificationType {
	switch NotificationType(strings.ToLower(strings.TrimSpace(raw))) {
	case NotificationTypeWarning:
		return NotificationTypeWarning
	case NotificationTypeUrgent:
		return NotificationTypeUrgent
	default:
		return NotificationTypeInfo
	}
}

// NormalizeNotificationPriority lowercases the input and falls back to normal.
func NormalizeNotificationPriority(raw string) NotificationPriority {
	switch NotificationPriority(strings.ToLower(strings.TrimSpace(raw))) {
	case NotificationPriorityLow:
		return NotificationPriorityLow
	case NotificationPriorityHigh:
		return NotificationPriorityHigh
	default:
		return NotificationPriorityNormal
	}
}

// Notification is a message surfaced to students: either an admin broadcast
// (FromAdmin) or a system message derived from payment activity.
type Notification struct {
	ID        string               `json:"id"`
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	Type      NotificationType     `json:"type"`
	Priority  NotificationPriority `json:"priority"`
	Date      time.Time            `json:"date"`
	Read      bool                 `json:"read"`
	FromAdmin bool                 `json:"fromAdmin"`
}
