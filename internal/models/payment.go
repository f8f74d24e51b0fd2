package models

import (
	"fmt"
	"strings"
	"time"
)

// PaymentStatus enumerates the lifecycle states of an upcoming payment.
type PaymentStatus string

const (
	PaymentStatusUpcoming PaymentStatus = "upcoming"
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusOverdue  PaymentStatus = "overdue"
)

// ParsePaymentStatus normalises a free-form status string to the closed set.
func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	switch PaymentStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case PaymentStatusUpcoming:
		return PaymentStatusUpcoming, nil
	case PaymentStatusPending:
		return PaymentStatusPending, nil
	case PaymentStatusPaid:
		return PaymentStatusPaid, nil
	case PaymentStatusOverdue:
		return PaymentStatusOverdue, nil
	default:
		return "", fmt.Errorf("unknown payment status %q", raw)
	}
}

// Open reports whether the payment still awaits money, i.e. it can move to
// paid or overdue.
func (s PaymentStatus) Open() bool {
	return s == PaymentStatusUpcoming || s == PaymentStatusPending
}

// UpcomingPayment is an instance of a fee category's charge assigned to a
// specific student. StudentID is a soft reference: existence of the student
// is not enforced here.
type UpcomingPayment struct {
	ID          string        `json:"id"`
	StudentID   string        `json:"studentId"`
	Category    string        `json:"category"`
	Description string        `json:"description,omitempty"`
	Amount      float64       `json:"amount"`
	DueDate     time.Time     `json:"dueDate"`
	Status      PaymentStatus `json:"status"`
	PaidAt      *time.Time    `json:"paidAt,omitempty"`
}

// PaymentFilter captures list options for a student's payments.
type PaymentFilter struct {
	Status *PaymentStatus
	SortBy string // "dueDate" (default) or "amount"
}
