package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusfees/fee-management-api/internal/models"
	appErrors "github.com/campusfees/fee-management-api/pkg/errors"
)

func TestPaymentServiceAssign(t *testing.T) {
	st := newTestStore(t)
	fees := NewFeeService(st, nil, nil, zap.NewNop())
	payments := NewPaymentService(st, nil, nil, zap.NewNop())

	category, err := fees.Create(CreateFeeCategoryRequest{Name: "Tuition", Amount: 54000})
	require.NoError(t, err)

	due := time.Now().Add(30 * 24 * time.Hour)
	payment, err := payments.Assign(AssignPaymentRequest{
		StudentID:     "1",
		FeeCategoryID: category.ID,
		DueDate:       due,
	})
	require.NoError(t, err)
	assert.Equal(t, "Tuition", payment.Category)
	assert.Equal(t, float64(54000), payment.Amount)
	assert.Equal(t, models.PaymentStatusUpcoming, payment.Status)
	assert.NotEmpty(t, payment.ID)
}

func TestPaymentServiceAssignUnknownCategory(t *testing.T) {
	payments := NewPaymentService(newTestStore(t), nil, nil, zap.NewNop())

	_, err := payments.Assign(AssignPaymentRequest{
		StudentID:     "1",
		FeeCategoryID: "missing",
		DueDate:       time.Now(),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPaymentServiceAmountFrozenAtAssignment(t *testing.T) {
	st := newTestStore(t)
	fees := NewFeeService(st, nil, nil, zap.NewNop())
	payments := NewPaymentService(st, nil, nil, zap.NewNop())

	category, err := fees.Create(CreateFeeCategoryRequest{Name: "Hostel", Amount: 12000})
	require.NoError(t, err)

	payment, err := payments.Assign(AssignPaymentRequest{
		StudentID:     "1",
		FeeCategoryID: category.ID,
		DueDate:       time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	_, err = fees.Update(category.ID, UpdateFeeCategoryRequest{Name: "Hostel", Amount: 15000})
	require.NoError(t, err)

	got := payments.StudentPayments("1", models.PaymentFilter{})
	require.Len(t, got, 1)
	assert.Equal(t, payment.Amount, got[0].Amount)
}

func TestPaymentServiceRecordPayment(t *testing.T) {
	st := newTestStore(t)
	fees := NewFeeService(st, nil, nil, zap.NewNop())
	payments := NewPaymentService(st, nil, nil, zap.NewNop())

	category, err := fees.Create(CreateFeeCategoryRequest{Name: "Exam", Amount: 1500})
	require.NoError(t, err)
	payment, err := payments.Assign(AssignPaymentRequest{
		StudentID:     "2",
		FeeCategoryID: category.ID,
		DueDate:       time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	paid, err := payments.RecordPayment(payment.ID, "2", models.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	// paying again is rejected: the payment is no longer open
	_, err = payments.RecordPayment(payment.ID, "2", models.RoleStudent)
	require.Error(t, err)

	notifications := st.Notifications()
	require.Len(t, notifications, 1)
	assert.False(t, notifications[0].Read)
	assert.Equal(t, models.NotificationTypeInfo, notifications[0].Type)
}

func TestPaymentServiceRecordPaymentOwnership(t *testing.T) {
	st := newTestStore(t)
	fees := NewFeeService(st, nil, nil, zap.NewNop())
	payments := NewPaymentService(st, nil, nil, zap.NewNop())

	category, err := fees.Create(CreateFeeCategoryRequest{Name: "Lab", Amount: 2500})
	require.NoError(t, err)
	payment, err := payments.Assign(AssignPaymentRequest{
		StudentID:     "2",
		FeeCategoryID: category.ID,
		DueDate:       time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	// a different student cannot settle someone else's charge
	_, err = payments.RecordPayment(payment.ID, "1", models.RoleStudent)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	got := payments.StudentPayments("2", models.PaymentFilter{})
	require.Len(t, got, 1)
	assert.Equal(t, models.PaymentStatusUpcoming, got[0].Status)

	// admins settle on behalf of any student
	paid, err := payments.RecordPayment(payment.ID, "admin-1", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, paid.Status)
}

func TestPaymentServiceStudentPaymentsSortAndFilter(t *testing.T) {
	st := newTestStore(t)
	fees := NewFeeService(st, nil, nil, zap.NewNop())
	payments := NewPaymentService(st, nil, nil, zap.NewNop())

	cat1, err := fees.Create(CreateFeeCategoryRequest{Name: "Tuition", Amount: 54000})
	require.NoError(t, err)
	cat2, err := fees.Create(CreateFeeCategoryRequest{Name: "Library", Amount: 800})
	require.NoError(t, err)

	later := time.Now().Add(48 * time.Hour)
	sooner := time.Now().Add(24 * time.Hour)
	first, err := payments.Assign(AssignPaymentRequest{StudentID: "1", FeeCategoryID: cat1.ID, DueDate: later})
	require.NoError(t, err)
	second, err := payments.Assign(AssignPaymentRequest{StudentID: "1", FeeCategoryID: cat2.ID, DueDate: sooner})
	require.NoError(t, err)

	byDue := payments.StudentPayments("1", models.PaymentFilter{})
	require.Len(t, byDue, 2)
	assert.Equal(t, second.ID, byDue[0].ID)

	byAmount := payments.StudentPayments("1", models.PaymentFilter{SortBy: "amount"})
	require.Len(t, byAmount, 2)
	assert.Equal(t, first.ID, byAmount[0].ID)

	_, err = payments.RecordPayment(second.ID, "1", models.RoleStudent)
	require.NoError(t, err)
	status := models.PaymentStatusPaid
	onlyPaid := payments.StudentPayments("1", models.PaymentFilter{Status: &status})
	require.Len(t, onlyPaid, 1)
	assert.Equal(t, second.ID, onlyPaid[0].ID)
}

func TestPaymentServiceSweepOverdue(t *testing.T) {
	st := newTestStore(t)
	fees := NewFeeService(st, nil, nil, zap.NewNop())
	payments := NewPaymentService(st, nil, nil, zap.NewNop())

	category, err := fees.Create(CreateFeeCategoryRequest{Name: "Bus", Amount: 6000})
	require.NoError(t, err)

	pastDue, err := payments.Assign(AssignPaymentRequest{StudentID: "3", FeeCategoryID: category.ID, DueDate: time.Now().Add(-time.Hour)})
	require.NoError(t, err)
	future, err := payments.Assign(AssignPaymentRequest{StudentID: "3", FeeCategoryID: category.ID, DueDate: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	flipped := payments.SweepOverdue()
	assert.Equal(t, 1, flipped)

	got := payments.StudentPayments("3", models.PaymentFilter{})
	byID := map[string]models.PaymentStatus{}
	for _, p := range got {
		byID[p.ID] = p.Status
	}
	assert.Equal(t, models.PaymentStatusOverdue, byID[pastDue.ID])
	assert.Equal(t, models.PaymentStatusUpcoming, byID[future.ID])

	// already-overdue payments are not flipped again
	assert.Equal(t, 0, payments.SweepOverdue())
	notifications := st.Notifications()
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationTypeWarning, notifications[0].Type)
	assert.Equal(t, models.NotificationPriorityHigh, notifications[0].Priority)
}
