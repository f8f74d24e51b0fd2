package service

import (
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusfees/fee-management-api/internal/models"
	"github.com/campusfees/fee-management-api/internal/store"
	appErrors "github.com/campusfees/fee-management-api/pkg/errors"
)

// AssignPaymentRequest assigns a fee category charge to a student.
type AssignPaymentRequest struct {
	StudentID     string    `json:"studentId" validate:"required"`
	FeeCategoryID string    `json:"feeCategoryId" validate:"required"`
	Description   string    `json:"description"`
	DueDate       time.Time `json:"dueDate" validate:"required"`
}

// PaymentService handles upcoming-payment use-cases on top of the state store.
// The amount of an assigned payment is captured from the fee category at
// assignment time; later category edits do not rewrite existing payments.
type PaymentService struct {
	store     *store.Store
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewPaymentService constructs the payment service.
func NewPaymentService(st *store.Store, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{store: st, validator: validate, metrics: metrics, logger: logger, now: time.Now}
}

// List returns all upcoming payments across students.
func (s *PaymentService) List() []models.UpcomingPayment {
	return s.store.UpcomingPayments()
}

// StudentPayments returns the payments targeting a single student, filtered
// and sorted. Default sort is due date ascending; "amount" sorts descending.
func (s *PaymentService) StudentPayments(studentID string, filter models.PaymentFilter) []models.UpcomingPayment {
	payments := s.store.StudentPayments(studentID)
	if filter.Status != nil {
		filtered := payments[:0]
		for _, p := range payments {
			if p.Status == *filter.Status {
				filtered = append(filtered, p)
			}
		}
		payments = filtered
	}
	switch filter.SortBy {
	case "amount":
		sort.SliceStable(payments, func(i, j int) bool { return payments[i].Amount > payments[j].Amount })
	default:
		sort.SliceStable(payments, func(i, j int) bool { return payments[i].DueDate.Before(payments[j].DueDate) })
	}
	return payments
}

// Assign creates an upcoming payment for a student from a fee category.
func (s *PaymentService) Assign(req AssignPaymentRequest) (*models.UpcomingPayment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	var category *models.FeeCategory
	for _, c := range s.store.FeeCategories() {
		if c.ID == req.FeeCategoryID {
			c := c
			category = &c
			break
		}
	}
	if category == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "fee category not found")
	}

	payment := models.UpcomingPayment{
		ID:          uuid.NewString(),
		StudentID:   req.StudentID,
		Category:    category.Name,
		Description: req.Description,
		Amount:      category.Amount,
		DueDate:     req.DueDate,
		Status:      models.PaymentStatusUpcoming,
	}
	s.store.SetUpcomingPayments(func(prev []models.UpcomingPayment) []models.UpcomingPayment {
		return append(prev, payment)
	})
	if s.metrics != nil {
		s.metrics.RecordStoreMutation(store.KeyUpcomingPayments, "assign")
	}
	return &payment, nil
}

// RecordPayment marks an open payment as paid and notifies the student.
// A student actor may only settle their own charges; admins may settle any.
func (s *PaymentService) RecordPayment(id, actorID string, role models.UserRole) (*models.UpcomingPayment, error) {
	var paid *models.UpcomingPayment
	notOwner := false
	paidAt := s.now()
	s.store.SetUpcomingPayments(func(prev []models.UpcomingPayment) []models.UpcomingPayment {
		for i := range prev {
			if prev[i].ID != id || !prev[i].Status.Open() {
				continue
			}
			if role == models.RoleStudent && prev[i].StudentID != actorID {
				notOwner = true
				break
			}
			prev[i].Status = models.PaymentStatusPaid
			prev[i].PaidAt = &paidAt
			p := prev[i]
			paid = &p
			break
		}
		return prev
	})
	if notOwner {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students may only pay their own charges")
	}
	if paid == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "open payment not found")
	}
	if s.metrics != nil {
		s.metrics.RecordStoreMutation(store.KeyUpcomingPayments, "pay")
	}
	s.store.AddNotification(models.Notification{
		Title:    "Payment received",
		Message:  "Your payment for " + paid.Category + " has been recorded.",
		Type:     models.NotificationTypeInfo,
		Priority: models.NotificationPriorityNormal,
	})
	return paid, nil
}

// SweepOverdue flips open payments past their due date to overdue and raises a
// warning notification per flipped payment. Returns how many were flipped.
func (s *PaymentService) SweepOverdue() int {
	now := s.now()
	var flipped []models.UpcomingPayment
	s.store.SetUpcomingPayments(func(prev []models.UpcomingPayment) []models.UpcomingPayment {
		for i := range prev {
			if prev[i].Status.Open() && prev[i].DueDate.Before(now) {
				prev[i].Status = models.PaymentStatusOverdue
				flipped = append(flipped, prev[i])
			}
		}
		return prev
	})
	for _, p := range flipped {
		s.store.AddNotification(models.Notification{
			Title:    "Payment overdue",
			Message:  "Your payment for " + p.Category + " is past its due date.",
			Type:     models.NotificationTypeWarning,
			Priority: models.NotificationPriorityHigh,
		})
	}
	if len(flipped) > 0 {
		if s.metrics != nil {
			s.metrics.RecordStoreMutation(store.KeyUpcomingPayments, "overdue_sweep")
		}
		s.logger.Info("overdue sweep flipped payments", zap.Int("count", len(flipped)))
	}
	return len(flipped)
}
