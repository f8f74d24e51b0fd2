package service

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusfees/fee-management-api/internal/models"
	"github.com/campusfees/fee-management-api/internal/store"
	appErrors "github.com/campusfees/fee-management-api/pkg/errors"
)

// BroadcastNotificationRequest holds payload for admin broadcasts.
type BroadcastNotificationRequest struct {
	Title    string `json:"title" validate:"required"`
	Message  string `json:"message" validate:"required"`
	Type     string `json:"type"`
	Priority string `json:"priority"`
}

// NotificationService handles notification use-cases on top of the state store.
type NotificationService struct {
	store     *store.Store
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewNotificationService constructs the notification service.
func NewNotificationService(st *store.Store, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{store: st, validator: validate, metrics: metrics, logger: logger}
}

// List returns notifications in stored order, optionally only unread ones.
func (s *NotificationService) List(unreadOnly bool) []models.Notification {
	all := s.store.Notifications()
	if !unreadOnly {
		return all
	}
	unread := make([]models.Notification, 0, len(all))
	for _, n := range all {
		if !n.Read {
			unread = append(unread, n)
		}
	}
	return unread
}

// Broadcast publishes an admin notification. New notifications always start unread.
func (s *NotificationService) Broadcast(req BroadcastNotificationRequest) (*models.Notification, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notification payload")
	}
	notification := s.store.AddNotification(models.Notification{
		Title:     req.Title,
		Message:   req.Message,
		Type:      models.NormalizeNotificationType(req.Type),
		Priority:  models.NormalizeNotificationPriority(req.Priority),
		FromAdmin: true,
	})
	if s.metrics != nil {
		s.metrics.RecordStoreMutation(store.KeyNotifications, "add")
	}
	return &notification, nil
}

// MarkRead flips a notification to read. Already-read notifications stay read.
func (s *NotificationService) MarkRead(id string) {
	s.store.MarkNotificationRead(id)
	if s.metrics != nil {
		s.metrics.RecordStoreMutation(store.KeyNotifications, "mark_read")
	}
}

// Delete removes a notification. Unknown ids are a no-op.
func (s *NotificationService) Delete(id string) {
	s.store.RemoveNotification(id)
	if s.metrics != nil {
		s.metrics.RecordStoreMutation(store.KeyNotifications, "remove")
	}
}
