package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusfees/fee-management-api/internal/models"
	appErrors "github.com/campusfees/fee-management-api/pkg/errors"
)

func TestNotificationServiceBroadcast(t *testing.T) {
	svc := NewNotificationService(newTestStore(t), nil, nil, zap.NewNop())

	created, err := svc.Broadcast(BroadcastNotificationRequest{
		Title:    "Fee deadline",
		Message:  "Semester fees are due Friday",
		Type:     "URGENT",
		Priority: "High",
	})
	require.NoError(t, err)
	assert.True(t, created.FromAdmin)
	assert.False(t, created.Read)
	assert.Equal(t, models.NotificationTypeUrgent, created.Type)
	assert.Equal(t, models.NotificationPriorityHigh, created.Priority)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.Date.IsZero())
}

func TestNotificationServiceBroadcastValidation(t *testing.T) {
	svc := NewNotificationService(newTestStore(t), nil, nil, zap.NewNop())

	_, err := svc.Broadcast(BroadcastNotificationRequest{Title: "", Message: "body"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestNotificationServiceMarkReadAndDelete(t *testing.T) {
	svc := NewNotificationService(newTestStore(t), nil, nil, zap.NewNop())

	created, err := svc.Broadcast(BroadcastNotificationRequest{Title: "Hello", Message: "World"})
	require.NoError(t, err)

	svc.MarkRead(created.ID)
	svc.MarkRead(created.ID)
	list := svc.List(false)
	require.Len(t, list, 1)
	assert.True(t, list[0].Read)
	assert.Empty(t, svc.List(true))

	svc.Delete(created.ID)
	svc.Delete(created.ID)
	assert.Empty(t, svc.List(false))
}
