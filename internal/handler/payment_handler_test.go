package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusfees/fee-management-api/internal/middleware"
	"github.com/campusfees/fee-management-api/internal/models"
	"github.com/campusfees/fee-management-api/internal/service"
	"github.com/campusfees/fee-management-api/internal/store"
)

func newPaymentHandlerForTest(t *testing.T) (*PaymentHandler, *store.Store) {
	t.Helper()
	st := newHandlerTestStore(t)
	svc := service.NewPaymentService(st, nil, nil, zap.NewNop())
	return NewPaymentHandler(svc), st
}

func TestPaymentHandlerAssignAndPay(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, st := newPaymentHandlerForTest(t)
	category, _ := st.AddFeeCategory(models.FeeCategory{Name: "Tuition", Amount: 54000})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(service.AssignPaymentRequest{
		StudentID:     "1",
		FeeCategoryID: category.ID,
		DueDate:       time.Now().Add(24 * time.Hour),
	})
	req, _ := http.NewRequest(http.MethodPost, "/payments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	handler.Assign(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	var payment models.UpcomingPayment
	require.NoError(t, json.Unmarshal(envelope.Data, &payment))
	assert.Equal(t, float64(54000), payment.Amount)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	req, _ = http.NewRequest(http.MethodPost, "/payments/"+payment.ID+"/pay", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: payment.ID}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "1", Role: models.RoleStudent})
	handler.Pay(c)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	var paid models.UpcomingPayment
	require.NoError(t, json.Unmarshal(envelope.Data, &paid))
	assert.Equal(t, models.PaymentStatusPaid, paid.Status)
}

func TestPaymentHandlerPayOtherStudentForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, st := newPaymentHandlerForTest(t)
	st.SetUpcomingPayments(func(prev []models.UpcomingPayment) []models.UpcomingPayment {
		return append(prev, models.UpcomingPayment{
			ID: "p1", StudentID: "2", Category: "Tuition", Amount: 54000,
			DueDate: time.Now().Add(time.Hour), Status: models.PaymentStatusUpcoming,
		})
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/payments/p1/pay", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "p1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "1", Role: models.RoleStudent})
	handler.Pay(c)
	require.Equal(t, http.StatusForbidden, w.Code)

	// the charge is untouched
	payments := st.StudentPayments("2")
	require.Len(t, payments, 1)
	assert.Equal(t, models.PaymentStatusUpcoming, payments[0].Status)
}

func TestPaymentHandlerListForStudentStatusFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, st := newPaymentHandlerForTest(t)
	st.SetUpcomingPayments(func(prev []models.UpcomingPayment) []models.UpcomingPayment {
		return append(prev,
			models.UpcomingPayment{ID: "p1", StudentID: "1", Category: "Tuition", Amount: 54000, DueDate: time.Now().Add(time.Hour), Status: models.PaymentStatusUpcoming},
			models.UpcomingPayment{ID: "p2", StudentID: "1", Category: "Library", Amount: 800, DueDate: time.Now().Add(2 * time.Hour), Status: models.PaymentStatusPaid},
			models.UpcomingPayment{ID: "p3", StudentID: "2", Category: "Tuition", Amount: 54000, DueDate: time.Now().Add(time.Hour), Status: models.PaymentStatusUpcoming},
		)
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/payments/student/1?status=paid", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "studentId", Value: "1"}}
	handler.ListForStudent(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	var payments []models.UpcomingPayment
	require.NoError(t, json.Unmarshal(envelope.Data, &payments))
	require.Len(t, payments, 1)
	assert.Equal(t, "p2", payments[0].ID)
}

func TestPaymentHandlerListForStudentBadStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newPaymentHandlerForTest(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/payments/student/1?status=bogus", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "studentId", Value: "1"}}
	handler.ListForStudent(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
