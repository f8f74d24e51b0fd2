package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusfees/fee-management-api/internal/models"
	"github.com/campusfees/fee-management-api/internal/service"
	appErrors "github.com/campusfees/fee-management-api/pkg/errors"
	"github.com/campusfees/fee-management-api/pkg/response"
)

// PaymentHandler wires HTTP endpoints for upcoming payments.
type PaymentHandler struct {
	service *service.PaymentService
}

// NewPaymentHandler creates a new handler.
func NewPaymentHandler(svc *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: svc}
}

// List godoc
// @Summary List all upcoming payments
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.List(), nil)
}

// ListForStudent godoc
// @Summary List a student's payments
// @Description Filter by status and sort by dueDate (default) or amount
// @Tags Payments
// @Produce json
// @Param studentId path string true "Student ID"
// @Param status query string false "Status filter"
// @Param sort query string false "Sort key: dueDate or amount"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /payments/student/{studentId} [get]
func (h *PaymentHandler) ListForStudent(c *gin.Context) {
	filter := models.PaymentFilter{SortBy: c.Query("sort")}
	if raw := c.Query("status"); raw != "" {
		status, err := models.ParsePaymentStatus(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown payment status"))
			return
		}
		filter.Status = &status
	}

	payments := h.service.StudentPayments(c.Param("studentId"), filter)
	response.JSON(c, http.StatusOK, payments, nil)
}

// Assign godoc
// @Summary Assign a fee payment
// @Description Assign a fee category charge to a student
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.AssignPaymentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /payments [post]
func (h *PaymentHandler) Assign(c *gin.Context) {
	var req service.AssignPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payment payload"))
		return
	}

	payment, err := h.service.Assign(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}

// Pay godoc
// @Summary Record a payment
// @Description Mark an open payment as paid
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /payments/{id}/pay [post]
func (h *PaymentHandler) Pay(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	payment, err := h.service.RecordPayment(c.Param("id"), claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}
