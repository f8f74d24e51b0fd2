package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusfees/fee-management-api/internal/service"
	appErrors "github.com/campusfees/fee-management-api/pkg/errors"
	"github.com/campusfees/fee-management-api/pkg/response"
)

// FeeHandler wires HTTP endpoints for fee category management.
type FeeHandler struct {
	service *service.FeeService
}

// NewFeeHandler creates a new handler.
func NewFeeHandler(svc *service.FeeService) *FeeHandler {
	return &FeeHandler{service: svc}
}

// List godoc
// @Summary List fee categories
// @Tags Fees
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /fees [get]
func (h *FeeHandler) List(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.List(), nil)
}

// Create godoc
// @Summary Create fee category
// @Description Create a fee category; names must be unique
// @Tags Fees
// @Accept json
// @Produce json
// @Param payload body service.CreateFeeCategoryRequest true "Category payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /fees [post]
func (h *FeeHandler) Create(c *gin.Context) {
	var req service.CreateFeeCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid fee category payload"))
		return
	}

	category, err := h.service.Create(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, category)
}

// Update godoc
// @Summary Update fee category
// @Tags Fees
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param payload body service.UpdateFeeCategoryRequest true "Category payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /fees/{id} [put]
func (h *FeeHandler) Update(c *gin.Context) {
	var req service.UpdateFeeCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid fee category payload"))
		return
	}

	category, err := h.service.Update(c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, category, nil)
}

// Delete godoc
// @Summary Delete fee category
// @Description Remove a fee category; unknown ids are a no-op
// @Tags Fees
// @Produce json
// @Param id path string true "Category ID"
// @Success 204 {object} response.Envelope
// @Router /fees/{id} [delete]
func (h *FeeHandler) Delete(c *gin.Context) {
	h.service.Delete(c.Param("id"))
	response.NoContent(c)
}
