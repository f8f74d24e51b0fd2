package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campusfees/fee-management-api/internal/models"
	"github.com/campusfees/fee-management-api/internal/service"
	appErrors "github.com/campusfees/fee-management-api/pkg/errors"
	"github.com/campusfees/fee-management-api/pkg/response"
)

// StudentHandler wires HTTP endpoints for roster access and student sessions.
type StudentHandler struct {
	students *service.StudentService
	auth     *service.AuthService
}

// NewStudentHandler creates a new handler.
func NewStudentHandler(students *service.StudentService, auth *service.AuthService) *StudentHandler {
	return &StudentHandler{students: students, auth: auth}
}

// Login godoc
// @Summary Student login
// @Description Authenticate a student by registration number
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body models.StudentLoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /students/login [post]
func (h *StudentHandler) Login(c *gin.Context) {
	var req models.StudentLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student login payload"))
		return
	}

	res, err := h.auth.LoginStudent(req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Logout godoc
// @Summary Student logout
// @Description Clear the current student session
// @Tags Students
// @Produce json
// @Success 204 {object} response.Envelope
// @Router /students/logout [post]
func (h *StudentHandler) Logout(c *gin.Context) {
	h.auth.LogoutStudent()
	response.NoContent(c)
}

// List godoc
// @Summary List students
// @Description List the roster with optional search and pagination
// @Tags Students
// @Produce json
// @Param search query string false "Search by name or registration number"
// @Param department query string false "Department filter"
// @Param semester query int false "Semester filter"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	filter := models.StudentFilter{
		Search:     c.Query("search"),
		Department: c.Query("department"),
		Page:       1,
		PageSize:   20,
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}
	if raw := c.Query("semester"); raw != "" {
		if semester, err := strconv.Atoi(raw); err == nil {
			filter.Semester = &semester
		}
	}
	if raw := c.Query("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			filter.Page = page
		}
	}
	if raw := c.Query("page_size"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil && size > 0 && size <= 100 {
			filter.PageSize = size
		}
	}

	students, pagination, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, &pagination)
}

// selfScoped rejects a student token reading another student's record.
// Admin tokens pass through.
func selfScoped(c *gin.Context, studentID string) bool {
	claims := claimsFromContext(c)
	if claims != nil && claims.Role == models.RoleStudent && claims.UserID != studentID {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "students may only access their own record"))
		return false
	}
	return true
}

// Get godoc
// @Summary Get student
// @Description Look a student up by registration number
// @Tags Students
// @Produce json
// @Param regNo path string true "Registration number"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{regNo} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.GetByRegNo(c.Request.Context(), c.Param("regNo"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !selfScoped(c, student.ID) {
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// FeeStatus godoc
// @Summary Per-semester fee ledger
// @Description Return fee status rows for a student
// @Tags Students
// @Produce json
// @Param regNo path string true "Registration number"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{regNo}/fee-status [get]
func (h *StudentHandler) FeeStatus(c *gin.Context) {
	student, err := h.students.GetByRegNo(c.Request.Context(), c.Param("regNo"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !selfScoped(c, student.ID) {
		return
	}
	entries, err := h.students.FeeStatus(c.Request.Context(), student.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Seed godoc
// @Summary Seed the roster
// @Description Insert the default roster, skipping existing registration numbers
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /students/seed [post]
func (h *StudentHandler) Seed(c *gin.Context) {
	inserted, err := h.students.Seed(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"inserted": inserted}, nil)
}
