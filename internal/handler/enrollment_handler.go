package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-ledger-api/internal/models"
	"github.com/noah-isme/campus-ledger-api/pkg/response"
)

type enrollmentManager interface {
	Enroll(ctx context.Context, principal models.Principal, req models.EnrollRequest) (*models.Enrollment, error)
	Deactivate(ctx context.Context, principal models.Principal, id string) error
	EligibleCourses(ctx context.Context, principal models.Principal, studentID string) ([]models.Course, error)
	List(ctx context.Context, principal models.Principal, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error)
}

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments enrollmentManager
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentManager) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// List godoc
// @Summary List enrollments
// @Tags Enrollments
// @Produce json
// @Param student_id query string false "Filter by student"
// @Param course_id query string false "Filter by course"
// @Param active query bool false "Filter by active flag"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	filter := models.EnrollmentFilter{
		StudentID: c.Query("student_id"),
		CourseID:  c.Query("course_id"),
		Active:    boolQuery(c, "active"),
	}
	filter.Page, filter.PageSize = pageParams(c)

	items, pagination, err := h.enrollments.List(c.Request.Context(), p, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Create godoc
// @Summary Enroll student
// @Description Admins enroll anyone, students only themselves; a department teacher is assigned
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body models.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /enrollments [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req models.EnrollRequest
	if !bindJSON(c, &req, "invalid payload") {
		return
	}
	if req.StudentID == "" && p.IsStudent() {
		req.StudentID = p.ID
	}
	enrollment, err := h.enrollments.Enroll(c.Request.Context(), p, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Deactivate godoc
// @Summary Deactivate enrollment
// @Tags Enrollments
// @Param id path string true "Enrollment ID"
// @Success 204 {object} response.Envelope
// @Security BearerAuth
// @Router /enrollments/{id} [delete]
func (h *EnrollmentHandler) Deactivate(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	if err := h.enrollments.Deactivate(c.Request.Context(), p, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Eligible godoc
// @Summary Courses a student may enroll in
// @Description Active courses of the student's department and semester
// @Tags Enrollments
// @Produce json
// @Param student_id query string false "Student (defaults to the current student)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /enrollments/eligible [get]
func (h *EnrollmentHandler) Eligible(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	courses, err := h.enrollments.EligibleCourses(c.Request.Context(), p, c.Query("student_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}
