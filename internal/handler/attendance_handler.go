package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-ledger-api/internal/models"
	appErrors "github.com/noah-isme/campus-ledger-api/pkg/errors"
	"github.com/noah-isme/campus-ledger-api/pkg/response"
)

type attendanceBook interface {
	MarkAttendance(ctx context.Context, principal models.Principal, req models.MarkAttendanceRequest) ([]models.Attendance, error)
	List(ctx context.Context, principal models.Principal, filter models.AttendanceFilter) ([]models.Attendance, *models.Pagination, error)
	Summary(ctx context.Context, principal models.Principal, studentID string) (models.AttendanceSummary, error)
}

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	book attendanceBook
}

// NewAttendanceHandler constructs an attendance handler.
func NewAttendanceHandler(book attendanceBook) *AttendanceHandler {
	return &AttendanceHandler{book: book}
}

// Mark godoc
// @Summary Mark a course session
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body models.MarkAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req models.MarkAttendanceRequest
	if !bindJSON(c, &req, "invalid attendance payload") {
		return
	}
	marks, err := h.book.MarkAttendance(c.Request.Context(), p, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, marks, nil)
}

// List godoc
// @Summary List attendance
// @Tags Attendance
// @Produce json
// @Param student_id query string false "Student"
// @Param course_id query string false "Course"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	filter := models.AttendanceFilter{StudentID: c.Query("student_id"), CourseID: c.Query("course_id")}
	for key, dest := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, key+" must be YYYY-MM-DD"))
			return
		}
		*dest = &t
	}
	filter.Page, filter.PageSize = pageParams(c)

	items, pagination, err := h.book.List(c.Request.Context(), p, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Summary godoc
// @Summary Attendance summary
// @Tags Attendance
// @Produce json
// @Param id path string true "Student ID or me"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/attendance [get]
func (h *AttendanceHandler) Summary(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	summary, err := h.book.Summary(c.Request.Context(), p, studentParam(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"total": summary.Total, "present": summary.Present, "rate": summary.Rate()}, nil)
}
