package handler

import (
	"context"
	"iter"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-ledger-api/internal/models"
	"github.com/noah-isme/campus-ledger-api/pkg/response"
)

type gradeLedger interface {
	RecordGrade(ctx context.Context, principal models.Principal, req models.RecordGradeRequest) (*models.Grade, error)
	VisibleGrades(ctx context.Context, principal models.Principal, studentID string) iter.Seq2[models.GradeView, error]
	ComputeGPA(ctx context.Context, principal models.Principal, studentID string) (float64, error)
	StudentGradeReport(ctx context.Context, principal models.Principal, studentID string) (*models.GradeReport, error)
}

// GradeHandler exposes the grade ledger.
type GradeHandler struct {
	ledger gradeLedger
}

// NewGradeHandler constructs a grade handler.
func NewGradeHandler(ledger gradeLedger) *GradeHandler {
	return &GradeHandler{ledger: ledger}
}

// Record godoc
// @Summary Record a grade
// @Description Creates or replaces the student's grade for an assignment the teacher owns
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body models.RecordGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /grades [post]
func (h *GradeHandler) Record(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req models.RecordGradeRequest
	if !bindJSON(c, &req, "invalid grade payload") {
		return
	}
	grade, err := h.ledger.RecordGrade(c.Request.Context(), p, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// List godoc
// @Summary List visible grades
// @Description Students see their own grades, teachers grades on their assignments, admins all
// @Tags Grades
// @Produce json
// @Param student_id query string false "Narrow to one student"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	grades := []models.GradeView{}
	for g, err := range h.ledger.VisibleGrades(c.Request.Context(), p, c.Query("student_id")) {
		if err != nil {
			response.Error(c, err)
			return
		}
		grades = append(grades, g)
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

// Report godoc
// @Summary Student grade report
// @Description Grades with the recomputed GPA; use "me" for the current student
// @Tags Grades
// @Produce json
// @Param id path string true "Student ID or me"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/report [get]
func (h *GradeHandler) Report(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	report, err := h.ledger.StudentGradeReport(c.Request.Context(), p, studentParam(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// GPA godoc
// @Summary Student GPA
// @Tags Grades
// @Produce json
// @Param id path string true "Student ID or me"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/gpa [get]
func (h *GradeHandler) GPA(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id := studentParam(c)
	if id == "" {
		id = p.ID
	}
	gpa, err := h.ledger.ComputeGPA(c.Request.Context(), p, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"student_id": id, "gpa": gpa}, nil)
}
