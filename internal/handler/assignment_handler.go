package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-ledger-api/internal/models"
	"github.com/noah-isme/campus-ledger-api/pkg/response"
)

type assignmentManager interface {
	Create(ctx context.Context, principal models.Principal, req models.AssignmentRequest) (*models.Assignment, error)
	List(ctx context.Context, principal models.Principal, filter models.AssignmentFilter) ([]models.Assignment, *models.Pagination, error)
}

// AssignmentHandler exposes assignment endpoints.
type AssignmentHandler struct {
	assignments assignmentManager
}

// NewAssignmentHandler constructs an assignment handler.
func NewAssignmentHandler(assignments assignmentManager) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// Create godoc
// @Summary Create assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body models.AssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req models.AssignmentRequest
	if !bindJSON(c, &req, "invalid assignment payload") {
		return
	}
	a, err := h.assignments.Create(c.Request.Context(), p, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, a)
}

// List godoc
// @Summary List assignments
// @Tags Assignments
// @Produce json
// @Param course_id query string false "Course (required for students)"
// @Param active query bool false "Active flag"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	filter := models.AssignmentFilter{CourseID: c.Query("course_id"), Active: boolQuery(c, "active")}
	filter.Page, filter.PageSize = pageParams(c)

	items, pagination, err := h.assignments.List(c.Request.Context(), p, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}
