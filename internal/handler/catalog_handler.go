package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-ledger-api/internal/models"
	"github.com/noah-isme/campus-ledger-api/pkg/response"
)

type catalog interface {
	ListDepartments(ctx context.Context) ([]models.Department, error)
	CreateDepartment(ctx context.Context, principal models.Principal, req models.DepartmentRequest) (*models.Department, error)
	UpdateDepartment(ctx context.Context, principal models.Principal, id string, req models.DepartmentRequest) (*models.Department, error)
	DeleteDepartment(ctx context.Context, principal models.Principal, id string) error
	ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error)
	GetCourse(ctx context.Context, id string) (*models.Course, error)
	CreateCourse(ctx context.Context, principal models.Principal, req models.CourseRequest) (*models.Course, error)
	UpdateCourse(ctx context.Context, principal models.Principal, id string, req models.CourseRequest) (*models.Course, error)
}

// CatalogHandler manages departments and courses.
type CatalogHandler struct {
	catalog catalog
}

// NewCatalogHandler constructs a catalog handler.
func NewCatalogHandler(c catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

// ListDepartments godoc
// @Summary List departments
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /departments [get]
func (h *CatalogHandler) ListDepartments(c *gin.Context) {
	items, err := h.catalog.ListDepartments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// CreateDepartment godoc
// @Summary Create department
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body models.DepartmentRequest true "Department payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /departments [post]
func (h *CatalogHandler) CreateDepartment(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req models.DepartmentRequest
	if !bindJSON(c, &req, "invalid department payload") {
		return
	}
	d, err := h.catalog.CreateDepartment(c.Request.Context(), p, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, d)
}

// UpdateDepartment godoc
// @Summary Update department
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Department ID"
// @Param payload body models.DepartmentRequest true "Department payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /departments/{id} [put]
func (h *CatalogHandler) UpdateDepartment(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req models.DepartmentRequest
	if !bindJSON(c, &req, "invalid department payload") {
		return
	}
	d, err := h.catalog.UpdateDepartment(c.Request.Context(), p, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, d, nil)
}

// DeleteDepartment godoc
// @Summary Delete department
// @Tags Catalog
// @Param id path string true "Department ID"
// @Success 204 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /departments/{id} [delete]
func (h *CatalogHandler) DeleteDepartment(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteDepartment(c.Request.Context(), p, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListCourses godoc
// @Summary List courses
// @Tags Catalog
// @Produce json
// @Param department_id query string false "Department"
// @Param semester query int false "Semester"
// @Param active query bool false "Active flag"
// @Param search query string false "Code or name search"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /courses [get]
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	filter := models.CourseFilter{
		DepartmentID: c.Query("department_id"),
		Active:       boolQuery(c, "active"),
		Search:       c.Query("search"),
	}
	filter.Semester, _ = strconv.Atoi(c.Query("semester"))
	filter.Page, filter.PageSize = pageParams(c)

	items, pagination, err := h.catalog.ListCourses(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// GetCourse godoc
// @Summary Get course
// @Tags Catalog
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /courses/{id} [get]
func (h *CatalogHandler) GetCourse(c *gin.Context) {
	course, err := h.catalog.GetCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// CreateCourse godoc
// @Summary Create course
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body models.CourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /courses [post]
func (h *CatalogHandler) CreateCourse(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req models.CourseRequest
	if !bindJSON(c, &req, "invalid course payload") {
		return
	}
	course, err := h.catalog.CreateCourse(c.Request.Context(), p, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// UpdateCourse godoc
// @Summary Update course
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body models.CourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /courses/{id} [put]
func (h *CatalogHandler) UpdateCourse(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req models.CourseRequest
	if !bindJSON(c, &req, "invalid course payload") {
		return
	}
	course, err := h.catalog.UpdateCourse(c.Request.Context(), p, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}
