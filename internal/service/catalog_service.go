package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-ledger-api/internal/models"
	"github.com/noah-isme/campus-ledger-api/internal/repository"
	appErrors "github.com/noah-isme/campus-ledger-api/pkg/errors"
)

type departmentStore interface {
	List(ctx context.Context) ([]models.Department, error)
	FindByID(ctx context.Context, id string) (*models.Department, error)
	Create(ctx context.Context, d *models.Department) error
	Update(ctx context.Context, d *models.Department) error
	Delete(ctx context.Context, id string) error
}

type courseStore interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, c *models.Course) error
	Update(ctx context.Context, c *models.Course) error
}

// CatalogService manages departments and the courses they offer.
type CatalogService struct {
	departments departmentStore
	courses     courseStore
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(departments departmentStore, courses courseStore, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{departments: departments, courses: courses, validator: validate, logger: logger}
}

// ListDepartments returns every department ordered by code.
func (s *CatalogService) ListDepartments(ctx context.Context) ([]models.Department, error) {
	items, err := s.departments.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list departments")
	}
	if items == nil {
		items = []models.Department{}
	}
	return items, nil
}

// CreateDepartment adds a department.
func (s *CatalogService) CreateDepartment(ctx context.Context, principal models.Principal, req models.DepartmentRequest) (*models.Department, error) {
	if err := s.authorize(principal); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid department payload")
	}
	dept := &models.Department{Code: req.Code, Name: req.Name, Description: req.Description}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, catalogWriteError(err, "department code or name already exists", "failed to create department")
	}
	return dept, nil
}

// UpdateDepartment replaces a department's fields.
func (s *CatalogService) UpdateDepartment(ctx context.Context, principal models.Principal, id string, req models.DepartmentRequest) (*models.Department, error) {
	if err := s.authorize(principal); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid department payload")
	}
	dept, err := s.departments.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "department not found", "failed to load department")
	}
	dept.Code, dept.Name, dept.Description = req.Code, req.Name, req.Description
	if err := s.departments.Update(ctx, dept); err != nil {
		return nil, catalogWriteError(err, "department code or name already exists", "failed to update department")
	}
	return dept, nil
}

// DeleteDepartment removes a department that nothing references.
func (s *CatalogService) DeleteDepartment(ctx context.Context, principal models.Principal, id string) error {
	if err := s.authorize(principal); err != nil {
		return err
	}
	if err := s.departments.Delete(ctx, id); err != nil {
		if repository.IsForeignKeyViolation(err) {
			return appErrors.Clone(appErrors.ErrConflict, "department still has courses or members")
		}
		return notFoundOr(err, "department not found", "failed to delete department")
	}
	return nil
}

// ListCourses returns courses matching filter.
func (s *CatalogService) ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	items, total, err := s.courses.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list courses")
	}
	if items == nil {
		items = []models.Course{}
	}
	return items, pagination(filter.Page, filter.PageSize, total), nil
}

// GetCourse returns a course by id.
func (s *CatalogService) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "course not found", "failed to load course")
	}
	return course, nil
}

// CreateCourse adds a course; new courses are active unless stated otherwise.
func (s *CatalogService) CreateCourse(ctx context.Context, principal models.Principal, req models.CourseRequest) (*models.Course, error) {
	if err := s.authorize(principal); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid course payload")
	}
	course := &models.Course{IsActive: true}
	applyCourse(course, req)
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, catalogWriteError(err, "course code already exists", "failed to create course")
	}
	return course, nil
}

// UpdateCourse replaces a course's fields.
func (s *CatalogService) UpdateCourse(ctx context.Context, principal models.Principal, id string, req models.CourseRequest) (*models.Course, error) {
	if err := s.authorize(principal); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid course payload")
	}
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "course not found", "failed to load course")
	}
	applyCourse(course, req)
	if err := s.courses.Update(ctx, course); err != nil {
		return nil, catalogWriteError(err, "course code already exists", "failed to update course")
	}
	return course, nil
}

func (s *CatalogService) authorize(principal models.Principal) error {
	if !principal.Can(models.CapManageCatalog) {
		return appErrors.Clone(appErrors.ErrUnauthorizedAction, "only admins may manage the catalog")
	}
	return nil
}

func applyCourse(c *models.Course, req models.CourseRequest) {
	c.Code = req.Code
	c.Name = req.Name
	c.Description = req.Description
	c.Credits = req.Credits
	c.DepartmentID = req.DepartmentID
	c.Semester = req.Semester
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
}

func catalogWriteError(err error, conflict, message string) error {
	switch {
	case repository.IsUniqueViolation(err, ""):
		return appErrors.Clone(appErrors.ErrConflict, conflict)
	case repository.IsForeignKeyViolation(err):
		return appErrors.Clone(appErrors.ErrValidation, "referenced department does not exist")
	}
	return notFoundOr(err, "not found", message)
}
