package service

import (
	"context"
	"slices"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-ledger-api/internal/models"
	appErrors "github.com/noah-isme/campus-ledger-api/pkg/errors"
)

type assignmentStore interface {
	Create(ctx context.Context, a *models.Assignment) error
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error)
}

type assignmentCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type teacherReader interface {
	FindTeacher(ctx context.Context, userID string) (*models.Teacher, error)
}

// AssignmentService lets teachers publish gradable work for their courses.
type AssignmentService struct {
	repo      assignmentStore
	courses   assignmentCourseReader
	teachers  teacherReader
	members   courseMembership
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(repo assignmentStore, courses assignmentCourseReader, teachers teacherReader, members courseMembership, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, courses: courses, teachers: teachers, members: members, validator: validate, logger: logger}
}

// Create adds an assignment authored by principal. The teacher must belong
// to the course's department and the maximum marks must be positive.
func (s *AssignmentService) Create(ctx context.Context, principal models.Principal, req models.AssignmentRequest) (*models.Assignment, error) {
	if !principal.Can(models.CapManageAssignments) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorizedAction, "only teachers may create assignments")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid assignment payload")
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		return nil, notFoundOr(err, "course not found", "failed to load course")
	}
	teacher, err := s.teachers.FindTeacher(ctx, principal.ID)
	if err != nil {
		return nil, notFoundOr(err, "teacher profile not found", "failed to load teacher")
	}
	if teacher.DepartmentID == nil || *teacher.DepartmentID != course.DepartmentID {
		return nil, appErrors.Clone(appErrors.ErrUnauthorizedAction, "teacher does not teach this course")
	}

	assignment := &models.Assignment{
		CourseID:    course.ID,
		TeacherID:   principal.ID,
		Title:       req.Title,
		Description: req.Description,
		Kind:        req.Kind,
		MaxMarks:    req.MaxMarks,
		DueAt:       req.DueAt.UTC(),
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, appErrors.Internal(err, "failed to create assignment")
	}
	return assignment, nil
}

// List returns assignments visible to principal. Teachers see their own,
// students see those of a course they are actively enrolled in.
func (s *AssignmentService) List(ctx context.Context, principal models.Principal, filter models.AssignmentFilter) ([]models.Assignment, *models.Pagination, error) {
	switch principal.Role {
	case models.RoleTeacher:
		filter.TeacherID = principal.ID
	case models.RoleStudent:
		if filter.CourseID == "" {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "course_id is required")
		}
		courses, err := s.members.ActiveCourseIDs(ctx, principal.ID)
		if err != nil {
			return nil, nil, appErrors.Internal(err, "failed to resolve courses")
		}
		if !slices.Contains(courses, filter.CourseID) {
			return nil, nil, appErrors.ErrNotEnrolled
		}
	case models.RoleAdmin:
	default:
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorizedAction, "role may not list assignments")
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list assignments")
	}
	if items == nil {
		items = []models.Assignment{}
	}
	return items, pagination(filter.Page, filter.PageSize, total), nil
}
