package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-ledger-api/internal/models"
	"github.com/noah-isme/campus-ledger-api/internal/repository"
	appErrors "github.com/noah-isme/campus-ledger-api/pkg/errors"
	"github.com/noah-isme/campus-ledger-api/pkg/events"
)

type enrollmentStore interface {
	Enroll(ctx context.Context, e *models.Enrollment) error
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	Deactivate(ctx context.Context, id string) error
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
}

type enrollmentCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Eligible(ctx context.Context, departmentID string, semester int) ([]models.Course, error)
}

type enrollmentProfileReader interface {
	FindStudent(ctx context.Context, userID string) (*models.Student, error)
	FirstTeacherInDepartment(ctx context.Context, departmentID string) (*models.TeacherProfile, error)
}

// EnrollmentServiceParams groups constructor dependencies.
type EnrollmentServiceParams struct {
	Tx          txRunner
	Enrollments enrollmentStore
	Courses     enrollmentCourseReader
	Profiles    enrollmentProfileReader
	Audit       auditRecorder
	Events      eventPublisher
	Cache       *CacheService
	Metrics     *MetricsService
	Validator   *validator.Validate
	Logger      *zap.Logger
}

// EnrollmentService enrolls students into courses and assigns their teacher.
type EnrollmentService struct {
	tx          txRunner
	enrollments enrollmentStore
	courses     enrollmentCourseReader
	profiles    enrollmentProfileReader
	audit       auditRecorder
	events      eventPublisher
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEnrollmentService constructs the enrollment manager.
func NewEnrollmentService(p EnrollmentServiceParams) *EnrollmentService {
	if p.Validator == nil {
		p.Validator = validator.New()
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Events == nil {
		p.Events = events.NopPublisher{}
	}
	return &EnrollmentService{
		tx:          p.Tx,
		enrollments: p.Enrollments,
		courses:     p.Courses,
		profiles:    p.Profiles,
		audit:       p.Audit,
		events:      p.Events,
		cache:       p.Cache,
		metrics:     p.Metrics,
		validator:   p.Validator,
		logger:      p.Logger,
	}
}

// Enroll places a student in an active course and assigns the department's
// longest-serving teacher. Admins may enroll anyone, students only themselves.
// Concurrent attempts for the same pair are settled by the unique constraint
// on (student, course): exactly one succeeds, the rest see AlreadyEnrolled.
func (s *EnrollmentService) Enroll(ctx context.Context, principal models.Principal, req models.EnrollRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid enrollment payload")
	}
	switch {
	case principal.IsAdmin():
	case principal.IsStudent() && principal.ID == req.StudentID:
	default:
		return nil, appErrors.Clone(appErrors.ErrUnauthorizedAction, "students may only enroll themselves")
	}

	var enrollment models.Enrollment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		course, err := s.courses.FindByID(ctx, req.CourseID)
		if err != nil {
			return notFoundOr(err, "course not found", "failed to load course")
		}
		if !course.IsActive {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "course is not active")
		}

		if _, err := s.profiles.FindStudent(ctx, req.StudentID); err != nil {
			return notFoundOr(err, "student not found", "failed to load student")
		}

		teacher, err := s.profiles.FirstTeacherInDepartment(ctx, course.DepartmentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.ErrNoTeacherAvailable
			}
			return appErrors.Internal(err, "failed to resolve teacher")
		}

		enrollment = models.Enrollment{StudentID: req.StudentID, CourseID: course.ID, TeacherID: teacher.UserID}
		if err := s.enrollments.Enroll(ctx, &enrollment); err != nil {
			if errors.Is(err, repository.ErrEnrollmentActive) {
				return appErrors.ErrAlreadyEnrolled
			}
			return appErrors.Internal(err, "failed to enroll student")
		}
		return nil
	})
	s.metrics.RecordLedgerOperation("enroll", outcome(err))
	if err != nil {
		return nil, passthrough(err, "failed to enroll student")
	}

	s.cache.InvalidateDashboards(ctx, enrollment.StudentID, enrollment.TeacherID)
	if err := s.events.Publish(ctx, events.NewEvent(events.EnrollmentCreated, enrollment)); err != nil {
		s.logger.Warn("failed to publish enrollment event", zap.String("enrollment_id", enrollment.ID), zap.Error(err))
	}
	s.recordAudit(ctx, principal, models.AuditActionEnroll, enrollment)
	return &enrollment, nil
}

// Deactivate withdraws an enrollment. Grades already recorded are kept.
func (s *EnrollmentService) Deactivate(ctx context.Context, principal models.Principal, id string) error {
	if !principal.Can(models.CapManageEnrollments) {
		return appErrors.Clone(appErrors.ErrUnauthorizedAction, "only admins may deactivate enrollments")
	}
	enrollment, err := s.enrollments.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "enrollment not found", "failed to load enrollment")
	}
	if err := s.enrollments.Deactivate(ctx, id); err != nil {
		return notFoundOr(err, "enrollment not found", "failed to deactivate enrollment")
	}
	enrollment.IsActive = false

	s.cache.InvalidateDashboards(ctx, enrollment.StudentID, enrollment.TeacherID)
	s.recordAudit(ctx, principal, models.AuditActionUnenroll, *enrollment)
	return nil
}

// EligibleCourses lists the active courses of the student's department in
// the student's current semester.
func (s *EnrollmentService) EligibleCourses(ctx context.Context, principal models.Principal, studentID string) ([]models.Course, error) {
	if studentID == "" && principal.IsStudent() {
		studentID = principal.ID
	}
	if principal.IsStudent() && studentID != principal.ID {
		return nil, appErrors.Clone(appErrors.ErrUnauthorizedAction, "students may only view their own eligible courses")
	}
	if principal.IsTeacher() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorizedAction, "teachers may not list eligible courses")
	}

	student, err := s.profiles.FindStudent(ctx, studentID)
	if err != nil {
		return nil, notFoundOr(err, "student not found", "failed to load student")
	}
	if student.DepartmentID == nil {
		return []models.Course{}, nil
	}

	courses, err := s.courses.Eligible(ctx, *student.DepartmentID, student.Semester)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list eligible courses")
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

// List returns enrollments visible to principal: students see their own,
// teachers those assigned to them, admins everything.
func (s *EnrollmentService) List(ctx context.Context, principal models.Principal, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	switch principal.Role {
	case models.RoleStudent:
		filter.StudentID = principal.ID
	case models.RoleTeacher:
		filter.TeacherID = principal.ID
	case models.RoleAdmin:
	default:
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorizedAction, "role may not list enrollments")
	}

	items, total, err := s.enrollments.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list enrollments")
	}
	return items, pagination(filter.Page, filter.PageSize, total), nil
}

func (s *EnrollmentService) recordAudit(ctx context.Context, principal models.Principal, action string, e models.Enrollment) {
	if s.audit == nil {
		return
	}
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &principal.ID,
		Action:     action,
		Resource:   "enrollment",
		ResourceID: &e.ID,
		NewValues:  auditValues(e),
	}); err != nil {
		s.logger.Warn("failed to record enrollment audit log", zap.String("action", action), zap.Error(err))
	}
}
