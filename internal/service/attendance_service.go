package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-ledger-api/internal/models"
	appErrors "github.com/noah-isme/campus-ledger-api/pkg/errors"
)

type attendanceStore interface {
	Upsert(ctx context.Context, a *models.Attendance) error
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, int, error)
	Summary(ctx context.Context, studentID string) (models.AttendanceSummary, error)
}

type enrollmentTeacherLookup interface {
	TeacherOf(ctx context.Context, studentID, courseID string) (string, error)
}

const attendanceDateLayout = "2006-01-02"

// AttendanceService records course sessions for enrolled students.
type AttendanceService struct {
	tx          txRunner
	repo        attendanceStore
	enrollments enrollmentTeacherLookup
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(tx txRunner, repo attendanceStore, enrollments enrollmentTeacherLookup, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{tx: tx, repo: repo, enrollments: enrollments, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// MarkAttendance stores one mark per entry for the session. Every student
// must be actively enrolled in the course with principal as their teacher;
// a single failing entry rolls the whole session back.
func (s *AttendanceService) MarkAttendance(ctx context.Context, principal models.Principal, req models.MarkAttendanceRequest) (marks []models.Attendance, err error) {
	defer func() { s.metrics.RecordLedgerOperation("mark_attendance", outcome(err)) }()

	if !principal.Can(models.CapMarkAttendance) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorizedAction, "only teachers may mark attendance")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid attendance payload")
	}
	date, err := time.Parse(attendanceDateLayout, req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}

	marks = make([]models.Attendance, 0, len(req.Entries))
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, entry := range req.Entries {
			teacherID, err := s.enrollments.TeacherOf(ctx, entry.StudentID, req.CourseID)
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotEnrolled, "student "+entry.StudentID+" is not enrolled in the course")
			}
			if err != nil {
				return appErrors.Internal(err, "failed to load enrollment")
			}
			if teacherID != principal.ID {
				return appErrors.Clone(appErrors.ErrUnauthorizedAction, "teacher is not assigned to student "+entry.StudentID)
			}

			mark := models.Attendance{
				StudentID: entry.StudentID,
				CourseID:  req.CourseID,
				Date:      date,
				IsPresent: entry.IsPresent,
				MarkedBy:  principal.ID,
				Remarks:   entry.Remarks,
			}
			if err := s.repo.Upsert(ctx, &mark); err != nil {
				return appErrors.Internal(err, "failed to store attendance")
			}
			marks = append(marks, mark)
		}
		return nil
	})
	if err != nil {
		return nil, passthrough(err, "failed to mark attendance")
	}

	students := make([]string, 0, len(marks))
	for _, m := range marks {
		students = append(students, m.StudentID)
	}
	s.cache.InvalidateDashboards(ctx, students...)
	return marks, nil
}

// List returns attendance marks visible to principal.
func (s *AttendanceService) List(ctx context.Context, principal models.Principal, filter models.AttendanceFilter) ([]models.Attendance, *models.Pagination, error) {
	switch principal.Role {
	case models.RoleStudent:
		filter.StudentID = principal.ID
	case models.RoleTeacher:
		filter.TeacherID = principal.ID
	case models.RoleAdmin:
	default:
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorizedAction, "role may not list attendance")
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list attendance")
	}
	if items == nil {
		items = []models.Attendance{}
	}
	return items, pagination(filter.Page, filter.PageSize, total), nil
}

// Summary counts a student's sessions. Students may only read their own.
func (s *AttendanceService) Summary(ctx context.Context, principal models.Principal, studentID string) (models.AttendanceSummary, error) {
	if studentID == "" {
		studentID = principal.ID
	}
	if principal.IsTeacher() || (principal.IsStudent() && studentID != principal.ID) {
		return models.AttendanceSummary{}, appErrors.Clone(appErrors.ErrUnauthorizedAction, "cannot read another student's attendance")
	}
	summary, err := s.repo.Summary(ctx, studentID)
	if err != nil {
		return summary, appErrors.Internal(err, "failed to summarise attendance")
	}
	return summary, nil
}
