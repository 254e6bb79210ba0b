package service

import (
	"context"
	"iter"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-ledger-api/internal/models"
	appErrors "github.com/noah-isme/campus-ledger-api/pkg/errors"
	"github.com/noah-isme/campus-ledger-api/pkg/events"
)

type ledgerAssignmentReader interface {
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
}

type ledgerEnrollmentChecker interface {
	HasActive(ctx context.Context, studentID, courseID string) (bool, error)
	Teaches(ctx context.Context, teacherID, studentID string) (bool, error)
}

type ledgerGradeStore interface {
	Upsert(ctx context.Context, g *models.Grade) error
	Each(ctx context.Context, scope models.GradeScope, fn func(models.GradeView) bool) error
	Marks(ctx context.Context, studentID string) ([]models.GradeMark, error)
}

type ledgerStudentStore interface {
	FindStudent(ctx context.Context, userID string) (*models.Student, error)
	UpdateGPA(ctx context.Context, userID string, gpa float64, at time.Time) error
}

// LedgerServiceParams groups constructor dependencies.
type LedgerServiceParams struct {
	Tx          txRunner
	Assignments ledgerAssignmentReader
	Enrollments ledgerEnrollmentChecker
	Grades      ledgerGradeStore
	Students    ledgerStudentStore
	Audit       auditRecorder
	Events      eventPublisher
	Cache       *CacheService
	Metrics     *MetricsService
	Validator   *validator.Validate
	Logger      *zap.Logger
}

// LedgerService records grades and answers role-scoped grade queries.
type LedgerService struct {
	tx          txRunner
	assignments ledgerAssignmentReader
	enrollments ledgerEnrollmentChecker
	grades      ledgerGradeStore
	students    ledgerStudentStore
	audit       auditRecorder
	events      eventPublisher
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewLedgerService constructs the grade ledger.
func NewLedgerService(p LedgerServiceParams) *LedgerService {
	if p.Validator == nil {
		p.Validator = validator.New()
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Events == nil {
		p.Events = events.NopPublisher{}
	}
	return &LedgerService{
		tx:          p.Tx,
		assignments: p.Assignments,
		enrollments: p.Enrollments,
		grades:      p.Grades,
		students:    p.Students,
		audit:       p.Audit,
		events:      p.Events,
		cache:       p.Cache,
		metrics:     p.Metrics,
		validator:   p.Validator,
		logger:      p.Logger,
		now:         time.Now,
	}
}

// RecordGrade creates or overwrites the grade a student holds for an
// assignment. Only the assignment's teacher may write it, and only for a
// student actively enrolled in the assignment's course.
func (s *LedgerService) RecordGrade(ctx context.Context, principal models.Principal, req models.RecordGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid grade payload")
	}

	var grade models.Grade
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		assignment, err := s.assignments.FindByID(ctx, req.AssignmentID)
		if err != nil {
			return notFoundOr(err, "assignment not found", "failed to load assignment")
		}
		if !principal.Can(models.CapRecordGrade) || assignment.TeacherID != principal.ID {
			return appErrors.Clone(appErrors.ErrUnauthorizedAction, "only the assignment's teacher may record grades")
		}

		marks := *req.MarksObtained
		if math.IsNaN(marks) || marks < 0 || marks > assignment.MaxMarks || !ValidMarksScale(marks) {
			return appErrors.ErrInvalidMarks
		}

		active, err := s.enrollments.HasActive(ctx, req.StudentID, assignment.CourseID)
		if err != nil {
			return appErrors.Internal(err, "failed to check enrollment")
		}
		if !active {
			return appErrors.ErrNotEnrolled
		}

		now := s.now().UTC()
		grade = models.Grade{
			StudentID:     req.StudentID,
			AssignmentID:  req.AssignmentID,
			MarksObtained: marks,
			Feedback:      req.Feedback,
			GradedBy:      principal.ID,
			GradedAt:      now,
			UpdatedAt:     now,
		}
		if err := s.grades.Upsert(ctx, &grade); err != nil {
			return appErrors.Internal(err, "failed to record grade")
		}
		return nil
	})
	s.metrics.RecordLedgerOperation("record_grade", outcome(err))
	if err != nil {
		return nil, passthrough(err, "failed to record grade")
	}

	s.cache.InvalidateDashboards(ctx, grade.StudentID, principal.ID)
	if err := s.events.Publish(ctx, events.NewEvent(events.GradeRecorded, grade)); err != nil {
		s.logger.Warn("failed to publish grade event", zap.String("grade_id", grade.ID), zap.Error(err))
	}
	if s.audit != nil {
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     &principal.ID,
			Action:     models.AuditActionGradeRecord,
			Resource:   "grade",
			ResourceID: &grade.ID,
			NewValues:  auditValues(grade),
		}); err != nil {
			s.logger.Warn("failed to record grade audit log", zap.Error(err))
		}
	}
	return &grade, nil
}

// ComputeGPA recomputes a student's GPA from every grade they hold and
// persists it when it differs from the stored value. A student without grades
// keeps the stored GPA. An empty studentID means the principal's own.
func (s *LedgerService) ComputeGPA(ctx context.Context, principal models.Principal, studentID string) (float64, error) {
	studentID, err := s.authorizeStudentRead(ctx, principal, studentID)
	if err != nil {
		return 0, err
	}
	student, err := s.students.FindStudent(ctx, studentID)
	if err != nil {
		return 0, notFoundOr(err, "student not found", "failed to load student")
	}
	return s.refreshGPA(ctx, student)
}

// authorizeStudentRead resolves whose record principal is reading. Students
// read only themselves, teachers only students they are assigned to, and
// admins anyone.
func (s *LedgerService) authorizeStudentRead(ctx context.Context, principal models.Principal, studentID string) (string, error) {
	if studentID == "" && principal.IsStudent() {
		studentID = principal.ID
	}
	if studentID == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}

	switch principal.Role {
	case models.RoleAdmin:
		return studentID, nil
	case models.RoleStudent:
		if studentID == principal.ID {
			return studentID, nil
		}
		return "", appErrors.Clone(appErrors.ErrUnauthorizedAction, "students may only view their own records")
	case models.RoleTeacher:
		ok, err := s.enrollments.Teaches(ctx, principal.ID, studentID)
		if err != nil {
			return "", appErrors.Internal(err, "failed to check teaching assignment")
		}
		if ok {
			return studentID, nil
		}
		return "", appErrors.Clone(appErrors.ErrUnauthorizedAction, "teachers may only view students they teach")
	}
	return "", appErrors.Clone(appErrors.ErrUnauthorizedAction, "role may not view student records")
}

func (s *LedgerService) refreshGPA(ctx context.Context, student *models.Student) (float64, error) {
	marks, err := s.grades.Marks(ctx, student.UserID)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to load marks")
	}

	percentages := make([]float64, 0, len(marks))
	for _, m := range marks {
		pct, err := ComputePercentage(m.MarksObtained, m.MaxMarks)
		if err != nil {
			return 0, err
		}
		percentages = append(percentages, pct)
	}

	gpa, ok := GPAFromPercentages(percentages)
	if !ok || gpa == student.GPA {
		return student.GPA, nil
	}

	if err := s.students.UpdateGPA(ctx, student.UserID, gpa, s.now().UTC()); err != nil {
		return 0, appErrors.Internal(err, "failed to persist gpa")
	}
	s.metrics.RecordGPAWrite()
	return gpa, nil
}

// VisibleGrades streams the grades principal may read, newest first. Each
// range over the result runs a fresh query.
//
// Students read only their own grades; asking for another student's fails.
// Teachers read grades on assignments they authored, optionally narrowed to
// one student. Admins read everything, optionally narrowed to one student.
func (s *LedgerService) VisibleGrades(ctx context.Context, principal models.Principal, studentID string) iter.Seq2[models.GradeView, error] {
	scope, scopeErr := gradeScope(principal, studentID)
	return s.scopedGrades(ctx, scope, scopeErr)
}

// RecentGrades collects up to limit of the newest grades principal may read.
func (s *LedgerService) RecentGrades(ctx context.Context, principal models.Principal, limit int) ([]models.GradeView, error) {
	scope, err := gradeScope(principal, "")
	scope.Limit = limit
	return collectGrades(s.scopedGrades(ctx, scope, err))
}

func (s *LedgerService) scopedGrades(ctx context.Context, scope models.GradeScope, scopeErr error) iter.Seq2[models.GradeView, error] {
	return func(yield func(models.GradeView, error) bool) {
		if scopeErr != nil {
			yield(models.GradeView{}, scopeErr)
			return
		}

		var stopped bool
		var viewErr error
		err := s.grades.Each(ctx, scope, func(view models.GradeView) bool {
			if viewErr = decorateGrade(&view); viewErr != nil {
				return false
			}
			if !yield(view, nil) {
				stopped = true
				return false
			}
			return true
		})
		switch {
		case stopped:
		case viewErr != nil:
			yield(models.GradeView{}, viewErr)
		case err != nil:
			yield(models.GradeView{}, appErrors.Internal(err, "failed to list grades"))
		}
	}
}

// StudentGradeReport returns the grades principal may read for one student
// together with the student's freshly recomputed GPA. Teachers receive the
// report only for students they teach.
func (s *LedgerService) StudentGradeReport(ctx context.Context, principal models.Principal, studentID string) (*models.GradeReport, error) {
	studentID, err := s.authorizeStudentRead(ctx, principal, studentID)
	if err != nil {
		return nil, err
	}

	grades, err := collectGrades(s.VisibleGrades(ctx, principal, studentID))
	if err != nil {
		return nil, err
	}

	student, err := s.students.FindStudent(ctx, studentID)
	if err != nil {
		return nil, notFoundOr(err, "student not found", "failed to load student")
	}
	gpa, err := s.refreshGPA(ctx, student)
	if err != nil {
		return nil, err
	}

	return &models.GradeReport{
		StudentID:     student.UserID,
		StudentNumber: student.StudentNumber,
		FullName:      student.FullName,
		GPA:           gpa,
		Grades:        grades,
	}, nil
}

func gradeScope(principal models.Principal, studentID string) (models.GradeScope, error) {
	switch principal.Role {
	case models.RoleStudent:
		if studentID != "" && studentID != principal.ID {
			return models.GradeScope{}, appErrors.Clone(appErrors.ErrUnauthorizedAction, "students may only view their own grades")
		}
		return models.GradeScope{StudentID: principal.ID}, nil
	case models.RoleTeacher:
		return models.GradeScope{StudentID: studentID, TeacherID: principal.ID}, nil
	case models.RoleAdmin:
		return models.GradeScope{StudentID: studentID}, nil
	}
	return models.GradeScope{}, appErrors.Clone(appErrors.ErrUnauthorizedAction, "role may not view grades")
}

func decorateGrade(view *models.GradeView) error {
	pct, err := ComputePercentage(view.MarksObtained, view.MaxMarks)
	if err != nil {
		return err
	}
	view.Percentage = RoundHalfEven(pct, 2)
	view.Letter = ComputeLetterGrade(pct)
	return nil
}

func collectGrades(seq iter.Seq2[models.GradeView, error]) ([]models.GradeView, error) {
	grades := make([]models.GradeView, 0)
	for view, err := range seq {
		if err != nil {
			return nil, err
		}
		grades = append(grades, view)
	}
	return grades, nil
}
