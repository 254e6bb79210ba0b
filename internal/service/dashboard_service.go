package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-ledger-api/internal/dto"
	"github.com/noah-isme/campus-ledger-api/internal/models"
	appErrors "github.com/noah-isme/campus-ledger-api/pkg/errors"
)

type adminCounter interface {
	AdminCounts(ctx context.Context) (dto.AdminCounts, error)
}

type teacherCourseLister interface {
	TaughtBy(ctx context.Context, teacherID string) ([]dto.TeacherCourseRow, error)
}

type assignmentCounter interface {
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error)
}

type gradeCounter interface {
	CountByTeacher(ctx context.Context, teacherID string) (int, error)
}

type gradeReader interface {
	RecentGrades(ctx context.Context, principal models.Principal, limit int) ([]models.GradeView, error)
	StudentGradeReport(ctx context.Context, principal models.Principal, studentID string) (*models.GradeReport, error)
}

type enrollmentLister interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
}

type attendanceSummarizer interface {
	Summary(ctx context.Context, studentID string) (models.AttendanceSummary, error)
}

type announcementReader interface {
	VisibleAnnouncements(ctx context.Context, principal models.Principal, page, pageSize int) ([]models.Announcement, *models.Pagination, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	RecentGradesLimit  int
	AnnouncementsLimit int
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Counts        adminCounter
	Courses       teacherCourseLister
	Assignments   assignmentCounter
	Grades        gradeCounter
	Ledger        gradeReader
	Enrollments   enrollmentLister
	Attendance    attendanceSummarizer
	Announcements announcementReader
	Cache         *CacheService
	Logger        *zap.Logger
	Config        DashboardServiceConfig
}

// DashboardService composes the landing page of each role. Results are
// cached per principal and dropped by the writes that change them.
type DashboardService struct {
	counts        adminCounter
	courses       teacherCourseLister
	assignments   assignmentCounter
	grades        gradeCounter
	ledger        gradeReader
	enrollments   enrollmentLister
	attendance    attendanceSummarizer
	announcements announcementReader
	cache         *CacheService
	logger        *zap.Logger
	now           func() time.Time
	cfg           DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.RecentGradesLimit <= 0 {
		cfg.RecentGradesLimit = 10
	}
	if cfg.AnnouncementsLimit <= 0 {
		cfg.AnnouncementsLimit = 5
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		counts:        params.Counts,
		courses:       params.Courses,
		assignments:   params.Assignments,
		grades:        params.Grades,
		ledger:        params.Ledger,
		enrollments:   params.Enrollments,
		attendance:    params.Attendance,
		announcements: params.Announcements,
		cache:         params.Cache,
		logger:        logger,
		now:           time.Now,
		cfg:           cfg,
	}
}

// Admin returns institution-wide counters and indicates cache utilisation.
func (s *DashboardService) Admin(ctx context.Context, principal models.Principal) (*dto.AdminDashboardResponse, bool, error) {
	if !principal.Can(models.CapViewAdminDashboard) {
		return nil, false, appErrors.Clone(appErrors.ErrUnauthorizedAction, "admin dashboard requires the admin role")
	}
	return remember(ctx, s.cache, DashboardKey(principal.Role, principal.ID), func() (*dto.AdminDashboardResponse, error) {
		counts, err := s.counts.AdminCounts(ctx)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to load admin counters")
		}
		return &dto.AdminDashboardResponse{
			Students:          counts.Students,
			Teachers:          counts.Teachers,
			Admins:            counts.Admins,
			ActiveCourses:     counts.ActiveCourses,
			ActiveEnrollments: counts.ActiveEnrollments,
			AverageGPA:        counts.AverageGPA,
			GeneratedAt:       s.now().UTC(),
		}, nil
	})
}

// Teacher returns the teacher's courses, workload and latest grades.
func (s *DashboardService) Teacher(ctx context.Context, principal models.Principal) (*dto.TeacherDashboardResponse, bool, error) {
	if !principal.IsTeacher() {
		return nil, false, appErrors.Clone(appErrors.ErrUnauthorizedAction, "teacher dashboard requires the teacher role")
	}
	return remember(ctx, s.cache, DashboardKey(principal.Role, principal.ID), func() (*dto.TeacherDashboardResponse, error) {
		courses, err := s.courses.TaughtBy(ctx, principal.ID)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to load courses")
		}
		_, assignments, err := s.assignments.List(ctx, models.AssignmentFilter{TeacherID: principal.ID, PageSize: 1})
		if err != nil {
			return nil, appErrors.Internal(err, "failed to count assignments")
		}
		graded, err := s.grades.CountByTeacher(ctx, principal.ID)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to count grades")
		}
		recent, err := s.ledger.RecentGrades(ctx, principal, s.cfg.RecentGradesLimit)
		if err != nil {
			return nil, err
		}
		if courses == nil {
			courses = []dto.TeacherCourseRow{}
		}
		return &dto.TeacherDashboardResponse{
			TeacherID:      principal.ID,
			Courses:        courses,
			Assignments:    assignments,
			GradesRecorded: graded,
			RecentGrades:   recent,
			GeneratedAt:    s.now().UTC(),
		}, nil
	})
}

// Student returns the student's enrollments, grade report, attendance rate
// and latest announcements.
func (s *DashboardService) Student(ctx context.Context, principal models.Principal) (*dto.StudentDashboardResponse, bool, error) {
	if !principal.IsStudent() {
		return nil, false, appErrors.Clone(appErrors.ErrUnauthorizedAction, "student dashboard requires the student role")
	}
	return remember(ctx, s.cache, DashboardKey(principal.Role, principal.ID), func() (*dto.StudentDashboardResponse, error) {
		active := true
		enrollments, _, err := s.enrollments.List(ctx, models.EnrollmentFilter{StudentID: principal.ID, Active: &active, PageSize: 100})
		if err != nil {
			return nil, appErrors.Internal(err, "failed to load enrollments")
		}
		report, err := s.ledger.StudentGradeReport(ctx, principal, principal.ID)
		if err != nil {
			return nil, err
		}
		summary, err := s.attendance.Summary(ctx, principal.ID)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to summarise attendance")
		}
		announcements, _, err := s.announcements.VisibleAnnouncements(ctx, principal, 1, s.cfg.AnnouncementsLimit)
		if err != nil {
			return nil, err
		}
		if enrollments == nil {
			enrollments = []models.EnrollmentDetail{}
		}
		return &dto.StudentDashboardResponse{
			StudentID:      principal.ID,
			Enrollments:    enrollments,
			Report:         *report,
			AttendanceRate: summary.Rate(),
			Announcements:  announcements,
			GeneratedAt:    s.now().UTC(),
		}, nil
	})
}

// ForPrincipal dispatches to the dashboard of the principal's role.
func (s *DashboardService) ForPrincipal(ctx context.Context, principal models.Principal) (interface{}, bool, error) {
	switch principal.Role {
	case models.RoleAdmin:
		return s.Admin(ctx, principal)
	case models.RoleTeacher:
		return s.Teacher(ctx, principal)
	case models.RoleStudent:
		return s.Student(ctx, principal)
	}
	return nil, false, appErrors.Clone(appErrors.ErrUnauthorizedAction, "unknown role")
}
