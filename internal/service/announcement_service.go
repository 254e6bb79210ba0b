package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-ledger-api/internal/models"
	appErrors "github.com/noah-isme/campus-ledger-api/pkg/errors"
	"github.com/noah-isme/campus-ledger-api/pkg/events"
	"github.com/noah-isme/campus-ledger-api/pkg/jobs"
)

type announcementStore interface {
	ListVisible(ctx context.Context, scope models.AnnouncementScope) ([]models.Announcement, int, error)
	Create(ctx context.Context, a *models.Announcement) error
	FindByID(ctx context.Context, id string) (*models.Announcement, error)
	Deactivate(ctx context.Context, id string) error
}

type departmentResolver interface {
	DepartmentOf(ctx context.Context, userID string) (*string, error)
}

type courseMembership interface {
	ActiveCourseIDs(ctx context.Context, personID string) ([]string, error)
}

type announcementDispatcher interface {
	Enqueue(ctx context.Context, job jobs.Job[models.Announcement]) error
}

// FanoutJobType tags notification fan-out jobs.
const FanoutJobType = "announcement.fanout"

// AnnouncementServiceParams groups constructor dependencies.
type AnnouncementServiceParams struct {
	Repo        announcementStore
	Departments departmentResolver
	Courses     courseMembership
	Fanout      announcementDispatcher
	Events      eventPublisher
	Cache       *CacheService
	Validator   *validator.Validate
	Logger      *zap.Logger
}

// AnnouncementService publishes announcements and resolves what each
// principal may read.
type AnnouncementService struct {
	repo        announcementStore
	departments departmentResolver
	courses     courseMembership
	fanout      announcementDispatcher
	events      eventPublisher
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewAnnouncementService constructs the service.
func NewAnnouncementService(p AnnouncementServiceParams) *AnnouncementService {
	if p.Validator == nil {
		p.Validator = validator.New()
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Events == nil {
		p.Events = events.NopPublisher{}
	}
	return &AnnouncementService{
		repo:        p.Repo,
		departments: p.Departments,
		courses:     p.Courses,
		fanout:      p.Fanout,
		events:      p.Events,
		cache:       p.Cache,
		validator:   p.Validator,
		logger:      p.Logger,
		now:         time.Now,
	}
}

// VisibleAnnouncements lists the live announcements principal may read,
// newest first with higher priority first among equals.
//
// Everyone reads the "all" audience, students and teachers read their role
// audience, and admins read every audience. Department announcements also
// reach members of that department; course announcements reach students
// actively enrolled in the course and its assigned teachers.
func (s *AnnouncementService) VisibleAnnouncements(ctx context.Context, principal models.Principal, page, pageSize int) ([]models.Announcement, *models.Pagination, error) {
	scope, err := s.scopeFor(ctx, principal)
	if err != nil {
		return nil, nil, err
	}
	scope.Page, scope.PageSize = page, pageSize

	items, total, err := s.repo.ListVisible(ctx, scope)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list announcements")
	}
	if items == nil {
		items = []models.Announcement{}
	}
	return items, pagination(page, pageSize, total), nil
}

func (s *AnnouncementService) scopeFor(ctx context.Context, principal models.Principal) (models.AnnouncementScope, error) {
	scope := models.AnnouncementScope{
		Audiences: models.RoleAudiences(principal.Role),
		Now:       s.now().UTC(),
	}
	if principal.IsAdmin() {
		return scope, nil
	}

	dept, err := s.departments.DepartmentOf(ctx, principal.ID)
	if err != nil {
		return scope, appErrors.Internal(err, "failed to resolve department")
	}
	if dept != nil {
		scope.DepartmentIDs = []string{*dept}
	}

	courses, err := s.courses.ActiveCourseIDs(ctx, principal.ID)
	if err != nil {
		return scope, appErrors.Internal(err, "failed to resolve courses")
	}
	scope.CourseIDs = courses
	return scope, nil
}

// Create publishes an announcement and queues notifications for its audience.
func (s *AnnouncementService) Create(ctx context.Context, principal models.Principal, req models.AnnouncementRequest) (*models.Announcement, error) {
	if !principal.Can(models.CapPublishAnnouncement) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorizedAction, "only admins and teachers may publish announcements")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid announcement payload")
	}

	now := s.now().UTC()
	ann := models.Announcement{
		Title:          req.Title,
		Content:        req.Content,
		AuthorID:       principal.ID,
		Priority:       req.Priority,
		TargetAudience: req.TargetAudience,
		IsActive:       true,
		ExpiresAt:      req.ExpiresAt,
		CreatedAt:      now,
	}
	if ann.Priority == "" {
		ann.Priority = models.PriorityMedium
	}

	switch req.TargetAudience {
	case models.AudienceDepartment:
		if req.DepartmentID == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "department_id is required for department announcements")
		}
		ann.DepartmentID = req.DepartmentID
	case models.AudienceCourse:
		if req.CourseID == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "course_id is required for course announcements")
		}
		ann.CourseID = req.CourseID
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(now) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "expires_at must be in the future")
	}

	if err := s.repo.Create(ctx, &ann); err != nil {
		return nil, appErrors.Internal(err, "failed to create announcement")
	}

	s.cache.Invalidate(ctx, "dashboard:*")
	if s.fanout != nil {
		job := jobs.Job[models.Announcement]{ID: uuid.NewString(), Type: FanoutJobType, Payload: ann, Enqueued: now}
		if err := s.fanout.Enqueue(ctx, job); err != nil {
			s.logger.Warn("failed to enqueue announcement fan-out", zap.String("announcement_id", ann.ID), zap.Error(err))
		}
	}
	if err := s.events.Publish(ctx, events.NewEvent(events.AnnouncementCreated, ann)); err != nil {
		s.logger.Warn("failed to publish announcement event", zap.String("announcement_id", ann.ID), zap.Error(err))
	}
	return &ann, nil
}

// Deactivate withdraws an announcement. Only its author or an admin may.
func (s *AnnouncementService) Deactivate(ctx context.Context, principal models.Principal, id string) error {
	ann, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "announcement not found", "failed to load announcement")
	}
	if !principal.IsAdmin() && ann.AuthorID != principal.ID {
		return appErrors.Clone(appErrors.ErrUnauthorizedAction, "only the author or an admin may deactivate an announcement")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return notFoundOr(err, "announcement not found", "failed to deactivate announcement")
	}
	s.cache.Invalidate(ctx, "dashboard:*")
	return nil
}
