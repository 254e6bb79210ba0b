package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/campus-ledger-api/internal/models"
	"github.com/noah-isme/campus-ledger-api/internal/repository"
	appErrors "github.com/noah-isme/campus-ledger-api/pkg/errors"
)

type userStore interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	SetActive(ctx context.Context, id string, active bool) error
	CreateAuditLog(ctx context.Context, entry *models.AuditLog) error
}

type profileWriter interface {
	NextNumber(ctx context.Context) (int64, error)
	CreateStudent(ctx context.Context, p *models.StudentProfile) error
	CreateTeacher(ctx context.Context, p *models.TeacherProfile) error
}

const defaultDesignation = "Lecturer"

// UserService registers persons and manages their accounts.
type UserService struct {
	repo      userStore
	profiles  profileWriter
	tx        txRunner
	validator *validator.Validate
	logger    *zap.Logger
	hashCost  int
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userStore, profiles profileWriter, tx txRunner, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, profiles: profiles, tx: tx, validator: validate, logger: logger, hashCost: bcrypt.DefaultCost}
}

// Register creates a person with a fixed role and, in the same transaction,
// the profile that role requires.
func (s *UserService) Register(ctx context.Context, actor models.Principal, req models.RegisterRequest, meta models.ClientMeta) (*models.Registration, error) {
	if !actor.Can(models.CapRegisterUsers) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorizedAction, "only admins may register users")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid registration payload")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash password")
	}

	reg := &models.Registration{User: models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         req.Role,
		Active:       true,
	}}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.FindByEmail(ctx, reg.User.Email); err == nil {
			return appErrors.Clone(appErrors.ErrConflict, "email already exists")
		} else if !errors.Is(err, sql.ErrNoRows) {
			return appErrors.Internal(err, "failed to check email uniqueness")
		}

		if err := s.repo.Create(ctx, &reg.User); err != nil {
			if repository.IsUniqueViolation(err, "users_email_key") {
				return appErrors.Clone(appErrors.ErrConflict, "email already exists")
			}
			return appErrors.Internal(err, "failed to create user")
		}
		return s.createProfile(ctx, reg, req)
	})
	if err != nil {
		return nil, passthrough(err, "failed to register user")
	}

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actor.ID,
		Action:     models.AuditActionRegister,
		Resource:   "users",
		ResourceID: &reg.User.ID,
		NewValues:  auditValues(map[string]interface{}{"id": reg.User.ID, "email": reg.User.Email, "role": reg.User.Role}),
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record registration audit log", zap.Error(err))
	}
	return reg, nil
}

func (s *UserService) createProfile(ctx context.Context, reg *models.Registration, req models.RegisterRequest) error {
	switch req.Role {
	case models.RoleStudent:
		n, err := s.profiles.NextNumber(ctx)
		if err != nil {
			return appErrors.Internal(err, "failed to allocate student number")
		}
		profile := &models.StudentProfile{
			UserID:        reg.User.ID,
			StudentNumber: fmt.Sprintf("STU_%06d", n),
			DepartmentID:  req.DepartmentID,
			Year:          max(req.Year, 1),
			Semester:      max(req.Semester, 1),
		}
		if err := s.profiles.CreateStudent(ctx, profile); err != nil {
			return appErrors.Internal(err, "failed to create student profile")
		}
		reg.Student = profile
	case models.RoleTeacher:
		n, err := s.profiles.NextNumber(ctx)
		if err != nil {
			return appErrors.Internal(err, "failed to allocate employee number")
		}
		profile := &models.TeacherProfile{
			UserID:         reg.User.ID,
			EmployeeNumber: fmt.Sprintf("EMP_%06d", n),
			DepartmentID:   req.DepartmentID,
			Designation:    req.Designation,
			JoinDate:       time.Now().UTC(),
		}
		if profile.Designation == "" {
			profile.Designation = defaultDesignation
		}
		if err := s.profiles.CreateTeacher(ctx, profile); err != nil {
			return appErrors.Internal(err, "failed to create teacher profile")
		}
		reg.Teacher = profile
	}
	return nil
}

// List returns paginated users and pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	if users == nil {
		users = []models.User{}
	}
	return users, pagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user not found", "failed to load user")
	}
	return user, nil
}

// SetActive enables or disables sign-in for a user. An admin cannot
// deactivate themselves.
func (s *UserService) SetActive(ctx context.Context, actor models.Principal, id string, active bool) error {
	if !actor.Can(models.CapRegisterUsers) {
		return appErrors.Clone(appErrors.ErrUnauthorizedAction, "only admins may change account status")
	}
	if !active && actor.ID == id {
		return appErrors.Clone(appErrors.ErrValidation, "cannot deactivate your own account")
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return notFoundOr(err, "user not found", "failed to update user")
	}
	return nil
}
