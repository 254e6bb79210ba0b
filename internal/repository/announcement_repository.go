package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/campus-ledger-api/internal/models"
)

const announcementColumns = `id, title, content, author_id, priority, target_audience, department_id, course_id, is_active, expires_at, created_at, updated_at`

// priorityRankSQL mirrors models.AnnouncementPriority.Rank.
const priorityRankSQL = `CASE priority WHEN 'urgent' THEN 4 WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END`

// AnnouncementRepository provides persistence for announcements.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository creates the repository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

func pqStringArray[T ~string](values []T) pq.StringArray {
	out := make(pq.StringArray, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// ListVisible returns the live announcements a scope may read, newest first
// and by descending priority within the same instant.
func (r *AnnouncementRepository) ListVisible(ctx context.Context, scope models.AnnouncementScope) ([]models.Announcement, int, error) {
	where := `FROM announcements
WHERE is_active = TRUE AND (expires_at IS NULL OR expires_at > $1)
AND (target_audience = ANY($2)
OR (target_audience = 'department' AND department_id::text = ANY($3))
OR (target_audience = 'course' AND course_id::text = ANY($4)))`
	args := []interface{}{
		scope.Now,
		pqStringArray(scope.Audiences),
		pqStringArray(scope.DepartmentIDs),
		pqStringArray(scope.CourseIDs),
	}

	_, pageSize, offset := models.Normalize(scope.Page, scope.PageSize)
	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC, %s DESC, id LIMIT %d OFFSET %d",
		announcementColumns, where, priorityRankSQL, pageSize, offset)

	var items []models.Announcement
	if err := conn(ctx, r.db).SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list announcements: %w", err)
	}

	var total int
	if err := conn(ctx, r.db).GetContext(ctx, &total, "SELECT COUNT(*) "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count announcements: %w", err)
	}
	return items, total, nil
}

// Create inserts an announcement.
func (r *AnnouncementRepository) Create(ctx context.Context, a *models.Announcement) error {
	now := time.Now().UTC()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	const query = `INSERT INTO announcements (id, title, content, author_id, priority, target_audience, department_id, course_id, is_active, expires_at, created_at, updated_at)
VALUES (:id, :title, :content, :author_id, :priority, :target_audience, :department_id, :course_id, :is_active, :expires_at, :created_at, :updated_at)`
	if _, err := conn(ctx, r.db).NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

// FindByID fetches an announcement by id.
func (r *AnnouncementRepository) FindByID(ctx context.Context, id string) (*models.Announcement, error) {
	query := `SELECT ` + announcementColumns + ` FROM announcements WHERE id = $1`
	var a models.Announcement
	if err := conn(ctx, r.db).GetContext(ctx, &a, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find announcement: %w", err)
	}
	return &a, nil
}

// Deactivate hides an announcement from every audience.
func (r *AnnouncementRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE announcements SET is_active = FALSE, updated_at = $2 WHERE id = $1`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate announcement: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
