package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-ledger-api/internal/models"
)

// NotificationRepository stores inbox entries.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs a notification repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateBatch inserts many notifications in one statement.
func (r *NotificationRepository) CreateBatch(ctx context.Context, items []models.Notification) error {
	if len(items) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
		if items[i].CreatedAt.IsZero() {
			items[i].CreatedAt = now
		}
	}
	const query = `INSERT INTO notifications (id, recipient_id, title, message, is_read, created_at) VALUES (:id, :recipient_id, :title, :message, :is_read, :created_at)`
	if _, err := conn(ctx, r.db).NamedExecContext(ctx, query, items); err != nil {
		return fmt.Errorf("create notifications: %w", err)
	}
	return nil
}

// List returns a recipient's notifications, newest first.
func (r *NotificationRepository) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error) {
	where := ` FROM notifications WHERE recipient_id = $1`
	if filter.UnreadOnly {
		where += ` AND is_read = FALSE`
	}
	_, pageSize, offset := models.Normalize(filter.Page, filter.PageSize)
	query := fmt.Sprintf("SELECT id, recipient_id, title, message, is_read, created_at%s ORDER BY created_at DESC, id LIMIT %d OFFSET %d", where, pageSize, offset)

	var items []models.Notification
	if err := conn(ctx, r.db).SelectContext(ctx, &items, query, filter.RecipientID); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	var total int
	if err := conn(ctx, r.db).GetContext(ctx, &total, "SELECT COUNT(*)"+where, filter.RecipientID); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}
	return items, total, nil
}

// MarkRead flags a notification as read; only the recipient's own rows match.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, recipientID string) (bool, error) {
	const query = `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND recipient_id = $2`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, id, recipientID)
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Recipients resolves the active persons an announcement reaches, excluding
// its author.
func (r *NotificationRepository) Recipients(ctx context.Context, a models.Announcement) ([]string, error) {
	var (
		query string
		args  = []interface{}{a.AuthorID}
	)
	switch a.TargetAudience {
	case models.AudienceStudents:
		query = `SELECT id FROM users WHERE active = TRUE AND role = 'STUDENT' AND id <> $1`
	case models.AudienceTeachers:
		query = `SELECT id FROM users WHERE active = TRUE AND role = 'TEACHER' AND id <> $1`
	case models.AudienceDepartment:
		if a.DepartmentID == nil {
			return nil, nil
		}
		query = `SELECT u.id FROM users u
LEFT JOIN student_profiles sp ON sp.user_id = u.id
LEFT JOIN teacher_profiles tp ON tp.user_id = u.id
WHERE u.active = TRUE AND u.id <> $1 AND COALESCE(sp.department_id, tp.department_id) = $2`
		args = append(args, *a.DepartmentID)
	case models.AudienceCourse:
		if a.CourseID == nil {
			return nil, nil
		}
		query = `SELECT DISTINCT x.id FROM (
SELECT student_id AS id FROM enrollments WHERE course_id = $2 AND is_active = TRUE
UNION SELECT teacher_id AS id FROM enrollments WHERE course_id = $2 AND is_active = TRUE) x
JOIN users u ON u.id = x.id WHERE u.active = TRUE AND x.id <> $1`
		args = append(args, *a.CourseID)
	default:
		query = `SELECT id FROM users WHERE active = TRUE AND id <> $1`
	}

	var ids []string
	if err := conn(ctx, r.db).SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("announcement recipients: %w", err)
	}
	return ids, nil
}
