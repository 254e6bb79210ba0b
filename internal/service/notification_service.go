package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-ledger-api/internal/models"
	appErrors "github.com/noah-isme/campus-ledger-api/pkg/errors"
	"github.com/noah-isme/campus-ledger-api/pkg/jobs"
)

type notificationStore interface {
	CreateBatch(ctx context.Context, items []models.Notification) error
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error)
	MarkRead(ctx context.Context, id, recipientID string) (bool, error)
	Recipients(ctx context.Context, a models.Announcement) ([]string, error)
}

// fanoutBatchSize bounds the rows inserted per statement.
const fanoutBatchSize = 500

// NotificationService serves inboxes and fans announcements out into them.
type NotificationService struct {
	repo    notificationStore
	tx      txRunner
	metrics *MetricsService
	logger  *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(repo notificationStore, tx txRunner, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, tx: tx, metrics: metrics, logger: logger}
}

// List returns the principal's own notifications.
func (s *NotificationService) List(ctx context.Context, principal models.Principal, filter models.NotificationFilter) ([]models.Notification, *models.Pagination, error) {
	filter.RecipientID = principal.ID
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list notifications")
	}
	if items == nil {
		items = []models.Notification{}
	}
	return items, pagination(filter.Page, filter.PageSize, total), nil
}

// MarkRead flags one of the principal's notifications as read. Another
// person's notification is reported as missing.
func (s *NotificationService) MarkRead(ctx context.Context, principal models.Principal, id string) error {
	ok, err := s.repo.MarkRead(ctx, id, principal.ID)
	if err != nil {
		return appErrors.Internal(err, "failed to mark notification read")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
	}
	return nil
}

// Fanout is the queue handler that writes one notification per recipient of
// an announcement. All batches commit together, so a retried job never
// leaves duplicates behind.
func (s *NotificationService) Fanout(ctx context.Context, job jobs.Job[models.Announcement]) error {
	ann := job.Payload
	recipients, err := s.repo.Recipients(ctx, ann)
	if err != nil {
		return fmt.Errorf("resolve recipients: %w", err)
	}

	title := fmt.Sprintf("New announcement: %s", ann.Title)
	store := func(ctx context.Context) error {
		for start := 0; start < len(recipients); start += fanoutBatchSize {
			end := min(start+fanoutBatchSize, len(recipients))
			batch := make([]models.Notification, 0, end-start)
			for _, id := range recipients[start:end] {
				batch = append(batch, models.Notification{RecipientID: id, Title: title, Message: ann.Content})
			}
			if err := s.repo.CreateBatch(ctx, batch); err != nil {
				return fmt.Errorf("store notifications: %w", err)
			}
		}
		return nil
	}
	if s.tx != nil {
		err = s.tx.WithinTx(ctx, store)
	} else {
		err = store(ctx)
	}
	if err != nil {
		return err
	}
	s.metrics.AddNotifications(len(recipients))

	s.logger.Debug("announcement fan-out complete",
		zap.String("announcement_id", ann.ID),
		zap.Int("recipients", len(recipients)),
		zap.Int("attempt", job.Attempt),
	)
	return nil
}
