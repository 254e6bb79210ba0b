package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-ledger-api/internal/models"
	appErrors "github.com/noah-isme/campus-ledger-api/pkg/errors"
	"github.com/noah-isme/campus-ledger-api/pkg/jobs"
)

type fakeNotifications struct {
	recipients []string
	batches    [][]models.Notification
	failBatch  int
	lastFilter models.NotificationFilter
	owned      map[string]string
}

func (f *fakeNotifications) CreateBatch(_ context.Context, items []models.Notification) error {
	if f.failBatch > 0 && len(f.batches)+1 == f.failBatch {
		return errors.New("insert failed")
	}
	f.batches = append(f.batches, items)
	return nil
}

func (f *fakeNotifications) List(_ context.Context, filter models.NotificationFilter) ([]models.Notification, int, error) {
	f.lastFilter = filter
	return nil, 0, nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, id, recipient string) (bool, error) {
	return f.owned[id] == recipient, nil
}

func (f *fakeNotifications) Recipients(context.Context, models.Announcement) ([]string, error) {
	return f.recipients, nil
}

func TestFanoutWritesBatches(t *testing.T) {
	repo := &fakeNotifications{}
	for i := 0; i < fanoutBatchSize+3; i++ {
		repo.recipients = append(repo.recipients, fmt.Sprintf("user-%d", i))
	}
	metrics := NewMetricsService()
	tx := &fakeTx{}
	svc := NewNotificationService(repo, tx, metrics, nil)

	err := svc.Fanout(context.Background(), jobs.Job[models.Announcement]{Payload: models.Announcement{ID: "a1", Title: "Exam", Content: "Room 4"}})
	require.NoError(t, err)

	require.Len(t, repo.batches, 2)
	assert.Len(t, repo.batches[0], fanoutBatchSize)
	assert.Len(t, repo.batches[1], 3)
	assert.Equal(t, "New announcement: Exam", repo.batches[1][0].Title)
	assert.Equal(t, "Room 4", repo.batches[1][0].Message)
	assert.Equal(t, int32(1), tx.calls.Load())
	assert.Equal(t, float64(fanoutBatchSize+3), testutil.ToFloat64(metrics.notifications))
}

func TestFanoutReportsFailureForRetry(t *testing.T) {
	repo := &fakeNotifications{recipients: []string{"u1"}, failBatch: 1}
	svc := NewNotificationService(repo, nil, nil, nil)

	err := svc.Fanout(context.Background(), jobs.Job[models.Announcement]{Payload: models.Announcement{ID: "a1"}})
	assert.Error(t, err)
}

func TestNotificationInbox(t *testing.T) {
	repo := &fakeNotifications{owned: map[string]string{"n1": studentID}}
	svc := NewNotificationService(repo, nil, nil, nil)
	ctx := context.Background()

	items, _, err := svc.List(ctx, student(studentID), models.NotificationFilter{RecipientID: otherStud, UnreadOnly: true})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Equal(t, studentID, repo.lastFilter.RecipientID)
	assert.True(t, repo.lastFilter.UnreadOnly)

	require.NoError(t, svc.MarkRead(ctx, student(studentID), "n1"))
	assert.ErrorIs(t, svc.MarkRead(ctx, student(otherStud), "n1"), appErrors.ErrNotFound)
}
