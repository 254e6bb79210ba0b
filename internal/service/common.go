package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/noah-isme/campus-ledger-api/internal/models"
	appErrors "github.com/noah-isme/campus-ledger-api/pkg/errors"
	"github.com/noah-isme/campus-ledger-api/pkg/events"
)

// txRunner runs fn inside a single database transaction.
type txRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type auditRecorder interface {
	CreateAuditLog(ctx context.Context, entry *models.AuditLog) error
}

type eventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// passthrough keeps typed errors intact and wraps anything else as internal.
func passthrough(err error, message string) error {
	if err == nil {
		return nil
	}
	var typed *appErrors.Error
	if errors.As(err, &typed) {
		return typed
	}
	return appErrors.Internal(err, message)
}

// notFoundOr maps sql.ErrNoRows to a NOT_FOUND error carrying notFound and
// wraps other failures as internal.
func notFoundOr(err error, notFound, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Internal(err, message)
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

// outcome labels a ledger operation result for metrics.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var typed *appErrors.Error
	if errors.As(err, &typed) {
		return typed.Code
	}
	return appErrors.ErrInternal.Code
}

func auditValues(v interface{}) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}

func pagination(page, size, total int) *models.Pagination {
	page, size, _ = models.Normalize(page, size)
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
