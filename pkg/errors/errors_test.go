package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneStillMatchesSentinel(t *testing.T) {
	err := Clone(ErrNotEnrolled, "student s-1 is not enrolled in c-1")

	assert.True(t, errors.Is(err, ErrNotEnrolled))
	assert.False(t, errors.Is(err, ErrAlreadyEnrolled))
	assert.Equal(t, "student s-1 is not enrolled in c-1", err.Error())
	assert.Equal(t, "student has no active enrollment in course", ErrNotEnrolled.Message)
}

func TestWrapKeepsCause(t *testing.T) {
	err := Internal(sql.ErrConnDone, "failed to load grades")

	assert.True(t, errors.Is(err, sql.ErrConnDone))
	assert.True(t, errors.Is(err, ErrInternal))
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Contains(t, err.Error(), "failed to load grades")
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	wrapped := fmt.Errorf("service: %w", ErrInvalidMarks)
	assert.Equal(t, "INVALID_MARKS", FromError(wrapped).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, FromError(wrapped).Status)

	plain := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, plain.Code)
	assert.Equal(t, ErrInternal.Status, plain.Status)
}

func TestNilErrorIsSafe(t *testing.T) {
	var e *Error
	assert.Equal(t, "<nil>", e.Error())
	assert.Nil(t, e.Unwrap())
	assert.Nil(t, Clone(nil, "x"))
}
