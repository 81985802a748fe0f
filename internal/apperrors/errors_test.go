package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeValidation, CodeOf(Validation("bad input")))
	assert.Equal(t, CodeInsufficientStock, CodeOf(InsufficientStock(1, 2, 5, -10)))
	assert.Equal(t, CodeInvalidTransition, CodeOf(InvalidTransition("draft", "received")))
	assert.Equal(t, CodeUniquenessConflict, CodeOf(UniquenessConflict("sku")))
	assert.Equal(t, CodeNotFound, CodeOf(NotFound("item %d", 9)))
	assert.Equal(t, CodePersistence, CodeOf(Persistence("db down", errors.New("refused"))))

	// unclassified errors default to persistence
	assert.Equal(t, CodePersistence, CodeOf(errors.New("plain")))
}

func TestCodeOfWrapped(t *testing.T) {
	err := fmt.Errorf("while receiving: %w", Validation("over-receipt"))
	assert.Equal(t, CodeValidation, CodeOf(err))
	assert.True(t, IsCode(err, CodeValidation))
	assert.False(t, IsCode(err, CodeNotFound))
}

func TestRetryable(t *testing.T) {
	var appErr *Error

	assert.True(t, errors.As(Persistence("tx aborted", nil), &appErr))
	assert.True(t, appErr.Retryable)

	assert.True(t, errors.As(Validation("nope"), &appErr))
	assert.False(t, appErr.Retryable)
}

func TestFromPostgres(t *testing.T) {
	unique := &pq.Error{Code: "23505", Constraint: "vendors_name_key"}
	err := FromPostgres("failed to create vendor", unique)
	assert.Equal(t, CodeUniquenessConflict, err.Code)
	assert.Contains(t, err.Message, "vendors_name_key")

	other := &pq.Error{Code: "40001"}
	err = FromPostgres("failed to commit", other)
	assert.Equal(t, CodePersistence, err.Code)
	assert.True(t, err.Retryable)

	err = FromPostgres("failed to query", errors.New("connection reset"))
	assert.Equal(t, CodePersistence, err.Code)
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("broken pipe")
	err := Persistence("write failed", cause)
	assert.ErrorIs(t, err, cause)
}
