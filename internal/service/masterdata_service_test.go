package service

import (
	"testing"

	"inventory-service/internal/apperrors"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestValidateStockLevels(t *testing.T) {
	assert.NoError(t, validateStockLevels(0, 0, nil))
	assert.NoError(t, validateStockLevels(5, 10, nil))
	assert.NoError(t, validateStockLevels(5, 10, intPtr(100)))
	assert.NoError(t, validateStockLevels(10, 10, intPtr(10)))

	err := validateStockLevels(20, 10, nil)
	assert.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	err = validateStockLevels(5, 50, intPtr(40))
	assert.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	err = validateStockLevels(-1, 0, nil)
	assert.Error(t, err)
}
