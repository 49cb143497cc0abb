package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("load seller: %w", NotFound("seller %d not found", 7))

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrForbidden)
	assert.EqualError(t, err, "load seller: seller 7 not found")
}

func TestValidationFields(t *testing.T) {
	err := Validation("invalid request", "name is required", "price must be greater than 0")

	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, []string{"name is required", "price must be greater than 0"}, Fields(err))
	assert.Nil(t, Fields(errors.New("plain")))
}
