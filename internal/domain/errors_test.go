package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_MatchesKind(t *testing.T) {
	err := fmt.Errorf("lookup: %w", ProductNotFound(7))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, "lookup: Product with id #7 not found", err.Error())

	var derr *Error
	assert.True(t, errors.As(err, &derr))
	assert.Equal(t, "Product with id #7 not found", derr.Message)
}

func TestNewInvalidInput(t *testing.T) {
	err := NewInvalidInput("price", "decimals", "price must have at most 4 decimal places")

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "price", err.Field)
	assert.Equal(t, "decimals", err.Rule)
}
