package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknownErrors(t *testing.T) {
	err := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.EqualError(t, err, "internal server error: boom")
}

func TestIsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("save: %w", Wrap(errors.New("dial tcp"), ErrStorage.Code, ErrStorage.Status, "write failed"))
	assert.True(t, errors.Is(wrapped, ErrStorage))
	assert.False(t, errors.Is(wrapped, ErrKeyNotFound))

	clone := Clone(ErrValidation, "month must be YYYY-MM")
	assert.True(t, errors.Is(clone, ErrValidation))
	assert.Equal(t, "validation failed", ErrValidation.Message)
}
