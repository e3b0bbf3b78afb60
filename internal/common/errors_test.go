package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_UnwrapsToKind(t *testing.T) {
	assert.True(t, errors.Is(ErrGroupNotFound, ErrorNotFound))
	assert.True(t, errors.Is(ErrUserExists, ErrorAlreadyExists))
	assert.True(t, errors.Is(ErrNotGroupMember, ErrorForbidden))
	assert.False(t, errors.Is(ErrGroupNotFound, ErrorForbidden))
}

func TestError_SurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("adding member: %w", ErrUserNotFound)

	var ce *Error
	assert.True(t, errors.As(wrapped, &ce))
	assert.Equal(t, "User not found", ce.Message)
	assert.True(t, errors.Is(wrapped, ErrorNotFound))
}
