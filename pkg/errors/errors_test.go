package errors_test

import (
	"fmt"
	"testing"

	"github.com/mrtigerst/tdm/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := errors.New(errors.ErrTemplateNotFound, "template 'web' not found")
	assert.Equal(t, "[TEMPLATE_NOT_FOUND] template 'web' not found", err.Error())
	assert.Equal(t, errors.ErrTemplateNotFound, err.Code)
}

func TestWrap(t *testing.T) {
	t.Run("wraps_underlying_error", func(t *testing.T) {
		cause := fmt.Errorf("permission denied")
		err := errors.Wrap(cause, errors.ErrFileRead, "failed to read src/main.go")
		require.NotNil(t, err)
		assert.Contains(t, err.Error(), "permission denied")
		assert.Equal(t, cause, err.Unwrap())
	})

	t.Run("nil_error_returns_nil", func(t *testing.T) {
		assert.Nil(t, errors.Wrap(nil, errors.ErrFileRead, "should not happen"))
		assert.Nil(t, errors.Wrapf(nil, errors.ErrFileRead, "should not %s", "happen"))
	})
}

func TestIsErrorCode(t *testing.T) {
	err := errors.Newf(errors.ErrArchiveFormat, "bad sentinel at line %d", 12)
	assert.True(t, errors.IsErrorCode(err, errors.ErrArchiveFormat))
	assert.False(t, errors.IsErrorCode(err, errors.ErrFileRead))

	// wrapped with fmt still matches via errors.As
	wrapped := fmt.Errorf("parse failed: %w", err)
	assert.True(t, errors.IsErrorCode(wrapped, errors.ErrArchiveFormat))
	assert.Equal(t, errors.ErrArchiveFormat, errors.GetErrorCode(wrapped))

	// plain errors report ErrUnknown
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(fmt.Errorf("plain")))
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrFileWrite, "write failed").
		WithDetail("path", "a/b.txt")
	assert.Equal(t, "a/b.txt", err.Details["path"])
}
