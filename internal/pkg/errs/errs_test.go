//go:build unit

package errs_test

import (
	"errors"
	"testing"

	"school-notifier/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestMark(t *testing.T) {
	sentinel := errs.New("query failed")

	t.Run("マーク付きエラーはセンチネルと一致する", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := errs.Mark(cause, sentinel)

		assert.True(t, errs.Is(err, sentinel))
		assert.True(t, errs.Is(err, cause))
		assert.Equal(t, "connection refused", err.Error())
	})

	t.Run("nilはセンチネルそのものを返す", func(t *testing.T) {
		assert.Equal(t, sentinel, errs.Mark(nil, sentinel))
	})
}

func TestWrap(t *testing.T) {
	assert.NoError(t, errs.Wrap(nil, "noop"))
	assert.NoError(t, errs.Wrapf(nil, "noop %d", 1))

	cause := errors.New("boom")
	err := errs.Wrapf(cause, "lending %s", "abc")
	assert.Equal(t, "lending abc: boom", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.NotEmpty(t, errs.ExtractStackLines(err, 3))
}
