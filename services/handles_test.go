package services

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var handlePattern = regexp.MustCompile(`^[A-Z][A-Za-z]+[0-9]{1,2}$`)

func TestGenerateHandleFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		handle := GenerateHandle()
		assert.Regexp(t, handlePattern, handle)
	}
}

func TestGenerateUniqueHandleFirstTry(t *testing.T) {
	calls := 0
	handle, err := GenerateUniqueHandle(func(h string) (bool, error) {
		calls++
		return false, nil
	}, DefaultHandleRetries)

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Regexp(t, handlePattern, handle)
}

func TestGenerateUniqueHandleSkipsTaken(t *testing.T) {
	calls := 0
	handle, err := GenerateUniqueHandle(func(h string) (bool, error) {
		calls++
		return calls < 3, nil
	}, DefaultHandleRetries)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Regexp(t, handlePattern, handle)
}

func TestGenerateUniqueHandleFallbackSuffix(t *testing.T) {
	// Everything is taken: the allocator must still terminate, with a
	// suffixed handle rather than an error.
	handle, err := GenerateUniqueHandle(func(h string) (bool, error) {
		return true, nil
	}, DefaultHandleRetries)

	require.NoError(t, err)
	assert.Regexp(t, `^[A-Za-z]+[0-9]{1,2}_[0-9a-f]{4}$`, handle)
}

func TestGenerateUniqueHandlePropagatesStoreError(t *testing.T) {
	boom := errors.New("connection lost")
	_, err := GenerateUniqueHandle(func(h string) (bool, error) {
		return false, boom
	}, DefaultHandleRetries)

	assert.ErrorIs(t, err, boom)
}

func TestGenerateUniqueHandleDefaultsRetryBudget(t *testing.T) {
	calls := 0
	_, err := GenerateUniqueHandle(func(h string) (bool, error) {
		calls++
		return true, nil
	}, 0)

	require.NoError(t, err)
	assert.Equal(t, DefaultHandleRetries, calls)
}
