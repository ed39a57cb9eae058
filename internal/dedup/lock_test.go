package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ragerr "github.com/paperrag/paperrag/internal/errors"
)

func TestBatchLock_AcquireRelease(t *testing.T) {
	dir := t.TempDir()

	l := NewBatchLock(dir)
	require.NoError(t, l.Acquire())
	require.NoError(t, l.Release())
}

func TestBatchLock_SecondHolderIsRejected(t *testing.T) {
	dir := t.TempDir()

	first := NewBatchLock(dir)
	require.NoError(t, first.Acquire())
	defer first.Release()

	second := NewBatchLock(dir)
	err := second.Acquire()
	require.Error(t, err)
	assert.Equal(t, ragerr.ErrCodeLockHeld, ragerr.GetCode(err))
	assert.True(t, ragerr.IsRetryable(err))

	// Once the first holder releases, the lock is free again
	require.NoError(t, first.Release())
	require.NoError(t, second.Acquire())
	require.NoError(t, second.Release())
}

func TestBatchLock_ReleaseWithoutAcquireIsSafe(t *testing.T) {
	l := NewBatchLock(t.TempDir())
	assert.NoError(t, l.Release())
}
