package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json.lock")

	release, err := acquireLock(path, time.Second)
	require.NoError(t, err)
	release()

	// Re-acquirable after release.
	release, err = acquireLock(path, time.Second)
	require.NoError(t, err)
	release()
}

func TestAcquireLockHeldTimesOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json.lock")

	release, err := acquireLock(path, time.Second)
	require.NoError(t, err)
	defer release()

	start := time.Now()
	_, err = acquireLock(path, 100*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestAcquireLockWaitsForRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json.lock")

	release, err := acquireLock(path, time.Second)
	require.NoError(t, err)

	go func() {
		time.Sleep(50 * time.Millisecond)
		release()
	}()

	release2, err := acquireLock(path, 2*time.Second)
	require.NoError(t, err)
	release2()
}
