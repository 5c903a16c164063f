package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherRunsOnChange(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "batch.sql")
	require.NoError(t, os.WriteFile(file, []byte("SHOW META;"), 0644))

	var runs atomic.Int32
	w, err := NewWatcher(file, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, w.Start(context.Background()))
	assert.Equal(t, int32(1), runs.Load())

	require.NoError(t, os.WriteFile(file, []byte("SHOW STATUS;"), 0644))
	require.NoError(t, os.WriteFile(file, []byte("SHOW TABLES;"), 0644))

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "batch.sql")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	var runs atomic.Int32
	w, err := NewWatcher(file, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}, WithDebounce(10*time.Millisecond))
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.sql"), []byte("x"), 0644))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
}

func TestWatcherReportsCallbackErrors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "batch.sql")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	failing := errors.New("syntax error")
	var calls atomic.Int32
	reported := make(chan error, 1)

	w, err := NewWatcher(file, func(ctx context.Context) error {
		if calls.Add(1) > 1 {
			return failing
		}
		return nil
	}, WithDebounce(10*time.Millisecond), WithErrorHandler(func(err error) {
		select {
		case reported <- err:
		default:
		}
	}))
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, os.WriteFile(file, []byte("SELEC"), 0644))

	select {
	case err := <-reported:
		assert.ErrorIs(t, err, failing)
	case <-time.After(2 * time.Second):
		t.Fatal("callback error was not reported")
	}
}

func TestWatcherInitialCallbackError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "batch.sql")

	w, err := NewWatcher(file, func(ctx context.Context) error {
		return errors.New("missing")
	})
	require.NoError(t, err)
	defer w.Stop()

	assert.Error(t, w.Start(context.Background()))
}

func TestWatcherStopTwice(t *testing.T) {
	file := filepath.Join(t.TempDir(), "batch.sql")

	w, err := NewWatcher(file, func(ctx context.Context) error { return nil })
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}
