package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/todowatch/internal/clierr"
	"github.com/twiced-technology-gmbh/todowatch/internal/config"
	"github.com/twiced-technology-gmbh/todowatch/internal/filelock"
	"github.com/twiced-technology-gmbh/todowatch/internal/task"
	"github.com/twiced-technology-gmbh/todowatch/internal/tasklist"
)

func newStore(t *testing.T, todo string) *Store {
	t.Helper()
	cfg, err := config.Init(filepath.Join(t.TempDir(), config.DefaultDir))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cfg.TodoPath(), []byte(todo), 0o600))
	return New(cfg)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestUpdateSaves(t *testing.T) {
	s := newStore(t, "Buy milk\n")

	err := s.Update(context.Background(), func(l *tasklist.List) error {
		l.Add(task.Parse("Call Mom"))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk\nCall Mom\n", readFile(t, s.Config().TodoPath()))
}

func TestUpdateErrorSkipsWrite(t *testing.T) {
	s := newStore(t, "Buy milk\n")

	err := s.Update(context.Background(), func(l *tasklist.List) error {
		l.Add(task.Parse("Call Mom"))
		return task.NotFound(9)
	})
	var ce *clierr.Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, clierr.TaskNotFound, ce.Code)
	assert.Equal(t, "Buy milk\n", readFile(t, s.Config().TodoPath()))
}

func TestUpdateWaitsForLock(t *testing.T) {
	s := newStore(t, "")

	unlock, err := filelock.Lock(s.Config().LockPath())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = s.Update(ctx, func(*tasklist.List) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock())
	require.NoError(t, s.Update(context.Background(), func(*tasklist.List) error { return nil }))
}

func TestArchive(t *testing.T) {
	s := newStore(t, "x 2024-03-01 Pay rent\nBuy milk\n")

	archived, err := s.Archive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, archived.Len())
	assert.Equal(t, "Buy milk\n", readFile(t, s.Config().TodoPath()))
	assert.Equal(t, "x 2024-03-01 Pay rent\n", readFile(t, s.Config().DonePath()))

	entries, err := tasklist.ReadLog(s.Config().Dir(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "archive", entries[0].Action)
}

func TestArchivePreservesLineNumbers(t *testing.T) {
	s := newStore(t, "x 2024-03-01 Pay rent\nBuy milk\n")
	s.Config().PreserveLineNumbers = true

	_, err := s.Archive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "\nBuy milk\n", readFile(t, s.Config().TodoPath()))
}
