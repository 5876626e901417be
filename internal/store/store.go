// Package store serializes load-modify-save cycles on a todo directory.
package store

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/twiced-technology-gmbh/todowatch/internal/clierr"
	"github.com/twiced-technology-gmbh/todowatch/internal/config"
	"github.com/twiced-technology-gmbh/todowatch/internal/filelock"
	"github.com/twiced-technology-gmbh/todowatch/internal/tasklist"
)

// Store reads and writes the task files of one todo directory.
type Store struct {
	cfg *config.Config
}

// New returns a Store for cfg.
func New(cfg *config.Config) *Store {
	return &Store{cfg: cfg}
}

// Config returns the store's config.
func (s *Store) Config() *config.Config { return s.cfg }

// Load reads the todo file without locking.
func (s *Store) Load() (*tasklist.List, error) {
	return tasklist.ReadFile(s.cfg.TodoPath())
}

// LoadDone reads the done file without locking.
func (s *Store) LoadDone() (*tasklist.List, error) {
	return tasklist.ReadFile(s.cfg.DonePath())
}

// Locked runs fn while holding the directory lock. It gives up when ctx is
// done before the lock is free.
func (s *Store) Locked(ctx context.Context, fn func() error) error {
	unlock, err := filelock.LockContext(ctx, s.cfg.LockPath())
	if err != nil {
		return clierr.Wrap(clierr.IOError, "acquiring lock", err).
			WithDetails(map[string]any{"path": s.cfg.LockPath()})
	}
	defer func() {
		if err := unlock(); err != nil {
			log.Warn("releasing lock", "err", err)
		}
	}()
	return fn()
}

// Update holds the directory lock while it loads the todo file, calls fn
// and saves the result. Nothing is written when fn returns an error.
func (s *Store) Update(ctx context.Context, fn func(*tasklist.List) error) error {
	return s.Locked(ctx, func() error {
		l, err := s.Load()
		if err != nil {
			return err
		}
		if err := fn(l); err != nil {
			return err
		}
		return l.WriteFile(s.cfg.TodoPath())
	})
}

// Archive moves completed tasks from the todo file to the done file and
// returns them.
func (s *Store) Archive(ctx context.Context) (*tasklist.List, error) {
	var archived *tasklist.List
	err := s.Update(ctx, func(l *tasklist.List) error {
		var err error
		archived, err = l.Archive(s.cfg.DonePath(), s.cfg.PreserveLineNumbers)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("archiving: %w", err)
	}
	if archived.Len() > 0 {
		s.Log("archive", 0, fmt.Sprintf("%d tasks", archived.Len()), nil)
	}
	return archived, nil
}

// Log appends an activity log entry for a mutation.
func (s *Store) Log(action string, itemNumber int, line string, changed []string) {
	tasklist.LogMutation(s.cfg.Dir(), action, itemNumber, line, changed)
}
