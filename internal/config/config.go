package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/todowatch/internal/clierr"
	"github.com/twiced-technology-gmbh/todowatch/internal/task"
	"github.com/twiced-technology-gmbh/todowatch/internal/tasklist"
)

const fileMode = 0o600

// Sentinel errors.
var (
	ErrNotFound = errors.New("no todo directory found (run 'todowatch init' to create one)")
	ErrInvalid  = errors.New("invalid config")
)

// Config represents the todo directory configuration.
type Config struct {
	Version             int            `yaml:"version"`
	TodoFile            string         `yaml:"todo_file"`
	DoneFile            string         `yaml:"done_file"`
	PreserveLineNumbers bool           `yaml:"preserve_line_numbers"`
	DateOnAdd           bool           `yaml:"date_on_add"`
	AutoArchive         bool           `yaml:"auto_archive"`
	Defaults            DefaultsConfig `yaml:"defaults"`
	Merge               MergeConfig    `yaml:"merge,omitempty"`
	Log                 LogConfig      `yaml:"log"`
	TUI                 TUIConfig      `yaml:"tui,omitempty"`

	// dir is the absolute path to the todo directory (not serialized).
	dir string `yaml:"-"`
}

// DefaultsConfig holds default values for new tasks and listings.
type DefaultsConfig struct {
	Priority string `yaml:"priority,omitempty"`
	Sort     string `yaml:"sort"`
}

// MergeConfig tunes the fuzzy patching used by merge. Zero values keep the
// engine defaults.
type MergeConfig struct {
	MatchThreshold  float64 `yaml:"match_threshold,omitempty" json:"match_threshold,omitempty"`
	DeleteThreshold float64 `yaml:"delete_threshold,omitempty" json:"delete_threshold,omitempty"`
	PatchMargin     int     `yaml:"patch_margin,omitempty" json:"patch_margin,omitempty"`
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TUIConfig holds TUI-specific display settings.
type TUIConfig struct {
	ShowCompleted   bool   `yaml:"show_completed,omitempty"`
	RefreshInterval string `yaml:"refresh_interval,omitempty"`
}

// Dir returns the absolute path to the todo directory.
func (c *Config) Dir() string {
	return c.dir
}

// SetDir sets the todo directory path on the config.
func (c *Config) SetDir(dir string) {
	c.dir = dir
}

// TodoPath returns the absolute path to the task file.
func (c *Config) TodoPath() string {
	return c.resolve(c.TodoFile)
}

// DonePath returns the absolute path to the archive file.
func (c *Config) DonePath() string {
	return c.resolve(c.DoneFile)
}

// LockPath returns the absolute path to the write lock.
func (c *Config) LockPath() string {
	return filepath.Join(c.dir, LockFileName)
}

// ConfigPath returns the absolute path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.dir, ConfigFileName)
}

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.dir, name)
}

// NewDefault creates a Config with default values.
func NewDefault() *Config {
	return &Config{
		Version:   CurrentVersion,
		TodoFile:  DefaultTodoFile,
		DoneFile:  DefaultDoneFile,
		DateOnAdd: true,
		Defaults:  DefaultsConfig{Sort: DefaultSort},
		Log:       LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		TUI:       TUIConfig{RefreshInterval: DefaultRefreshInterval},
	}
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if c.TodoFile == "" {
		return fmt.Errorf("%w: todo_file is required", ErrInvalid)
	}
	if c.DoneFile == "" {
		return fmt.Errorf("%w: done_file is required", ErrInvalid)
	}
	if c.TodoPath() == c.DonePath() {
		return fmt.Errorf("%w: todo_file and done_file must differ", ErrInvalid)
	}
	if p, ok := task.NormalizePriority(c.Defaults.Priority); !ok || p != c.Defaults.Priority {
		return fmt.Errorf("%w: defaults.priority %q must be a single letter A-Z", ErrInvalid, c.Defaults.Priority)
	}
	if err := tasklist.ValidateSort(c.Defaults.Sort); err != nil {
		return fmt.Errorf("%w: defaults.sort: %w", ErrInvalid, err)
	}
	if err := c.validateMerge(); err != nil {
		return err
	}
	if err := c.validateLog(); err != nil {
		return err
	}
	return c.validateTUI()
}

func (c *Config) validateMerge() error {
	if c.Merge.MatchThreshold < 0 || c.Merge.MatchThreshold > 1 {
		return fmt.Errorf("%w: merge.match_threshold must be between 0 and 1", ErrInvalid)
	}
	if c.Merge.DeleteThreshold < 0 || c.Merge.DeleteThreshold > 1 {
		return fmt.Errorf("%w: merge.delete_threshold must be between 0 and 1", ErrInvalid)
	}
	if c.Merge.PatchMargin < 0 {
		return fmt.Errorf("%w: merge.patch_margin must be >= 0", ErrInvalid)
	}
	return nil
}

func (c *Config) validateLog() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level %q: %w", ErrInvalid, c.Log.Level, err)
	}
	if !slices.Contains(LogFormats, c.Log.Format) {
		return fmt.Errorf("%w: log.format %q must be one of %v", ErrInvalid, c.Log.Format, LogFormats)
	}
	return nil
}

func (c *Config) validateTUI() error {
	if c.TUI.RefreshInterval == "" {
		return nil
	}
	d, err := time.ParseDuration(c.TUI.RefreshInterval)
	if err != nil {
		return fmt.Errorf("%w: invalid tui.refresh_interval %q: %w", ErrInvalid, c.TUI.RefreshInterval, err)
	}
	if d < time.Second {
		return fmt.Errorf("%w: tui.refresh_interval must be at least 1s", ErrInvalid)
	}
	return nil
}

// RefreshInterval returns the TUI refresh interval, falling back to the default.
func (c *Config) RefreshInterval() time.Duration {
	d, err := time.ParseDuration(c.TUI.RefreshInterval)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultRefreshInterval)
	}
	return d
}

// Init creates a todo directory with a default config and empty todo and
// done files. Existing task files are left untouched.
func Init(dir string) (*Config, error) {
	const dirMode = 0o750

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg := NewDefault()
	cfg.SetDir(absDir)

	if err := os.MkdirAll(absDir, dirMode); err != nil {
		return nil, fmt.Errorf("creating todo directory: %w", err)
	}
	for _, path := range []string{cfg.TodoPath(), cfg.DonePath()} {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, fileMode) //nolint:gosec // path from trusted todo dir
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", filepath.Base(path), err)
		}
		_ = f.Close()
	}

	if err := cfg.Save(); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to its config file.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(c.ConfigPath(), data, fileMode)
}

// Load reads and validates a config from the given todo directory.
func Load(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	path := filepath.Join(absDir, ConfigFileName)
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted source
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.dir = absDir

	// Migrate old config versions forward before validating.
	oldVersion := cfg.Version
	if err := migrate(&cfg); err != nil {
		return nil, err
	}

	// Persist migrated config so future loads skip re-migration.
	if cfg.Version != oldVersion {
		log.Debug("migrated config", "from", oldVersion, "to", cfg.Version)
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("saving migrated config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FindDir walks upward from startDir looking for a todo directory
// containing config.yml. Returns the absolute path to the todo directory.
func FindDir(startDir string) (string, error) {
	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	dir := absStart
	for {
		candidate := filepath.Join(dir, DefaultDir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Join(dir, DefaultDir), nil
		}

		// Also check if we're inside the todo directory itself.
		candidate = filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", clierr.New(clierr.TodoDirNotFound,
				"no todo directory found (run 'todowatch init' to create one)")
		}
		dir = parent
	}
}
