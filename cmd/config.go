package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/todowatch/internal/clierr"
	"github.com/twiced-technology-gmbh/todowatch/internal/config"
	"github.com/twiced-technology-gmbh/todowatch/internal/output"
	"github.com/twiced-technology-gmbh/todowatch/internal/task"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify the todo configuration",
	Long:  `View the full configuration, get a specific key, or set a writable value.`,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configAccessor describes how to get and set a config key.
type configAccessor struct {
	get      func(*config.Config) any
	set      func(*config.Config, string) error
	writable bool
}

func stringAccessor(field func(*config.Config) *string) configAccessor {
	return configAccessor{
		get:      func(c *config.Config) any { return *field(c) },
		set:      func(c *config.Config, v string) error { *field(c) = v; return nil },
		writable: true,
	}
}

func boolAccessor(key string, field func(*config.Config) *bool) configAccessor {
	return configAccessor{
		get: func(c *config.Config) any { return *field(c) },
		set: func(c *config.Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return clierr.Newf(clierr.InvalidInput, "invalid %s %q: must be true or false", key, v)
			}
			*field(c) = b
			return nil
		},
		writable: true,
	}
}

func floatAccessor(key string, field func(*config.Config) *float64) configAccessor {
	return configAccessor{
		get: func(c *config.Config) any { return *field(c) },
		set: func(c *config.Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return clierr.Newf(clierr.InvalidInput, "invalid %s %q: must be a number", key, v)
			}
			*field(c) = f
			return nil // validation handles range check
		},
		writable: true,
	}
}

func configAccessors() map[string]configAccessor {
	return map[string]configAccessor{
		"version": {
			get: func(c *config.Config) any { return c.Version },
		},
		"todo_file":             stringAccessor(func(c *config.Config) *string { return &c.TodoFile }),
		"done_file":             stringAccessor(func(c *config.Config) *string { return &c.DoneFile }),
		"preserve_line_numbers": boolAccessor("preserve_line_numbers", func(c *config.Config) *bool { return &c.PreserveLineNumbers }),
		"date_on_add":           boolAccessor("date_on_add", func(c *config.Config) *bool { return &c.DateOnAdd }),
		"auto_archive":          boolAccessor("auto_archive", func(c *config.Config) *bool { return &c.AutoArchive }),
		"defaults.priority": {
			get: func(c *config.Config) any { return c.Defaults.Priority },
			set: func(c *config.Config, v string) error {
				if err := task.ValidatePriority(v); err != nil {
					return err
				}
				c.Defaults.Priority, _ = task.NormalizePriority(v)
				return nil
			},
			writable: true,
		},
		"defaults.sort":          stringAccessor(func(c *config.Config) *string { return &c.Defaults.Sort }),
		"merge.match_threshold":  floatAccessor("merge.match_threshold", func(c *config.Config) *float64 { return &c.Merge.MatchThreshold }),
		"merge.delete_threshold": floatAccessor("merge.delete_threshold", func(c *config.Config) *float64 { return &c.Merge.DeleteThreshold }),
		"merge.patch_margin": {
			get: func(c *config.Config) any { return c.Merge.PatchMargin },
			set: func(c *config.Config, v string) error {
				n, err := strconv.Atoi(v)
				if err != nil {
					return clierr.Newf(clierr.InvalidInput,
						"invalid merge.patch_margin %q: must be an integer", v)
				}
				c.Merge.PatchMargin = n
				return nil
			},
			writable: true,
		},
		"log.level":            stringAccessor(func(c *config.Config) *string { return &c.Log.Level }),
		"log.format":           stringAccessor(func(c *config.Config) *string { return &c.Log.Format }),
		"tui.show_completed":   boolAccessor("tui.show_completed", func(c *config.Config) *bool { return &c.TUI.ShowCompleted }),
		"tui.refresh_interval": stringAccessor(func(c *config.Config) *string { return &c.TUI.RefreshInterval }),
	}
}

// allConfigKeys returns config keys in display order.
func allConfigKeys() []string {
	return []string{
		"version",
		"todo_file",
		"done_file",
		"preserve_line_numbers",
		"date_on_add",
		"auto_archive",
		"defaults.priority",
		"defaults.sort",
		"merge.match_threshold",
		"merge.delete_threshold",
		"merge.patch_margin",
		"log.level",
		"log.format",
		"tui.show_completed",
		"tui.refresh_interval",
	}
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	accessors := configAccessors()

	if outputFormat() == output.FormatJSON {
		m := make(map[string]any, len(accessors))
		for _, key := range allConfigKeys() {
			m[key] = accessors[key].get(cfg)
		}
		return output.JSON(os.Stdout, m)
	}

	// Table mode: key-value pairs.
	for _, key := range allConfigKeys() {
		val := accessors[key].get(cfg)
		fmt.Fprintf(os.Stdout, "%-24s %v\n", key, formatConfigValue(val))
	}
	return nil
}

func runConfigGet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key := args[0]
	acc, ok := configAccessors()[key]
	if !ok {
		return unknownConfigKey(key)
	}

	val := acc.get(cfg)

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, val)
	}

	fmt.Fprintln(os.Stdout, formatConfigValue(val))
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	acc, ok := configAccessors()[key]
	if !ok {
		return unknownConfigKey(key)
	}
	if !acc.writable {
		return clierr.Newf(clierr.InvalidInput, "config key %q is read-only", key)
	}

	if err := acc.set(cfg, value); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return clierr.Wrap(clierr.InvalidInput, err.Error(), err)
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"key": key, "value": acc.get(cfg)})
	}

	output.Messagef(os.Stdout, "Set %s = %v", key, formatConfigValue(acc.get(cfg)))
	return nil
}

func unknownConfigKey(key string) error {
	return clierr.Newf(clierr.InvalidInput, "unknown config key %q", key).
		WithDetails(map[string]any{"allowed": allConfigKeys()})
}

func formatConfigValue(val any) string {
	switch v := val.(type) {
	case string:
		if v == "" {
			return "--"
		}
		return v
	case []string:
		return strings.Join(v, ", ")
	default:
		return fmt.Sprintf("%v", v)
	}
}
