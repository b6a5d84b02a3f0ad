// Package config loads treesize settings from flags, environment variables
// and an optional yaml file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/idelchi/treesize/internal/treesize"
)

const (
	// AppName is used for the config file name and the environment prefix.
	AppName = "treesize"
	// DefaultReport is the default CSV report location.
	DefaultReport = "results.csv"
	// DefaultTop is the default number of rows printed to the console.
	DefaultTop = 10
)

// Outputs lists the accepted console output formats.
//
//nolint:gochecknoglobals // Config constant
var Outputs = []string{"table", "json", "plain"}

// Config stores all configuration of a run.
type Config struct {
	Root             string        `mapstructure:"root"`
	Exclude          []string      `mapstructure:"exclude"`
	Ignore           []string      `mapstructure:"ignore"`
	Workers          int           `mapstructure:"workers"`
	Mode             string        `mapstructure:"mode"`
	OnUnitError      string        `mapstructure:"on-unit-error"`
	Report           string        `mapstructure:"report"`
	Output           string        `mapstructure:"output"`
	Top              int           `mapstructure:"top"`
	ProgressInterval time.Duration `mapstructure:"progress-interval"`
	Debug            bool          `mapstructure:"debug"`
}

// DefaultExcludes returns the platform exclusions used when none are configured.
// Entries are relative to root.
func DefaultExcludes(root string) []string {
	switch runtime.GOOS {
	case "windows":
		return []string{"$Recycle.Bin", "Windows"}
	case "linux":
		if abs, err := filepath.Abs(root); err == nil && abs == "/" {
			return []string{"proc", "sys"}
		}
	}

	return nil
}

// Flags registers every setting on fs.
func Flags(fs *pflag.FlagSet) {
	fs.String("root", ".", "Directory to scan")
	fs.StringSliceP("exclude", "e", nil, "Path prefixes to skip, absolute or relative to the root")
	fs.StringSliceP("ignore", "x", nil, "Gitignore-style patterns skipped during the walk (e.g. node_modules/,*.tmp)")
	fs.IntP("workers", "w", treesize.DefaultWorkers(), "Number of units scanned in parallel")
	fs.StringP("mode", "m", string(treesize.Parallel), "Scheduling: parallel or sequential")
	fs.String("on-unit-error", string(treesize.FailRun), "Policy for a failed unit: fail or skip")
	fs.StringP("report", "r", DefaultReport, "CSV report path (empty to disable)")
	fs.StringP("output", "o", "table", "Console output format: table, json or plain")
	fs.IntP("top", "t", DefaultTop, "Number of rows printed to the console (0=all)")
	fs.Duration("progress-interval", treesize.DefaultProgressInterval, "Interval between progress updates")
	fs.Bool("debug", false, "Enable debug output")
}

// Load reads the configuration. Precedence: flags, environment
// (TREESIZE_*), config file, defaults. An explicit configPath must exist;
// otherwise treesize.yaml is looked up in the working directory and in
// $HOME/.config/treesize.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("root", ".")
	v.SetDefault("workers", treesize.DefaultWorkers())
	v.SetDefault("mode", string(treesize.Parallel))
	v.SetDefault("on-unit-error", string(treesize.FailRun))
	v.SetDefault("report", DefaultReport)
	v.SetDefault("output", "table")
	v.SetDefault("top", DefaultTop)
	v.SetDefault("progress-interval", treesize.DefaultProgressInterval)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}
	}

	v.SetEnvPrefix(AppName)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", AppName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if !v.IsSet("exclude") {
		cfg.Exclude = DefaultExcludes(cfg.Root)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings that cannot produce a run.
func (c *Config) Validate() error {
	if c.Root == "" {
		return errors.New("root cannot be empty")
	}

	if c.Workers < 0 {
		return errors.New("workers cannot be negative")
	}

	if c.Top < 0 {
		return errors.New("top cannot be negative")
	}

	switch treesize.Mode(c.Mode) {
	case treesize.Parallel, treesize.Sequential:
	default:
		return fmt.Errorf("invalid mode %q: must be one of [%s %s]", c.Mode, treesize.Parallel, treesize.Sequential)
	}

	switch treesize.ErrorPolicy(c.OnUnitError) {
	case treesize.FailRun, treesize.SkipUnit:
	default:
		return fmt.Errorf("invalid unit error policy %q: must be one of [%s %s]",
			c.OnUnitError, treesize.FailRun, treesize.SkipUnit)
	}

	if !slices.Contains(Outputs, strings.ToLower(c.Output)) {
		return fmt.Errorf("invalid output format %q: must be one of %v", c.Output, Outputs)
	}

	return nil
}

// Options converts the configuration into scan options.
func (c *Config) Options() treesize.Options {
	return treesize.Options{
		Root:             c.Root,
		Excludes:         c.Exclude,
		Ignores:          c.Ignore,
		Workers:          c.Workers,
		Mode:             treesize.Mode(c.Mode),
		OnUnitError:      treesize.ErrorPolicy(c.OnUnitError),
		ProgressInterval: c.ProgressInterval,
	}
}
