// Package cli implements the followstreams command-line interface.
//
// # Commands
//
//   - connect: find every water feature connected to one or more seeds
//   - stitch: join the rings of multi-ring features into single paths
//   - cache: manage the adjacency graph cache
//   - completion: generate shell completion scripts
//
// Settings come from flags, an optional TOML config file and the
// environment, in that order of precedence. All commands support --verbose
// (-v) for debug-level logging.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/followstreams/pkg/buildinfo"
	"github.com/matzehuels/followstreams/pkg/cache"
	"github.com/matzehuels/followstreams/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "followstreams"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	status io.Writer // spinner output, shared with the logger

	configPath string
	config     *Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), status: w}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Followstreams finds the water features connected to a lake",
		Long:         `Followstreams reads water features exported from OpenStreetMap, builds their touch graph and walks it from one or more seed features, writing the connected subset as GeoJSON.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.config = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/followstreams/config.toml)")

	root.AddCommand(c.connectCommand())
	root.AddCommand(c.stitchCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// cfg returns the loaded config, or an empty one when no command has loaded it.
func (c *CLI) cfg() *Config {
	if c.config == nil {
		return &Config{}
	}
	return c.config
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg := c.cfg().Cache
	cc, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Scope != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Scope+":")
	}
	r := pipeline.NewRunner(cc, keyer, c.Logger)
	r.TTL = cfg.TTL
	return r, nil
}

// newCache returns the configured cache backend, or nil when caching is off.
func (c *CLI) newCache(ctx context.Context, cfg CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache {
		return nil, nil
	}
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("using redis cache", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		return rc, nil
	}
	dir := cfg.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			c.Logger.Warn("caching disabled", "error", err)
			return nil, nil
		}
		dir = d
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("using file cache", "dir", dir)
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/followstreams/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configFile returns the default config file path using XDG standard
// (~/.config/followstreams/config.toml).
func configFile() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
