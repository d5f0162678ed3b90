package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mandelview/pkg/bookmark"
	"github.com/matzehuels/mandelview/pkg/buildinfo"
	"github.com/matzehuels/mandelview/pkg/cache"
	"github.com/matzehuels/mandelview/pkg/config"
	"github.com/matzehuels/mandelview/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "mandelview"

	// configFileName is the config file inside the config directory.
	configFileName = "config.toml"
)

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

	// configPath is set by --config; empty means the default location.
	configPath string
	cfg        config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Mandelview renders and explores the Mandelbrot set",
		Long:         `Mandelview renders escape-time images of the Mandelbrot set, explores it interactively in the terminal and serves frames over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/mandelview/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.paletteCommand())
	root.AddCommand(c.bookmarkCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file. A missing file yields the defaults.
func (c *CLI) loadConfig() error {
	path, err := c.resolveConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("loaded config", "path", path)
	return nil
}

func (c *CLI) resolveConfigPath() (string, error) {
	if c.configPath != "" {
		return c.configPath, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(dir, configFileName), nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	fc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(fc, nil, c.Logger)
	runner.TTL = c.cfg.Cache.TTL.Duration
	return runner, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, c.cfg.Cache.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect frame cache: %w", err)
		}
		return rc, nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("frame cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newBookmarkStore opens the configured bookmark backend.
func (c *CLI) newBookmarkStore(ctx context.Context) (bookmark.Store, error) {
	if c.cfg.Bookmarks.Backend == config.BackendMongo {
		s, err := bookmark.NewMongoStore(ctx, c.cfg.Bookmarks.MongoURI, c.cfg.Bookmarks.Database)
		if err != nil {
			return nil, fmt.Errorf("open bookmark store: %w", err)
		}
		return s, nil
	}
	dir, err := bookmarkDir()
	if err != nil {
		return nil, fmt.Errorf("get bookmark dir: %w", err)
	}
	fs, err := bookmark.NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	return fs, nil
}

// baseOptions turns the loaded config into pipeline options.
func (c *CLI) baseOptions() (pipeline.Options, error) {
	cfg := c.cfg
	pal, err := cfg.LoadPalette()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		CenterRe:      cfg.View.CenterRe,
		CenterIm:      cfg.View.CenterIm,
		Width:         cfg.View.Width,
		PixelWidth:    cfg.Render.Width,
		PixelHeight:   cfg.Render.Height,
		MaxIterations: cfg.Fractal.MaxIterations,
		EscapeRadius:  cfg.Fractal.EscapeRadius,
		Smooth:        cfg.Fractal.Smooth,
		Palette:       pal.Name(),
		PaletteSize:   cfg.Palette.Size,
		Colors:        pal,
		Samples:       cfg.Render.Samples,
		Format:        cfg.Render.Format,
		Workers:       cfg.Render.Workers,
		Logger:        c.Logger,
	}, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/mandelview/).
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

// configDir returns the config directory using XDG standard (~/.config/mandelview/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// bookmarkDir holds one JSON file per bookmark.
func bookmarkDir() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "bookmarks"), nil
}
