// Package cli implements the modelgraph command-line interface.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/modelgraph/pkg/buildinfo"
	"github.com/matzehuels/modelgraph/pkg/cache"
	"github.com/matzehuels/modelgraph/pkg/store"
	"github.com/matzehuels/modelgraph/pkg/workspace"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "modelgraph"

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

	configPath string
	noCache    bool
	cfg        *Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Modelgraph inspects and edits diagram model projects",
		Long: `Modelgraph works on modeling projects: typed model graphs (UML class
diagrams, DEMO coordination structures, RDF graphs) with diagram views
that present them, stored as flat TOML documents.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/modelgraph/config.toml)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable caching")

	root.AddCommand(c.newCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.fmtCommand())
	root.AddCommand(c.closureCommand())
	root.AddCommand(c.deleteCommand())
	root.AddCommand(c.duplicateCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the configuration once per process.
func (c *CLI) config() (*Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner opens the configured store and cache.
func (c *CLI) newRunner(ctx context.Context) (*workspace.Runner, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	ca, err := c.openCache(ctx, cfg.Cache)
	if err != nil {
		st.Close()
		return nil, err
	}
	c.Logger.Debug("runner ready", "store", cfg.Store.Backend, "cache", cfg.Cache.Backend)
	return workspace.NewRunner(st, ca, nil, c.Logger), nil
}

func openStore(ctx context.Context, cfg StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case storeMongo:
		db := cfg.Database
		if db == "" {
			db = store.DefaultDatabase
		}
		return store.NewMongoStore(ctx, cfg.MongoURI, db)
	default:
		return store.NewFileStore(cfg.Dir)
	}
}

// openCache falls back to no caching when a shared cache is unreachable.
func (c *CLI) openCache(ctx context.Context, cfg CacheConfig) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case cacheRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr)
		if err != nil {
			c.Logger.Warn("redis unavailable, caching disabled", "addr", cfg.RedisAddr, "err", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	case cacheFile:
		return cache.NewFileCache(cfg.Dir)
	default:
		return cache.NewNullCache(), nil
	}
}

// isTerminal reports whether f is attached to an interactive terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
