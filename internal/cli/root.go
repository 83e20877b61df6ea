// Package cli implements the todo command line.
package cli

import (
	"github.com/eleven-am/todolist/internal/logger"
	"github.com/eleven-am/todolist/pkg/version"
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags and the config they resolve to.
type rootOptions struct {
	configFile  string
	databaseURL string
	debug       bool
	verbose     bool

	config *Config
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "todo",
		Short: "Todo - multi-list to-do service",
		Long: `Todo serves named to-do lists and their items over HTTP, backed by PostgreSQL.

Commands:
- serve: run the HTTP server
- migrate: sync the database schema
- version: print build information`,
		Version:       version.BuildInfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default: todo.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.databaseURL, "url", "", "database connection URL")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "enable verbose output")

	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newMigrateCommand(opts))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// load resolves the configuration and sets up logging. Flags win over the
// environment, which wins over the file.
func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg, err := LoadConfig(o.configFile)
	if err != nil {
		return err
	}
	if o.databaseURL != "" {
		cfg.Database.URL = o.databaseURL
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	switch {
	case o.verbose:
		level = logger.LevelDebug
	case o.debug && level > logger.LevelInfo:
		level = logger.LevelInfo
	}

	logger.Configure(logger.Options{Level: level, Format: cfg.Log.Format, Output: cmd.ErrOrStderr()})

	o.config = cfg
	return nil
}
