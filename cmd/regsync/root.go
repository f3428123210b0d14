package main

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/umee-network/wallet-registry/internal/config"
	"github.com/umee-network/wallet-registry/internal/docstore"
	"github.com/umee-network/wallet-registry/internal/log"
)

// RootOptions holds the global flags.
type RootOptions struct {
	ConfigFile string
	LogLevel   string
	Format     string

	// newRunID is replaced in tests.
	newRunID func() string
}

// ValidFormats are the accepted --format values.
var ValidFormats = []string{"text", "json", "yaml", "toml"}

// NewRootCommand creates the regsync command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{newRunID: uuid.NewString})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regsync",
		Short: "Sync the wallet registry into the document store",
		Long: `regsync keeps the remote registry collections (chains, assets, projects)
in line with the JSON files in this repository, and validates chain files
against the registry schema.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default: regsync.yaml in $HOME/.config/regsync or .)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level: debug, info, warn, error (overrides log.level)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml|toml)")

	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewPlanCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))

	return cmd
}

// runEnv is what every command needs after flags are parsed.
type runEnv struct {
	cfg    *config.Config
	logger *log.Logger
	runID  string
}

func (o *RootOptions) setup(cmd *cobra.Command) (*runEnv, error) {
	cfg, err := config.Load(o.ConfigFile)
	if err != nil {
		return nil, err
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}

	logOpts := log.Options{Level: cfg.Log.Level, File: cfg.Log.File}
	if cfg.Log.File == "" {
		logOpts.Output = cmd.ErrOrStderr()
	}

	runID := o.newRunID()
	logger := log.New(logOpts).With("project", cfg.Project)
	if cfg.File != "" {
		logger.Debug("loaded config", "file", cfg.File)
	}

	return &runEnv{cfg: cfg, logger: logger, runID: runID}, nil
}

func (e *runEnv) close() {
	_ = e.logger.Close()
}

func (e *runEnv) openStore(cmd *cobra.Command) (*docstore.SQLStore, error) {
	return docstore.Open(cmd.Context(), docstore.Options{
		URL:             e.cfg.Store.URL,
		AuthToken:       e.cfg.Store.AuthToken,
		ConnectAttempts: e.cfg.Store.ConnectAttempts,
		ConnectDelay:    e.cfg.Store.ConnectDelay,
		Logger:          e.logger,
	})
}
