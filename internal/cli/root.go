// Package cli provides the command-line interface for miniplan.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/aristath/miniplan/internal/config"
	"github.com/aristath/miniplan/internal/events"
	"github.com/aristath/miniplan/internal/logging"
	"github.com/aristath/miniplan/internal/persistence"
	"github.com/aristath/miniplan/internal/session"
)

// Command group IDs.
const (
	groupProject  = "project"
	groupSchedule = "schedule"
	groupFiles    = "files"
)

// launchTUIFunc starts the interactive editor, allowing it to be mocked in tests.
var launchTUIFunc = launchTUI

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	dbPath     string
	logLevel   string
}

// NewRootCommand creates the root command for miniplan.
func NewRootCommand(version string) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "miniplan",
		Short: "Critical Path Method project scheduler",
		Long: `miniplan schedules a network of activities with the Critical Path Method.

Each activity has an ID, a name, a duration and the activities it depends on
(finish-to-start). A scheduling run computes early and late start/finish
dates, total and free float, the critical path and the project duration.

Run without arguments to open the interactive editor.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return launchTUIFunc(cmd, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default ~/.miniplan/config.json merged with .miniplan/config.json)")
	flags.StringVar(&opts.dbPath, "db", "", "SQLite database file (overrides db_path)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides log_level)")

	root.AddGroup(
		&cobra.Group{ID: groupProject, Title: "Project Commands:"},
		&cobra.Group{ID: groupSchedule, Title: "Scheduling Commands:"},
		&cobra.Group{ID: groupFiles, Title: "File Commands:"},
	)

	for _, cmd := range []*cobra.Command{
		newListCommand(opts),
		newAddCommand(opts),
		newRemoveCommand(opts),
		newSampleCommand(opts),
		newClearCommand(opts),
		newTUICommand(opts),
	} {
		cmd.GroupID = groupProject
		root.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{
		newScheduleCommand(opts),
		newHistoryCommand(opts),
	} {
		cmd.GroupID = groupSchedule
		root.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{
		newImportCommand(opts),
		newExportCommand(opts),
		newCheckCommand(opts),
	} {
		cmd.GroupID = groupFiles
		root.AddCommand(cmd)
	}

	return root
}

// loadConfig reads the configuration and applies flag overrides. With
// --config only that file is merged over the defaults.
func (o *options) loadConfig() (cfg *config.Config, globalPath, projectPath string, err error) {
	if o.configPath != "" {
		globalPath, projectPath = "", o.configPath
	} else {
		globalPath, err = config.GlobalPath()
		if err != nil {
			return nil, "", "", err
		}
		projectPath = config.ProjectPath()
	}

	cfg, err = config.Load(globalPath, projectPath)
	if err != nil {
		return nil, "", "", err
	}

	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if globalPath == "" {
		// The settings form still needs somewhere to save.
		globalPath = projectPath
	}
	return cfg, globalPath, projectPath, nil
}

func newLogger(w io.Writer, cfg *config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(w, level, cfg.LogFormat)
}

// env is everything a command needs once flags are parsed.
type env struct {
	cfg         *config.Config
	logger      *slog.Logger
	store       persistence.Store
	bus         *events.EventBus
	session     *session.Session
	globalPath  string
	projectPath string
}

// open loads the config, opens the store and loads the project into a
// session. Callers must Close the env.
func (o *options) open(cmd *cobra.Command) (*env, error) {
	cfg, globalPath, projectPath, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cmd.ErrOrStderr(), cfg)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	store, err := persistence.NewSQLiteStore(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	bus := events.NewEventBus()
	sess := session.New(session.Config{
		Store:  store,
		Bus:    bus,
		Logger: logger,
		Retry:  retryConfig(cfg.StoreRetry),
	})

	e := &env{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		bus:         bus,
		session:     sess,
		globalPath:  globalPath,
		projectPath: projectPath,
	}
	if err := sess.Load(ctx); err != nil {
		_ = e.Close()
		return nil, err
	}
	return e, nil
}

// Close releases the event bus and the store.
func (e *env) Close() error {
	e.bus.Close()
	return e.store.Close()
}

// retryConfig maps the configured store retry onto the session's backoff.
func retryConfig(c config.RetryConfig) session.RetryConfig {
	rc := session.DefaultRetryConfig()
	rc.InitialInterval = time.Duration(c.InitialInterval)
	rc.MaxInterval = time.Duration(c.MaxInterval)
	rc.MaxElapsedTime = time.Duration(c.MaxElapsedTime)
	return rc
}
