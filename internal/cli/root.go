// Package cli is tore's command tree. Every command that touches the
// database opens it, brings the schema up to date and runs its body in
// exactly one transaction.
package cli

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/tore/internal/config"
	"github.com/sandeepkv93/tore/internal/logging"
	"github.com/sandeepkv93/tore/internal/notify"
	"github.com/sandeepkv93/tore/internal/update"
)

// Deps are the process-level collaborators, injected so tests can pin the
// clock and the timezone.
type Deps struct {
	Version  string
	Now      func() time.Time
	Location *time.Location
	// Notifier overrides the desktop notifier chosen from configuration.
	Notifier notify.Notifier
	// RunViewer runs the interactive viewer until it exits.
	RunViewer func(ctx context.Context, m update.Model) error
	LogOutput io.Writer
}

func (d Deps) withDefaults() Deps {
	if d.Version == "" {
		d.Version = "dev"
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.RunViewer == nil {
		d.RunViewer = update.Run
	}
	return d
}

// RootOptions holds global flags and the configuration they resolve to.
type RootOptions struct {
	ConfigPath      string
	DBPath          string
	LogLevel        string
	LogJSON         bool
	TraceMigrations bool

	Config config.RuntimeConfig
	deps   Deps
}

func NewRootCommand(deps Deps) *cobra.Command {
	opts := &RootOptions{deps: deps.withDefaults()}

	cmd := &cobra.Command{
		Use:   "tore",
		Short: "tore - reminders that turn into notifications",
		Long: `tore keeps Reminders scheduled for a date and Notifications you still have to
deal with in a single sqlite database (~/.tore by default).

Running tore with no command is the same as "tore checkout".`,
		Version:       opts.deps.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckout(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", config.DefaultFilePath(), "config file")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "database file (overrides TORE_DB)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVar(&opts.LogJSON, "log-json", false, "log as JSON")
	cmd.PersistentFlags().BoolVar(&opts.TraceMigrations, "trace-migrations", false, "log the text of every applied migration")

	cmd.AddCommand(NewCheckoutCommand(opts))
	cmd.AddCommand(NewNotiCommand(opts))
	cmd.AddCommand(NewNotiNewCommand(opts))
	cmd.AddCommand(NewNotiDismissCommand(opts))
	cmd.AddCommand(NewNotiExpandCommand(opts))
	cmd.AddCommand(NewNotiShowCommand(opts))
	cmd.AddCommand(NewRemiCommand(opts))
	cmd.AddCommand(NewRemiNewCommand(opts))
	cmd.AddCommand(NewRemiDismissCommand(opts))
	cmd.AddCommand(NewViewCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

// resolve applies defaults < file < environment < flags and sets up logging.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath = o.DBPath
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.LogLevel
	}
	if flags.Changed("log-json") {
		cfg.LogJSON = o.LogJSON
	}
	if flags.Changed("trace-migrations") {
		cfg.TraceMigrations = o.TraceMigrations
	}
	o.Config = cfg

	level := logging.ParseLevel(cfg.LogLevel)
	if cfg.TraceMigrations && level > slog.LevelInfo {
		level = slog.LevelInfo
	}
	logCfg := logging.DefaultConfig()
	logCfg.Level = level
	logCfg.JSON = cfg.LogJSON
	logCfg.AddSource = level <= slog.LevelDebug
	if o.deps.LogOutput != nil {
		logCfg.Output = o.deps.LogOutput
	} else {
		logCfg.Output = cmd.ErrOrStderr()
	}
	logging.Init(logCfg)
	return nil
}

func (o *RootOptions) notifier() notify.Notifier {
	if o.deps.Notifier != nil {
		return o.deps.Notifier
	}
	if o.Config.DesktopNotifications {
		return notify.NewExec()
	}
	return notify.Noop{}
}
