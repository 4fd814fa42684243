package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jlrickert/cli-toolkit/toolkit"
	"github.com/jlrickert/ekr/pkg/config"
	"github.com/jlrickert/ekr/pkg/ekr"
	"github.com/jlrickert/ekr/pkg/log"
	"github.com/spf13/cobra"
)

// Deps carries what commands share. Runtime is required; the rest is filled
// in by RunWithDeps and the root command.
type Deps struct {
	Runtime *toolkit.Runtime

	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Interactive overrides terminal detection on stdin for confirmation
	// prompts.
	Interactive *bool

	// Logger, when set, is used instead of one built from configuration.
	Logger *slog.Logger

	ConfigPath string
	Config     config.Config
	ConfigFile string

	closers []io.Closer
}

// Shutdown releases resources opened while running a command.
func (d *Deps) Shutdown() {
	for _, c := range d.closers {
		_ = c.Close()
	}
	d.closers = nil
}

func (d *Deps) interactive() bool {
	if d.Interactive != nil {
		return *d.Interactive
	}
	s := d.Runtime.Stream()
	return s.IsTTY && !s.IsPiped
}

// app builds an application instance from the loaded configuration.
func (d *Deps) app(opts ekr.Options) (*ekr.App, error) {
	opts.Runtime = d.Runtime
	opts.Config = d.Config
	return ekr.New(opts)
}

// NewRootCmd builds the ekr command tree.
func NewRootCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ekr",
		Short: "add searchable Dubeolsik aliases to Korean markdown notes",
		Long: `ekr adds "(eKR) <name> | <keys>" aliases to the frontmatter of markdown
notes, where <keys> is what you would type on a two-set Korean keyboard with
the input method switched off. Generated aliases can be removed again
without touching hand-written ones.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt := deps.Runtime
			if rt == nil {
				return fmt.Errorf("runtime is required")
			}

			cfg, file, err := ekr.LoadConfig(rt, deps.ConfigPath, cmd.Flags())
			if err != nil {
				return err
			}
			deps.Config = cfg
			deps.ConfigFile = file

			lg := deps.Logger
			if lg == nil {
				lg, err = deps.newLogger(cfg)
				if err != nil {
					return err
				}
			}
			lg.Debug("configuration loaded", "file", file, "vault", cfg.Vault)

			cmd.SetContext(log.ContextWithLogger(ctx, lg))
			return nil
		},
	}

	def := config.Default()
	flags := cmd.PersistentFlags()
	flags.StringVarP(&deps.ConfigPath, "config", "c", "", "path to config file")
	flags.String("vault", def.Vault, "vault root directory")
	flags.String("log-file", "", "write logs to file (default stderr)")
	flags.String("log-level", def.LogLevel, "minimum log level")
	flags.Bool("log-json", false, "output logs as JSON")
	flags.Bool("heading", false, "also alias the first level-one heading of each note")
	flags.IntP("jobs", "j", def.Concurrency, "notes processed in parallel by batch commands")

	cmd.AddCommand(
		NewAddCmd(deps),
		NewRemoveCmd(deps),
		NewEncodeCmd(deps),
		NewWatchCmd(deps),
		NewMCPCmd(deps),
		NewConfigCmd(deps),
	)

	return cmd
}

func (d *Deps) newLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	out := d.Err
	if cfg.LogFile != "" {
		f, err := ekr.Fs(d.Runtime).OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		d.closers = append(d.closers, f)
		out = f
	}

	return log.NewLogger(log.LoggerConfig{
		Version: Version,
		Out:     out,
		Level:   level,
		JSON:    cfg.LogJSON,
	}), nil
}
