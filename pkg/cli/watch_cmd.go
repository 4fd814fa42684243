package cli

import (
	"context"
	"fmt"

	"github.com/jlrickert/ekr/pkg/config"
	"github.com/jlrickert/ekr/pkg/ekr"
	"github.com/jlrickert/ekr/pkg/log"
	"github.com/jlrickert/ekr/pkg/metrics"
	"github.com/jlrickert/ekr/pkg/vault"
	"github.com/jlrickert/ekr/pkg/watch"
	"github.com/spf13/cobra"
)

// NewWatchCmd returns the `watch` cobra command. It keeps the aliases of
// every saved note current until interrupted.
func NewWatchCmd(deps *Deps) *cobra.Command {
	def := config.Default()

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "add aliases to notes as they are saved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			lg := log.FromContext(ctx)
			m := metrics.New()

			app, err := deps.app(ekr.Options{Observer: m})
			if err != nil {
				return err
			}

			w, err := watch.New(app.HostPath(app.VaultRoot),
				watch.WithDebounce(deps.Config.WatchDebounce),
				watch.WithSkip(app.Store.Ignored),
				watch.WithEventHook(m.WatchEventsTotal.Inc),
			)
			if err != nil {
				return fmt.Errorf("watch %s: %w", app.VaultRoot, err)
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			if addr := deps.Config.MetricsAddr; addr != "" {
				go func() {
					if err := m.Serve(ctx, addr); err != nil {
						lg.Error("metrics server stopped", "addr", addr, "error", err)
					}
				}()
			}

			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "watching %s\n", app.VaultRoot); err != nil {
				return err
			}
			return w.Run(ctx, func(ctx context.Context, doc vault.Document) error {
				res, err := app.Engine.Add(ctx, doc)
				if err != nil {
					return err
				}
				if res.Added > 0 {
					lg.Info("aliases refreshed", "path", doc.Path, "added", res.Added)
				}
				return nil
			})
		},
	}

	cmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	cmd.Flags().Duration("debounce", def.WatchDebounce, "quiet period before a saved note is processed")
	return cmd
}
