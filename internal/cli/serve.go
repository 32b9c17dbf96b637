package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/alumnet/semsearch/server"
	"github.com/alumnet/semsearch/shutdown"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := buildApp(ctx, true)
		if err != nil {
			return err
		}

		srv := server.New(server.Config{
			Addr:     a.cfg.Addr,
			Searcher: a.searcher,
			Engine:   a.engine,
			Logger:   a.log,
		})

		coord := shutdown.New()
		coord.OnProgress = func(r shutdown.HookResult) {
			fields := map[string]interface{}{
				"hook":        r.Name,
				"duration_ms": r.Duration.Milliseconds(),
			}
			if r.Err != nil {
				fields["error"] = r.Err.Error()
				a.log.Error("shutdown_hook_failed", fields)
				return
			}
			a.log.Debug("shutdown_hook_done", fields)
		}

		// Traffic stops first so the flushes below see final state.
		coord.Register("http", srv.Stop)
		coord.Register("index_save", func(ctx context.Context) error {
			return a.index.Save()
		})
		coord.Register("jobcache_save", func(ctx context.Context) error {
			return a.cache.Save()
		})
		if a.lexical != nil {
			coord.Register("lexical_close", func(ctx context.Context) error {
				return a.lexical.Close()
			})
		}
		coord.HandleSignals()

		serveErr := make(chan error, 1)
		go func() { serveErr <- srv.ListenAndServe() }()

		select {
		case err := <-serveErr:
			if err != nil {
				return err
			}
			<-coord.Done()
		case <-coord.Done():
		}

		if err := coord.Err(); err != nil {
			a.log.Error("shutdown_incomplete", map[string]interface{}{"error": err.Error()})
			return err
		}
		a.log.Info("stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
