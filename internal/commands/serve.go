package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/todolite/todolite/internal/server"
)

// NewServeCmd creates the serve command for the reference remote store.
func NewServeCmd() *cobra.Command {
	var listen, store, dsn, seed string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the todos HTTP server",
		Long: `Run a todos HTTP server the client can sync against.

Stores:
  memory  process memory (default)
  sqlite  a SQLite file; --dsn is the path
  redis   a Redis server; --dsn is a redis:// URL`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}
			cfg := app.Config
			app.Log.SetFormatter(&logrus.JSONFormatter{})
			if app.Log.GetLevel() < logrus.InfoLevel {
				app.Log.SetLevel(logrus.InfoLevel)
			}
			if cmd.Flags().Changed("listen") {
				cfg.Listen = listen
			}
			if cmd.Flags().Changed("store") {
				cfg.Store = store
			}
			if cmd.Flags().Changed("dsn") {
				cfg.StoreDSN = dsn
			}
			if cmd.Flags().Changed("seed") {
				cfg.SeedFile = seed
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			st, err := server.OpenStore(ctx, cfg.Store, cfg.StoreDSN)
			if err != nil {
				return err
			}
			defer st.Close()

			if cfg.SeedFile != "" {
				n, err := server.SeedFromFile(ctx, st, cfg.SeedFile)
				if err != nil {
					return err
				}
				app.Log.WithField("count", n).Info("seeded todos")
			}

			srv := server.New(st, server.WithLogger(app.Log))

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start(cfg.Listen) }()

			fmt.Fprintf(cmd.ErrOrStderr(), "Serving todos on %s (%s store)\n", cfg.Listen, cfg.Store)

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default from config, :3000)")
	cmd.Flags().StringVar(&store, "store", "", "Store backend: memory, sqlite, redis")
	cmd.Flags().StringVar(&dsn, "dsn", "", "Store location (sqlite path or redis URL)")
	cmd.Flags().StringVar(&seed, "seed", "", "YAML file of todos to load at startup")

	return cmd
}
