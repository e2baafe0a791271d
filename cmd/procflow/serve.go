package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dewakar-s/procflow"
	httpAdapter "github.com/dewakar-s/procflow/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Exposes start, resume and session inspection as a JSON API described by /openapi.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		handler, err := httpAdapter.NewHandler(app.Controller,
			httpAdapter.WithCatalog(app.Registry),
			httpAdapter.WithStreams(app.Streams),
			httpAdapter.WithMetrics(app.MetricsHandler()),
			httpAdapter.WithVersion(procflow.Version),
			httpAdapter.WithLogger(app.Logger),
		)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              app.Config.Server.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			app.Logger.Info("Starting procflow server", "addr", srv.Addr, "actions", app.Registry.Len())
			fmt.Fprintf(cmd.ErrOrStderr(), "Listening on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)
		case sig := <-shutdown:
			app.Logger.Info("Shutting down", "signal", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				_ = srv.Close()
				return fmt.Errorf("graceful shutdown did not complete: %w", err)
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	_ = v.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}
