package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/presentation/tui"
	arborhttp "github.com/aretw0/arbor/pkg/adapters/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Exposes the workspace as a JSON API with a Server-Sent Events stream of
commits (/events) and Prometheus metrics (/metrics).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer app.Close()

		addr := app.Config.HTTP.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		handler := arborhttp.NewHandler(app.Manager,
			arborhttp.WithMetrics(app.Metrics.Handler()),
			arborhttp.WithStreams(app.Streams),
			arborhttp.WithLogger(app.Logger),
		)
		srv := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		out := cmd.OutOrStdout()
		tui.PrintBanner(out, profileFor(out))

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			fmt.Fprintf(out, "Starting Arbor Server on %s (store: %s)\n", srv.Addr, app.Config.Store.Driver)
			serverErrors <- srv.ListenAndServe()
		}()

		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Cancel()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-sc.Done():
			fmt.Fprintf(out, "\nStart shutdown... Signal: %v\n", sc.Signal())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Fprintf(out, "Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			fmt.Fprintln(out, "Arbor Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides http.addr)")
}
