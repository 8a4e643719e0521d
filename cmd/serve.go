package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/lotcataloger/internal/handlers"
	"github.com/lehigh-university-libraries/lotcataloger/internal/publish"
	"github.com/lehigh-university-libraries/lotcataloger/internal/storage"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start web server for uploading lots and generating the catalog",
		Long: `Starts the lot cataloging web interface on the specified port.

The web interface accepts image uploads, generates descriptions for every
lot in the upload directory, and serves the resulting CSV catalog.`,
		Example: `  # Start server on default port 8888
  lotcataloger serve

  # Start server on custom port using Ollama
  lotcataloger serve --port 3000 --provider ollama`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			svc, store, err := newService(cfg, opts.provider)
			if err != nil {
				return err
			}
			defer store.Close()

			publisher, err := publish.New(cfg.Publish)
			if err != nil {
				return err
			}

			handler := handlers.New(cfg, svc, store, storage.New(cfg.UploadDir, cfg.MaxUploadBytes), publisher)

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: handler.Routes(),
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Lot cataloger available",
					"addr", addr,
					"url", "http://localhost"+addr,
					"provider", cfg.Generation.Provider,
					"model", cfg.ResolveModel(),
					"catalog", cfg.CatalogPath)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	addGenerationFlags(cmd)

	return cmd
}
