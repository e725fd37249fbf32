package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/f3rmion/furi/internal/server"
	"github.com/f3rmion/furi/internal/watch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the annotation API over HTTP",
	Long: `Start a JSON HTTP API for segmentation, annotation and lookups.

Endpoints:
  GET  /health
  POST /api/segment     {"run": "校庭", "reading": "こうてい"}
  POST /api/annotate    {"text": "...", "mode": "bracket", "format": "html"}
  POST /api/matches     {"text": "..."}
  GET  /api/lookup/{char}

With --watch-dict the dictionary file is reloaded when it changes.

Example:
  furi serve --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "Listen address")
	serveCmd.Flags().Int64("max-body", server.DefaultMaxBodyBytes, "Maximum request body in bytes")
	serveCmd.Flags().Bool("watch-dict", false, "Reload the dictionary file when it changes")

	viper.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag("max_body", serveCmd.Flags().Lookup("max-body"))
}

func runServe(cmd *cobra.Command, args []string) error {
	log := newLogger()

	engine, store, dict, err := newEngine(log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if watchDict, _ := cmd.Flags().GetBool("watch-dict"); watchDict && dict != "" {
		w, err := watch.New(watch.Options{
			DictPath: dict,
			Store:    store,
		}, log)
		if err != nil {
			return err
		}
		go func() {
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("dictionary watcher stopped", "error", err)
			}
		}()
	}

	httpServer := &http.Server{
		Addr:         viper.GetString("addr"),
		Handler:      server.New(engine, log, viper.GetInt64("max_body")),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		<-ctx.Done()
		log.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown", "error", err)
		}
	}()

	log.Info("starting furi server", "addr", httpServer.Addr, "entries", store.Snapshot().Size())
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
