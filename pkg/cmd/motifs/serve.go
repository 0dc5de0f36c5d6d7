package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gilchrisn/graph-motif-service/pkg/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("address", ":8080", "Listen address")
	bind(serveCmd, "server.address", "address", false)
}

func runServe(cmd *cobra.Command, args []string) error {
	svc, m, logger, err := setup()
	if err != nil {
		return err
	}
	defer svc.Close()

	// Request middleware logs through the global logger
	log.Logger = logger

	handlers := api.NewHandlers(svc, api.Defaults{
		MotifSize: cfg.MotifSize(),
		Degree:    cfg.Degree(),
	})

	router := mux.NewRouter()
	api.SetupRoutes(router, handlers, m.Registry())

	router.Use(api.LoggingMiddleware)
	router.Use(api.CORSMiddleware)
	router.Use(api.RecoveryMiddleware)

	// Aggregation requests can run for minutes
	server := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.OracleTimeout() + time.Minute,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info().
			Str("address", cfg.ServerAddress()).
			Int("groups", len(svc.Groups())).
			Msg("HTTP server starting")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		return err
	case <-quit:
	}

	logger.Info().Msg("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return err
	}

	logger.Info().Msg("Server shutdown complete")
	return nil
}
