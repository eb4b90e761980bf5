package main

import (
	"fmt"
	"time"

	"github.com/jonathan/star-coach/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort        int
	serveUseBrowser  bool
	serveSnapshotTTL time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the coaching proxy server",
	Long: `Start an HTTP server that holds the model credential and exposes the
coaching, extraction, job analysis and session endpoints.

Sessions are stored in PostgreSQL when DATABASE_URL is set, otherwise in the
local SQLite file.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default $PORT or 8080)")
	serveCmd.Flags().BoolVar(&serveUseBrowser, "use-browser", false, "Render SPA job postings with headless Chrome")
	serveCmd.Flags().DurationVar(&serveSnapshotTTL, "snapshot-ttl", 30*24*time.Hour, "Delete sessions not saved for this long (0 keeps them)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if settings.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	port := settings.Port
	if cmd.Flags().Changed("port") {
		port = servePort
	}

	ctx := cmd.Context()
	srv, err := server.New(ctx, server.Config{
		Port:        port,
		APIKey:      settings.APIKey,
		DatabaseURL: settings.DatabaseURL,
		DBPath:      settings.DBPath,
		UseBrowser:  serveUseBrowser || settings.UseBrowser,
		Logger:      logger,
		SnapshotTTL: serveSnapshotTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer func() { _ = srv.Close() }()

	return srv.Start(ctx)
}
