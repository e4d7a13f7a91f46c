package main

import (
	"fmt"

	"github.com/jonathan/profile-architect/internal/logging"
	"github.com/jonathan/profile-architect/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the HTTP API server. Each session walks discovery, input and result steps;
generation progress streams over Server-Sent Events and exports are served per format.`,
	RunE: runServe,
}

var servePort int

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to the config file port or 8080)")
	addInputFlags(serveCmd, "chrome-path")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	port := settings.Port
	if cmd.Flags().Changed("port") {
		port = servePort
	}

	client, err := newLLMClient(ctx, &settings)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	srv, err := server.New(server.Config{
		Port:           port,
		Client:         client,
		ChromePath:     settings.ChromePath,
		RequestTimeout: settings.Timeout(),
		RateLimit:      settings.RateLimit,
		RateBurst:      settings.RateBurst,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logging.Info().Int("port", port).Msg("starting profile server")
	return srv.Start()
}
