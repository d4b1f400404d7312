package main

import (
	"fmt"
	"log"

	"github.com/jonathan/hireflow/internal/server"
	"github.com/jonathan/hireflow/internal/server/ratelimit"
	"github.com/spf13/cobra"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that generates documents and serves the document history.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	generator, err := a.generator()
	if err != nil {
		return err
	}

	cfg := server.Config{
		Port:       a.cfg.Port,
		Generator:  generator,
		History:    a.store,
		Rehydrator: a.rehydrator,
		RateLimit:  ratelimit.LoadConfig(),
	}
	if servePort > 0 {
		cfg.Port = servePort
	}

	drafter, err := a.drafter(ctx)
	if err != nil {
		return err
	}
	if drafter != nil {
		defer drafter.Close()
		cfg.Drafter = drafter
	} else {
		log.Printf("[server] no LLM API key configured, POST /drafts is disabled")
	}

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
