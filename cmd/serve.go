package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mohsalah/askdoc/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the askdoc HTTP server",
	Long:  `Starts the askdoc server with the upload, processing, question answering and flush endpoints plus a WebSocket chat channel.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort != 0 {
			cfg.Port = servePort
		}

		orchestrator, registry, err := buildOrchestrator(cfg)
		if err != nil {
			return err
		}
		defer registry.Close()

		srv := server.New(server.Config{
			Port:     cfg.Port,
			AllowAll: true,
		}, orchestrator)

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-sigCh:
			fmt.Fprintf(os.Stderr, "\nReceived %s, shutting down...\n", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		}
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "override the configured port")
	rootCmd.AddCommand(serveCmd)
}
