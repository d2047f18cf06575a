package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/horusauth/horus/internal/config"
	"github.com/horusauth/horus/internal/recognition"
	"github.com/horusauth/horus/internal/store"
	"github.com/horusauth/horus/internal/verify"
	"github.com/horusauth/horus/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the verification server",
	Long: `Start the Horus verification server.
The server stores credential bundles in S3, runs face matching and gesture
classification through a vision model provider and exposes the account and
upload endpoints over HTTP.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides HORUS_PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides HORUS_HOST)")
}

// buildStore picks the credential store: S3 when a bucket is configured,
// an in-memory store otherwise. The memory store loses everything on
// restart, so it only makes sense for local development.
func buildStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.S3.Bucket != "" {
		s3Store, err := store.NewS3Store(ctx, &cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("connecting to S3: %w", err)
		}
		fmt.Printf("Using S3 credential store (bucket %s)\n", cfg.S3.Bucket)
		return s3Store, nil
	}

	fmt.Println("Warning: FACE_RECOG_BUCKET not set, using in-memory store")
	return store.NewMemoryStore(), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if port := mustGetInt(cmd, "port"); port != 0 {
		cfg.Server.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Server.Host = host
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}

	provider, err := recognition.NewProvider(ctx, cfg)
	if err != nil {
		return fmt.Errorf("creating recognition provider: %w", err)
	}
	fmt.Printf("Using %s recognition provider\n", provider.Name())

	pipeline := verify.New(provider, st, cfg.Recognition.Timeout)
	server := web.NewServer(cfg, st, pipeline)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Horus server on http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
