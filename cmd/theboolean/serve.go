package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/thebooleanin/techstory-weaver/internal/config"
	"github.com/thebooleanin/techstory-weaver/internal/server"
	"github.com/thebooleanin/techstory-weaver/internal/version"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().Bool("seed-demo", false, "insert demo articles, stories and ads on start")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		},
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Configuration comes first so log level and format can be set.
	v, err := server.LoadConfig(flagConfig)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if flagEphemeral {
		v.Set("database.path", ":memory:")
	}
	if f := cmd.Flags().Lookup("seed-demo"); f != nil && f.Changed {
		v.Set("server.seed_demo", f.Value.String() == "true")
	}

	logger, err := config.NewLogger(v)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("TheBoolean server starting", zap.String("version", version.Short()))
	if f := v.ConfigFileUsed(); f != "" {
		logger.Info("configuration loaded",
			zap.String("component", "config"),
			zap.String("source", f),
		)
	} else {
		logger.Warn("no configuration file found, using defaults",
			zap.String("component", "config"),
		)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, v, logger)
	if err != nil {
		return err
	}
	if err := a.start(ctx); err != nil {
		a.shutdown(context.Background())
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.srv.Start(); err != nil {
			errCh <- err
		}
	}()

	logger.Info("TheBoolean server ready", zap.String("addr", a.addr))
	fmt.Fprintf(os.Stderr, "\n  TheBoolean %s is ready!\n  Open http://%s in your browser.\n\n", version.Short(), a.addr)

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case serveErr = <-errCh:
		logger.Error("server error", zap.Error(serveErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.shutdown(shutdownCtx)

	logger.Info("TheBoolean server stopped")
	return serveErr
}
