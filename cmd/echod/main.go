// Command echod is the voice command gateway daemon: it accepts utterances
// over a websocket connection, resolves them to device-control intents, and
// executes them against the host.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/echocommand/echod/internal/config"
	"github.com/echocommand/echod/internal/control"
	"github.com/echocommand/echod/internal/dispatch"
	"github.com/echocommand/echod/internal/history"
	"github.com/echocommand/echod/internal/httpapi"
	"github.com/echocommand/echod/internal/resolve"
	"github.com/echocommand/echod/internal/router"
	"github.com/echocommand/echod/internal/session"
)

var version = "dev"

func main() {
	logger := log.New(os.Stdout, "echod ", log.Ldate|log.Ltime|log.Lmicroseconds|log.LUTC)

	var configPath string
	var listenAddr string

	root := &cobra.Command{
		Use:           "echod",
		Short:         "Voice command gateway daemon",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if listenAddr != "" {
				cfg.ListenAddr = listenAddr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), logger, cfg)
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "path to config file")
	root.Flags().StringVar(&listenAddr, "listen", "", "listen address (overrides config)")

	if err := root.Execute(); err != nil {
		logger.Fatalf("echod: %v", err)
	}
}

func run(ctx context.Context, logger *log.Logger, cfg config.Config) error {
	registry := session.NewRegistry(logger, cfg.IdleTimeout, cfg.PurgeGrace)
	sweeper := session.NewSweeper(logger, registry, cfg.SweepInterval)
	sweeper.Start()
	defer sweeper.Stop()

	controller := control.New(logger, control.Options{
		ExecTimeout:   cfg.ExecTimeout,
		ScreenshotDir: cfg.ScreenshotDir,
		WorkspaceRoot: cfg.WorkspaceRoot,
	})
	recorder := history.NewRecorder(cfg.HistoryCapacity)
	dispatcher := dispatch.New(logger, controller, registry, recorder)

	msgRouter := router.New(logger, registry, dispatcher,
		resolve.NewKeyword(), resolve.NewPassthrough(), nil)

	srv := httpapi.NewServer(logger, cfg.ListenAddr, msgRouter, registry, recorder)

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("listening on %s platform=%s", cfg.ListenAddr, controller.Name())
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Printf("shutting down signal=%s", sig)
	case <-ctx.Done():
		logger.Printf("shutting down context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("server shutdown error: %v", err)
	}
	return nil
}
