package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/markdave123-py/Lumen/internal/app"
	"github.com/markdave123-py/Lumen/internal/config"
)

func main() {
	cfg := config.LoadConfig()

	// stdout carries the MCP protocol in stdio mode.
	var out io.Writer = os.Stdout
	if cfg.MCPTransport == "stdio" {
		out = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	// Handle SIGINT/SIGTERM for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	if cfg.MCPTransport == "stdio" {
		logger.Info("serving MCP tools on stdio")
		if err := application.ServeStdio(ctx); err != nil && ctx.Err() == nil {
			logger.Error("mcp stdio", "error", err)
		}
		return
	}

	errCh := make(chan error, 1)
	go func() { errCh <- application.Server.Start() }()

	logger.Info("Lumen is running", "port", cfg.Port, "pdf_backend", cfg.PDFBackend)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
		}
	}

	logger.Info("shutting down...")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	if err := application.Server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
