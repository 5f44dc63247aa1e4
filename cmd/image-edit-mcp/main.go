package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ironsheep/image-edit-mcp/internal/config"
	"github.com/ironsheep/image-edit-mcp/internal/pipeline"
	"github.com/ironsheep/image-edit-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version information")
	configPath := flag.String("config", "", "path to a config file (toml, yaml or json)")
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Printf("image-edit-mcp %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "image-edit-mcp: %v\n", err)
		os.Exit(1)
	}
	setupLogging(cfg.LogLevel)

	log.Info().
		Str("version", Version).
		Int("max_concurrent_tasks", cfg.MaxConcurrentTasks).
		Bool("cache", cfg.Cache.Enabled).
		Str("output_mode", cfg.Output.Mode).
		Msg("starting image-edit-mcp")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := server.New(pipeline.New(cfg))
	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("stdin closed, shutting down")
}

// setupLogging sends logs to stderr; stdout carries the MCP protocol.
func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	if lvl <= zerolog.DebugLevel {
		cw := zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = os.Stderr
			w.TimeFormat = time.RFC3339
		})
		log.Logger = zerolog.New(cw).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func usage() {
	fmt.Fprintln(os.Stderr, "image-edit-mcp - MCP server for image editing")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Usage: image-edit-mcp [options]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Options:")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Environment variables:")
	fmt.Fprintf(os.Stderr, "  %s_LOG_LEVEL=debug          Enable debug logging\n", config.EnvPrefix)
	fmt.Fprintf(os.Stderr, "  %s_OUTPUT_MODE=file_ref     Return results as temp files\n", config.EnvPrefix)
	fmt.Fprintf(os.Stderr, "  %s_CACHE_ENABLED=false      Disable the result cache\n", config.EnvPrefix)
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "This server communicates via MCP protocol over stdin/stdout.")
}
