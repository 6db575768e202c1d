package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ironsheep/notecolor-mcp/internal/config"
	"github.com/ironsheep/notecolor-mcp/internal/logging"
	"github.com/ironsheep/notecolor-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const usage = `notecolor-mcp - MCP server that finds noteheads on rendered score pages
and colors them by pitch class

Usage: notecolor-mcp [options]

Options:
  --config <path>  YAML settings file (defaults are used when omitted)
  --version, -v    Print version information
  --help, -h       Print this help message

Environment variables:
  NOTECOLOR_SERVER_LOG_MODE=production   JSON logs instead of console logs
  NOTECOLOR_DETECTOR_<KEY>=<value>       Override any detector threshold
  NOTECOLOR_PAGES_WORKERS=<n>            Pages detected in parallel

This server communicates via MCP protocol over stdin/stdout.
Configure it in your MCP client (e.g., Claude Desktop).
`

func main() {
	var configPath string
	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version", "-v", "version":
			fmt.Printf("notecolor-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Print(usage)
			return
		case "--config":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "--config needs a path")
				os.Exit(2)
			}
			i++
			configPath = args[i]
		default:
			fmt.Fprintf(os.Stderr, "unknown option %q\n\n%s", args[i], usage)
			os.Exit(2)
		}
	}

	cfg, cfgErr := config.LoadOrDefault(configPath)
	if cfg == nil {
		fmt.Fprintf(os.Stderr, "config %s: %v\n", configPath, cfgErr)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Server.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync(logger)

	if cfgErr != nil {
		logger.Warn("using default settings", zap.String("config", configPath), zap.Error(cfgErr))
	}
	logger.Debug("starting",
		zap.String("version", Version),
		zap.String("built", BuildTime),
		zap.String("commit", GitCommit))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server.Version = Version
	srv := server.New(cfg, logger)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server stopped", zap.Error(err))
		logging.Sync(logger)
		os.Exit(1)
	}
}
