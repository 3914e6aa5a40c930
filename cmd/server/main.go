package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/me/jobq/internal/config"
	"github.com/me/jobq/internal/logging"
	"github.com/me/jobq/internal/scheduler"
	"github.com/me/jobq/internal/server"
)

func main() {
	cfg := config.DefaultServerConfig()

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json)")
	flag.IntVar(&cfg.MaxPending, "max-pending", cfg.MaxPending, "Pending queue capacity (0 for unlimited)")
	debug := flag.Bool("debug", false, "Shorthand for --log-level=debug")
	configFile := flag.String("config", "", "Path to a YAML config file; flags given on the command line take precedence")

	flag.Parse()

	if *configFile != "" {
		fileCfg := config.DefaultServerConfig()
		if err := config.LoadFile(*configFile, &fileCfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = overlayFlags(fileCfg, cfg)
	}
	if *debug {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
	if *configFile != "" {
		logger.Info("config loaded", "path", *configFile)
	}

	sched := scheduler.NewSynchronized(scheduler.New(scheduler.WithLogger(logger)))
	srv := server.New(cfg, sched, logger)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", "addr", cfg.Addr,
			"min_priority", cfg.MinPriority, "max_priority", cfg.MaxPriority, "max_pending", cfg.MaxPending)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
		os.Exit(1)
	}

	st := sched.Stats()
	logger.Info("server stopped", "pending_dropped", st.Pending, "processed", st.Processed)
}

// overlayFlags copies the flags set on the command line from flags onto base.
func overlayFlags(base, flags config.ServerConfig) config.ServerConfig {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			base.Addr = flags.Addr
		case "log-level":
			base.LogLevel = flags.LogLevel
		case "log-format":
			base.LogFormat = flags.LogFormat
		case "max-pending":
			base.MaxPending = flags.MaxPending
		}
	})
	return base
}
