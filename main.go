package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"cubefall/app"
	"cubefall/hal"
	"cubefall/internal/config"
	"cubefall/internal/logger"
)

func main() {
	var (
		configPath string
		logLevel   string
		logFormat  string
		forceAt    uint64
		headless   hal.HeadlessConfig
	)
	flag.StringVar(&configPath, "config", "", "Path to a YAML config file (defaults to the stock demo).")
	flag.BoolVar(&headless.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&headless.Hz, "hz", 60, "Tick rate in headless mode.")
	flag.Uint64Var(&headless.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.Uint64Var(&forceAt, "force-at", 0, "Apply the debug force after N frames (0 = never).")
	flag.StringVar(&logLevel, "log-level", "", "Override the configured log level.")
	flag.StringVar(&logFormat, "log-format", "", "Override the configured log format (console, text, json).")
	flag.Parse()

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = *loaded
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	newApp := func(h hal.HAL) func() error {
		return app.New(h, app.Options{Config: cfg, ForceAt: forceAt})
	}

	if headless.Enabled {
		headless.Width, headless.Height = cfg.Window.Width, cfg.Window.Height
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, newApp, headless); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			logger.L().Error("run failed", "err", err)
			stop()
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(hal.WindowConfig{
		Title:  cfg.Window.Title,
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		TPS:    cfg.Window.TPS,
	}, newApp); err != nil {
		logger.L().Error("run failed", "err", err)
		os.Exit(1)
	}
}
