package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/soocke/critter-bot-go/app"
	"github.com/soocke/critter-bot-go/config"
)

func main() {
	cfgPath := flag.String("config", "config.json", "path to the configuration file")
	debugFlag := flag.Bool("debug", false, "verbose logging plus runtime stats")
	initFlag := flag.Bool("init", false, "write a default configuration file and exit")
	flag.Parse()

	if *initFlag {
		if err := config.DefaultConfig().Save(*cfgPath); err != nil {
			NewLogger(slog.LevelInfo).Error("writing default configuration failed", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		NewLogger(slog.LevelInfo).Error("configuration invalid", slog.Any("error", err))
		os.Exit(1)
	}
	if *debugFlag {
		cfg.Debug = true
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		logger.Error("session halted", slog.Any("error", err))
		os.Exit(1)
	}
}
