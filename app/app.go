// Package app wires the engine and owns its lifecycle.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/soocke/critter-bot-go/config"
	"github.com/soocke/critter-bot-go/debug"
)

// App owns the session lifecycle: F9 toggles the loop, the context (signal
// or fatal session error) ends the process.
type App struct {
	container *Container
	logger    *slog.Logger
}

// New builds the application from a validated configuration.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	c, err := BuildContainer(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &App{container: c, logger: logger}, nil
}

// Run blocks until the context is cancelled or the session halts fatally.
// The session starts stopped; each F9 press flips it.
func (a *App) Run(ctx context.Context) error {
	defer a.container.Close()

	if a.container.Config.Debug {
		debug.StartRuntimeLogger(5*time.Second, a.logger)
	}

	toggle := make(chan struct{}, 1)
	go listenHotkeys(a.logger, toggle)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-toggle:
		}

		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- a.container.Session.Run(runCtx) }()

		select {
		case <-toggle:
			a.logger.Info("stop requested")
			cancel()
			if err := <-done; err != nil {
				return err
			}
		case err := <-done:
			cancel()
			if err != nil {
				return err
			}
		case <-ctx.Done():
			cancel()
			<-done
			return nil
		}
		a.logStats()
	}
}

func (a *App) logStats() {
	stats := a.container.Session.Stats()
	a.logger.Info("session stats",
		slog.Int("encounters", stats.Encounters),
		slog.Int("captured", stats.Captured),
		slog.Int("defeated", stats.Defeated),
		slog.Int("failed", stats.Failed),
		slog.Float64("capture_rate", stats.CaptureRate()),
	)
	a.container.Source.LogStats()
}
