package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/soocke/critter-bot-go/config"
	"github.com/soocke/critter-bot-go/domain/action"
	"github.com/soocke/critter-bot-go/domain/battle"
	"github.com/soocke/critter-bot-go/domain/capture"
	"github.com/soocke/critter-bot-go/domain/vision"
)

// Container assembles the engine from a validated configuration: viewport
// binding, frame source, templates, OCR, extractors, controller, session.
type Container struct {
	Config    *config.Config
	Logger    *slog.Logger
	Viewport  *capture.Viewport
	Source    *capture.Source
	Templates *vision.TemplateStore
	OCR       *vision.OCR
	Sink      *action.Robot
	Session   *battle.Session
}

// BuildContainer constructs all components. The only side effects are
// binding the game window and loading assets; no input is sent.
func BuildContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	target := cfg.ProcessName
	if target == "" {
		target = cfg.WindowTitle
	}
	viewport, err := capture.BindViewport(logger, target)
	if err != nil {
		return nil, err
	}
	c.Viewport = viewport
	c.Source = capture.NewSource(logger, viewport)

	templates, err := vision.NewTemplateStore(cfg.TemplateDir, logger)
	if err != nil {
		return nil, fmt.Errorf("app: load templates: %w", err)
	}
	c.Templates = templates
	if !templates.Has(cfg.AnchorTemplate) {
		logger.Warn("anchor template missing, battle detection degraded",
			slog.String("template", cfg.AnchorTemplate))
	}

	c.OCR = vision.NewOCR(logger)

	originX, originY := viewport.Origin()
	c.Sink = action.NewRobot(logger, cfg.Bindings, originX, originY,
		time.Duration(cfg.ActionDelayMS)*time.Millisecond)

	rules, err := battle.RulesFromConfig(cfg.Rules)
	if err != nil {
		return nil, err
	}

	detector := battle.NewDetector(logger, cfg, templates, c.OCR)
	perception := battle.NewPerceptor(
		c.Source,
		detector,
		battle.NewHPExtractor(logger, cfg.HPBarROI),
		battle.NewCaptureRateExtractor(logger, cfg.CaptureRateROI, c.OCR),
		battle.NewRarityClassifier(logger),
	)
	nav := battle.NewSkillNavigator(logger, c.Sink, cfg.SkillCount, cfg.PageSize)
	notifier := battle.NewLogNotifier(logger)
	controller := battle.NewController(logger, cfg, rules, perception, nav, c.Sink, notifier)
	scout := battle.NewScout(logger, c.Source, templates, cfg)

	c.Session = battle.NewSession(battle.SessionParams{
		Logger:         logger,
		Perception:     perception,
		Controller:     controller,
		Scout:          scout,
		Sink:           c.Sink,
		Notifier:       notifier,
		SearchInterval: time.Duration(cfg.CheckIntervalSearchMS) * time.Millisecond,
		BattleInterval: time.Duration(cfg.CheckIntervalBattleMS) * time.Millisecond,
		Cooldown:       time.Duration(cfg.CooldownSeconds) * time.Second,
	})
	return c, nil
}

// Close releases native resources.
func (c *Container) Close() {
	if c.OCR != nil {
		c.OCR.Close()
	}
	if c.Templates != nil {
		c.Templates.Close()
	}
}
