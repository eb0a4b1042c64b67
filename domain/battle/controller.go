package battle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/soocke/critter-bot-go/config"
	"github.com/soocke/critter-bot-go/domain/action"
)

// Controller drives one encounter end to end: wait for the first turn,
// measure the enemy, decide, chip its health down, attempt the capture, and
// fall back to defeating it. Every loop is bounded; a fault inside the
// encounter is contained here and never reaches the session loop.
type Controller struct {
	logger     *slog.Logger
	perception Perception
	nav        *SkillNavigator
	sink       action.Sink
	notifier   Notifier
	rules      Rules

	defeatSkill     int
	defeatChecked   bool
	defaultHPGate   int
	chipCap         int
	defeatCap       int
	captureAttempts int

	waitTurnTimeout time.Duration
	waitEndTimeout  time.Duration
	poll            time.Duration

	lastPhase Phase
}

// NewController wires a controller from the validated configuration.
func NewController(logger *slog.Logger, cfg *config.Config, rules Rules, perception Perception, nav *SkillNavigator, sink action.Sink, notifier Notifier) *Controller {
	return &Controller{
		logger:          logger,
		perception:      perception,
		nav:             nav,
		sink:            sink,
		notifier:        notifier,
		rules:           rules,
		defeatSkill:     cfg.DefeatSkill,
		defeatChecked:   cfg.DefeatChecked,
		defaultHPGate:   cfg.CaptureHPPercent,
		chipCap:         cfg.ChipAttemptCap,
		defeatCap:       cfg.DefeatAttemptCap,
		captureAttempts: cfg.CaptureAttempts,
		waitTurnTimeout: time.Duration(cfg.WaitTurnTimeoutSeconds) * time.Second,
		waitEndTimeout:  time.Duration(cfg.WaitEndTimeoutSeconds) * time.Second,
		poll:            250 * time.Millisecond,
	}
}

// Run executes one encounter and returns its result. The only errors set on
// the result are fatal ones (context cancelled, viewport lost); everything
// else resolves to an outcome.
func (c *Controller) Run(ctx context.Context) (result EncounterResult) {
	start := time.Now()
	c.perception.Reset(start)
	c.nav.Reset()
	c.lastPhase = PhaseNotInBattle

	defer func() {
		result.Duration = time.Since(start)
		if r := recover(); r != nil {
			c.logger.Error("encounter fault, emergency bail", slog.Any("fault", r))
			c.emergencyBail()
			result.Outcome = OutcomeFailed
			result.Err = fmt.Errorf("battle: unexpected fault: %v", r)
		}
	}()

	// WaitTurn. A timeout is non-fatal: proceed and let the measurement
	// step sort out whether the HUD is really there.
	phase, err := c.waitFor(ctx, c.waitTurnTimeout, func(p Phase) bool {
		return p == PhaseTurnReady || p.Terminal()
	})
	if fatal(err) {
		return c.failed(err)
	}
	if errors.Is(err, ErrTimeoutExceeded) {
		c.logger.Warn("no turn signal before timeout, proceeding anyway")
	}
	if phase.Terminal() {
		return c.finish(ctx, result, false)
	}

	// Measure.
	rate, err := c.perception.CaptureRate(ctx)
	if fatal(err) {
		return c.failed(err)
	}
	rarity, err := c.perception.Rarity(ctx)
	if fatal(err) {
		return c.failed(err)
	}
	rating, known := Rating{}, false
	if rate.Known {
		rating, known = ResolveRating(rate.Percent, c.rules.EnabledRarities())
	}
	c.notifier.Measured(rate, rarity, rating, known)
	result.Rating = rating
	result.RatingKnown = known

	// Decide.
	rule, eligible := Eligible(c.rules, rating, known)
	c.notifier.Decision(rating, eligible)

	captured := false
	if eligible {
		eligible = c.chipHP(ctx, rule, &result)
	}
	if eligible {
		captured = c.attemptCapture(ctx, rule, &result)
	}
	if result.Err != nil {
		return result
	}
	if !captured {
		c.defeat(ctx, &result)
		if result.Err != nil {
			return result
		}
	}
	return c.finish(ctx, result, captured)
}

// chipHP whittles the enemy down to the capture gate. Returns false when
// navigation broke and the encounter should fall through to defeat.
func (c *Controller) chipHP(ctx context.Context, rule Rule, result *EncounterResult) bool {
	gate := rule.HPGatePercent
	if gate <= 0 {
		gate = c.defaultHPGate
	}
	for i := 0; i < c.chipCap; i++ {
		phase, err := c.waitFor(ctx, c.waitTurnTimeout, func(p Phase) bool {
			return p == PhaseTurnReady || p.Terminal()
		})
		if fatal(err) {
			result.Err = err
			return false
		}
		if phase.Terminal() {
			return false
		}
		hp, err := c.perception.HP(ctx)
		if fatal(err) {
			result.Err = err
			return false
		}
		if hp.Known && hp.Percent <= float64(gate) {
			c.logger.Info("hp gate reached",
				slog.Float64("hp", hp.Percent),
				slog.Int("gate", gate))
			return true
		}
		if err := c.nav.Invoke(rule.DamageSkill); err != nil {
			c.logger.Warn("damage skill unreachable, falling back to defeat", slog.Any("error", err))
			return false
		}
		result.SkillsUsed++
	}
	// Cap reached with the gate never confirmed. Attempt the capture
	// anyway: the attempts loop is bounded too.
	c.logger.Warn("chip attempt cap reached", slog.Int("cap", c.chipCap))
	return true
}

// attemptCapture invokes the capture action up to the configured cap and
// polls for the success signal after each attempt.
func (c *Controller) attemptCapture(ctx context.Context, rule Rule, result *EncounterResult) bool {
	for i := 0; i < c.captureAttempts; i++ {
		phase, err := c.waitFor(ctx, c.waitTurnTimeout, func(p Phase) bool {
			return p == PhaseTurnReady || p.Terminal()
		})
		if fatal(err) {
			result.Err = err
			return false
		}
		if phase == PhaseCaptureSuccess {
			c.keepCapture()
			return true
		}
		if phase.Terminal() {
			return false
		}

		if rule.CaptureSkill > 0 {
			if err := c.nav.Invoke(rule.CaptureSkill); err != nil {
				c.logger.Warn("capture skill unreachable", slog.Any("error", err))
				return false
			}
		} else if err := c.sink.ClickCapture(); err != nil {
			c.logger.Warn("capture click failed", slog.Any("error", err))
			return false
		}
		result.CaptureAttempts++

		phase, err = c.waitFor(ctx, c.waitTurnTimeout, func(p Phase) bool {
			return p == PhaseCaptureSuccess || p.Terminal()
		})
		if fatal(err) {
			result.Err = err
			return false
		}
		if phase == PhaseCaptureSuccess {
			c.keepCapture()
			return true
		}
		if phase.Terminal() {
			return false
		}
	}
	c.logger.Info("capture attempts exhausted", slog.Int("cap", c.captureAttempts))
	return false
}

// keepCapture confirms keeping the captured creature. Issued exactly once
// per success; a failed click is logged and ignored since the dialog also
// times out on its own.
func (c *Controller) keepCapture() {
	if err := c.sink.ClickKeep(); err != nil {
		c.logger.Warn("keep click failed", slog.Any("error", err))
	}
}

// defeat invokes the configured strongest skill until the battle ends or
// the cap is reached. Checked mode confirms a turn before each attack;
// quick mode fires on a fixed cadence.
func (c *Controller) defeat(ctx context.Context, result *EncounterResult) {
	for i := 0; i < c.defeatCap; i++ {
		if c.defeatChecked {
			phase, err := c.waitFor(ctx, c.waitTurnTimeout, func(p Phase) bool {
				return p == PhaseTurnReady || p.Terminal()
			})
			if fatal(err) {
				result.Err = err
				return
			}
			if phase.Terminal() {
				return
			}
		}
		if err := c.nav.Invoke(c.defeatSkill); err != nil {
			c.logger.Warn("defeat skill unreachable", slog.Any("error", err))
			return
		}
		result.SkillsUsed++
		if !c.defeatChecked {
			sleepCtx(ctx, c.poll)
			if ctx.Err() != nil {
				result.Err = ctx.Err()
				return
			}
		}
	}
	c.logger.Warn("defeat attempt cap reached", slog.Int("cap", c.defeatCap))
}

// finish waits for the end-of-battle screen and issues the continue click
// exactly once.
func (c *Controller) finish(ctx context.Context, result EncounterResult, captured bool) EncounterResult {
	phase, err := c.waitFor(ctx, c.waitEndTimeout, func(p Phase) bool {
		return p.Terminal() || p == PhaseNotInBattle
	})
	if fatal(err) {
		return c.failed(err)
	}
	if errors.Is(err, ErrTimeoutExceeded) {
		c.logger.Warn("battle end not confirmed before timeout")
	}
	if err := c.sink.ClickContinue(); err != nil {
		c.logger.Warn("continue click failed", slog.Any("error", err))
	}

	switch {
	case captured:
		result.Outcome = OutcomeCaptured
	case phase == PhaseLost:
		result.Outcome = OutcomeFled
	default:
		result.Outcome = OutcomeDefeated
	}
	return result
}

func (c *Controller) failed(err error) EncounterResult {
	return EncounterResult{Outcome: OutcomeFailed, Err: err}
}

// waitFor polls phase detection until the predicate holds or the timeout
// expires. Capture and context errors propagate; a timeout returns the last
// committed phase with ErrTimeoutExceeded.
func (c *Controller) waitFor(ctx context.Context, timeout time.Duration, want func(Phase) bool) (Phase, error) {
	deadline := time.Now().Add(timeout)
	for {
		if err := ctx.Err(); err != nil {
			return c.lastPhase, err
		}
		res, err := c.perception.Tick(ctx)
		if err != nil {
			return c.lastPhase, err
		}
		c.observePhase(res.Phase)
		if want(res.Phase) {
			return res.Phase, nil
		}
		if time.Now().After(deadline) {
			return res.Phase, ErrTimeoutExceeded
		}
		sleepCtx(ctx, c.poll)
	}
}

func (c *Controller) observePhase(p Phase) {
	if p != c.lastPhase {
		c.notifier.PhaseChanged(c.lastPhase, p)
		c.lastPhase = p
	}
}

// emergencyBail is the encounter-granularity fault handler: one best-effort
// attack plus continue so the game is not left mid-dialog.
func (c *Controller) emergencyBail() {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("emergency bail faulted", slog.Any("fault", r))
		}
	}()
	if err := c.nav.Invoke(c.defeatSkill); err != nil {
		c.logger.Warn("emergency attack failed", slog.Any("error", err))
	}
	if err := c.sink.ClickContinue(); err != nil {
		c.logger.Warn("emergency continue failed", slog.Any("error", err))
	}
}

func fatal(err error) bool {
	return err != nil && !errors.Is(err, ErrTimeoutExceeded) && !errors.Is(err, ErrMeasurementUnavailable)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
