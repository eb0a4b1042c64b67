package battle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/looplab/fsm"

	"github.com/soocke/critter-bot-go/domain/action"
)

// Session modes.
const (
	modeSearching = "searching"
	modeBattling  = "battling"
	modeCooldown  = "cooldown"
)

// Session mode-machine events.
const (
	eventBattleDetected  = "battle_detected"
	eventEncounterDone   = "encounter_done"
	eventCooldownElapsed = "cooldown_elapsed"
)

// EncounterRunner runs one full encounter. Satisfied by *Controller.
type EncounterRunner interface {
	Run(ctx context.Context) EncounterResult
}

// Session is the outer control loop: search for encounter spots, hand a
// confirmed battle to the controller exactly once (single-flight by
// construction, the loop is synchronous), then sit out the cooldown.
type Session struct {
	logger     *slog.Logger
	perception Perception
	controller EncounterRunner
	scout      SpotFinder
	sink       action.Sink
	notifier   Notifier

	machine *fsm.FSM
	stats   Stats

	searchInterval time.Duration
	battleInterval time.Duration
	cooldown       time.Duration
	cooldownUntil  time.Time
}

// SessionParams collects the session's wiring and tuning.
type SessionParams struct {
	Logger     *slog.Logger
	Perception Perception
	Controller EncounterRunner
	Scout      SpotFinder
	Sink       action.Sink
	Notifier   Notifier

	SearchInterval time.Duration
	BattleInterval time.Duration
	Cooldown       time.Duration
}

// NewSession builds the session mode machine in the searching state.
func NewSession(p SessionParams) *Session {
	s := &Session{
		logger:         p.Logger,
		perception:     p.Perception,
		controller:     p.Controller,
		scout:          p.Scout,
		sink:           p.Sink,
		notifier:       p.Notifier,
		searchInterval: p.SearchInterval,
		battleInterval: p.BattleInterval,
		cooldown:       p.Cooldown,
	}
	s.machine = fsm.NewFSM(
		modeSearching,
		fsm.Events{
			{Name: eventBattleDetected, Src: []string{modeSearching}, Dst: modeBattling},
			{Name: eventEncounterDone, Src: []string{modeBattling}, Dst: modeCooldown},
			{Name: eventCooldownElapsed, Src: []string{modeCooldown}, Dst: modeSearching},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				s.logger.Info("session mode changed",
					slog.String("from", e.Src),
					slog.String("to", e.Dst),
				)
			},
		},
	)
	return s
}

// Mode returns the current session mode.
func (s *Session) Mode() string { return s.machine.Current() }

// Stats returns the accumulated encounter statistics.
func (s *Session) Stats() Stats { return s.stats }

// Interval returns how long to wait before the next step: phase checks run
// faster while searching than once a battle is confirmed.
func (s *Session) Interval() time.Duration {
	if s.Mode() == modeBattling {
		return s.battleInterval
	}
	return s.searchInterval
}

// Run drives the loop until the context is cancelled or the viewport is
// lost. One bad encounter never stops the loop; a capture failure does.
func (s *Session) Run(ctx context.Context) error {
	s.logger.Info("session started",
		slog.Duration("search_interval", s.searchInterval),
		slog.Duration("battle_interval", s.battleInterval),
		slog.Duration("cooldown", s.cooldown),
	)
	for {
		if err := ctx.Err(); err != nil {
			s.logger.Info("session stopped", slog.Int("encounters", s.stats.Encounters))
			return nil
		}
		if err := s.step(ctx, time.Now()); err != nil {
			return fmt.Errorf("battle: session halted: %w", err)
		}
		sleepCtx(ctx, s.Interval())
	}
}

// step advances the loop one tick. Returned errors are fatal to the
// session.
func (s *Session) step(ctx context.Context, now time.Time) error {
	switch s.Mode() {
	case modeCooldown:
		if !now.Before(s.cooldownUntil) {
			return s.fire(ctx, eventCooldownElapsed)
		}
		return nil

	case modeSearching:
		res, err := s.perception.Tick(ctx)
		if err != nil {
			return err
		}
		if res.Phase.InBattle() {
			if err := s.fire(ctx, eventBattleDetected); err != nil {
				return err
			}
			return s.runEncounter(ctx, now)
		}
		return s.clickSpot(ctx)

	case modeBattling:
		// Only reachable if a previous step was interrupted mid-battle;
		// the encounter runs synchronously inside the searching branch.
		return s.runEncounter(ctx, now)
	}
	return nil
}

// runEncounter hands control to the encounter controller, folds the result
// into stats, and opens the cooldown window.
func (s *Session) runEncounter(ctx context.Context, now time.Time) error {
	result := s.controller.Run(ctx)
	s.stats.Record(result)
	s.notifier.EncounterDone(result, s.stats)

	if result.Err != nil && ctx.Err() == nil {
		// Contained encounter fault: log and keep the session alive.
		// Viewport loss is the exception, it must halt everything.
		if fatalToSession(result.Err) {
			return result.Err
		}
		s.logger.Error("encounter failed", slog.Any("error", result.Err))
	}

	s.cooldownUntil = now.Add(s.cooldown)
	return s.fire(ctx, eventEncounterDone)
}

// clickSpot clicks the best encounter-spot match, if any.
func (s *Session) clickSpot(ctx context.Context) error {
	if s.scout == nil {
		return nil
	}
	point, found, err := s.scout.Find(ctx)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	return s.sink.ClickAt(point)
}

func (s *Session) fire(ctx context.Context, event string) error {
	if err := s.machine.Event(ctx, event); err != nil {
		return fmt.Errorf("battle: session event %s: %w", event, err)
	}
	return nil
}

func fatalToSession(err error) bool {
	return errors.Is(err, ErrViewportLost)
}
