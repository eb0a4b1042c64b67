package battle

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/soocke/critter-bot-go/config"
)

type fakeRunner struct {
	runs   int
	result EncounterResult
}

func (r *fakeRunner) Run(ctx context.Context) EncounterResult {
	r.runs++
	return r.result
}

type fakeScout struct {
	point config.Point
	found bool
	err   error
	calls int
}

func (s *fakeScout) Find(ctx context.Context) (config.Point, bool, error) {
	s.calls++
	return s.point, s.found, s.err
}

func testSession(p Perception, runner EncounterRunner, scout SpotFinder, sink *recordingSink) *Session {
	return NewSession(SessionParams{
		Logger:         discardLogger(),
		Perception:     p,
		Controller:     runner,
		Scout:          scout,
		Sink:           sink,
		Notifier:       NopNotifier{},
		SearchInterval: time.Second,
		BattleInterval: 2 * time.Second,
		Cooldown:       25 * time.Second,
	})
}

func TestSession_CooldownSingleFlight(t *testing.T) {
	// Battle HUD visible on every tick. The first step runs one
	// encounter; a second detection inside the cooldown window must not
	// start another.
	fake := &fakePerception{phases: []Phase{PhaseAwaitingTurn}}
	runner := &fakeRunner{result: EncounterResult{Outcome: OutcomeDefeated}}
	s := testSession(fake, runner, nil, &recordingSink{})

	t0 := time.Now()
	if err := s.step(context.Background(), t0); err != nil {
		t.Fatalf("step: %v", err)
	}
	if runner.runs != 1 {
		t.Fatalf("runs after first detection = %d, want 1", runner.runs)
	}
	if s.Mode() != modeCooldown {
		t.Fatalf("mode after encounter = %s, want cooldown", s.Mode())
	}

	// 10s later, still cooling down: no new invocation.
	if err := s.step(context.Background(), t0.Add(10*time.Second)); err != nil {
		t.Fatalf("step: %v", err)
	}
	if runner.runs != 1 {
		t.Errorf("runs inside cooldown = %d, want still 1", runner.runs)
	}
	if s.Mode() != modeCooldown {
		t.Errorf("mode inside cooldown = %s", s.Mode())
	}

	// Past the 25s cooldown the session searches again and the next
	// detection starts a second encounter.
	if err := s.step(context.Background(), t0.Add(26*time.Second)); err != nil {
		t.Fatalf("step: %v", err)
	}
	if s.Mode() != modeSearching {
		t.Fatalf("mode after cooldown = %s, want searching", s.Mode())
	}
	if err := s.step(context.Background(), t0.Add(27*time.Second)); err != nil {
		t.Fatalf("step: %v", err)
	}
	if runner.runs != 2 {
		t.Errorf("runs after cooldown = %d, want 2", runner.runs)
	}
}

func TestSession_StatsAccumulateAcrossFailures(t *testing.T) {
	fake := &fakePerception{phases: []Phase{PhaseAwaitingTurn}}
	runner := &fakeRunner{result: EncounterResult{
		Outcome: OutcomeFailed,
		Err:     fmt.Errorf("battle: unexpected fault: boom"),
	}}
	s := testSession(fake, runner, nil, &recordingSink{})

	t0 := time.Now()
	if err := s.step(context.Background(), t0); err != nil {
		t.Fatalf("failed encounter halted session: %v", err)
	}
	stats := s.Stats()
	if stats.Encounters != 1 || stats.Failed != 1 {
		t.Errorf("stats = %+v, want 1 encounter, 1 failed", stats)
	}
}

func TestSession_ViewportLossHalts(t *testing.T) {
	fake := &fakePerception{phases: []Phase{PhaseAwaitingTurn}}
	runner := &fakeRunner{result: EncounterResult{
		Outcome: OutcomeFailed,
		Err:     fmt.Errorf("capture: %w", ErrViewportLost),
	}}
	s := testSession(fake, runner, nil, &recordingSink{})

	err := s.step(context.Background(), time.Now())
	if !errors.Is(err, ErrViewportLost) {
		t.Errorf("step error = %v, want viewport loss to propagate", err)
	}
}

func TestSession_SearchClicksSpot(t *testing.T) {
	fake := &fakePerception{phases: []Phase{PhaseNotInBattle}}
	scout := &fakeScout{point: config.Point{X: 40, Y: 60}, found: true}
	sink := &recordingSink{}
	s := testSession(fake, &fakeRunner{}, scout, sink)

	if err := s.step(context.Background(), time.Now()); err != nil {
		t.Fatalf("step: %v", err)
	}
	if scout.calls != 1 {
		t.Errorf("scout calls = %d, want 1", scout.calls)
	}
	if len(sink.points) != 1 || sink.points[0] != (config.Point{X: 40, Y: 60}) {
		t.Errorf("clicked points = %v, want the spot center", sink.points)
	}
}

func TestSession_IntervalByMode(t *testing.T) {
	fake := &fakePerception{phases: []Phase{PhaseNotInBattle}}
	s := testSession(fake, &fakeRunner{}, nil, &recordingSink{})

	if s.Interval() != time.Second {
		t.Errorf("search interval = %v, want 1s", s.Interval())
	}
}

func TestStats_Record(t *testing.T) {
	var stats Stats
	stats.Record(EncounterResult{Outcome: OutcomeCaptured, CaptureAttempts: 2})
	stats.Record(EncounterResult{Outcome: OutcomeDefeated})
	stats.Record(EncounterResult{Outcome: OutcomeFailed})
	stats.Record(EncounterResult{Outcome: OutcomeCaptured, CaptureAttempts: 1})

	if stats.Encounters != 4 || stats.Captured != 2 || stats.Defeated != 1 || stats.Failed != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", stats.Attempts)
	}
	if stats.CaptureRate() != 0.5 {
		t.Errorf("capture rate = %v, want 0.5", stats.CaptureRate())
	}
}
