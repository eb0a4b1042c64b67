package battle

import (
	"testing"
	"time"
)

func battleSignals() Signals {
	return Signals{
		AnchorScore:  0.85,
		AnchorFound:  true,
		TileCount:    4,
		TileCoverage: 0.05,
	}
}

func TestClassify_NoAnchorNeverBattle(t *testing.T) {
	// Every other signal maxed out: without the anchor the frame must
	// still classify outside the battle family.
	sig := battleSignals()
	sig.AnchorFound = false
	sig.TurnOK = true
	sig.VictoryRatio = 1
	sig.CaptureDialogRatio = 1
	sig.CaptureSuccessRatio = 1

	phase, _ := Classify(sig)
	if phase.InBattle() {
		t.Errorf("Classify without anchor = %v, want not_in_battle", phase)
	}
}

func TestClassify_SubPhases(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Signals)
		want   Phase
	}{
		{name: "tiles and no turn", mutate: func(s *Signals) {}, want: PhaseAwaitingTurn},
		{name: "turn text", mutate: func(s *Signals) { s.TurnOK = true }, want: PhaseTurnReady},
		{name: "anchor without tiles", mutate: func(s *Signals) { s.TileCount = 0; s.TileCoverage = 0 }, want: PhaseStarting},
		{name: "victory banner", mutate: func(s *Signals) { s.VictoryRatio = 0.3 }, want: PhaseWon},
		{name: "defeat banner", mutate: func(s *Signals) { s.DefeatRatio = 0.3 }, want: PhaseLost},
		{name: "capture dialog", mutate: func(s *Signals) { s.CaptureDialogRatio = 0.4 }, want: PhaseCaptureAttempt},
		{name: "capture success outranks dialog", mutate: func(s *Signals) {
			s.CaptureDialogRatio = 0.4
			s.CaptureSuccessRatio = 0.4
		}, want: PhaseCaptureSuccess},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sig := battleSignals()
			tc.mutate(&sig)
			phase, conf := Classify(sig)
			if phase != tc.want {
				t.Errorf("Classify = %v, want %v", phase, tc.want)
			}
			if conf <= 0 {
				t.Errorf("confidence = %v, want > 0", conf)
			}
		})
	}
}

func TestTracker_SingleInconsistentFrameHeld(t *testing.T) {
	tr := NewTracker(2)
	now := time.Now()
	tr.Reset(now)

	// Commit awaiting_turn.
	tr.Observe(PhaseAwaitingTurn, now)
	if got := tr.Observe(PhaseAwaitingTurn, now); got != PhaseAwaitingTurn {
		t.Fatalf("phase after 2 consistent frames = %v", got)
	}

	// One stray turn_ready frame must not flip the committed phase.
	if got := tr.Observe(PhaseTurnReady, now); got != PhaseAwaitingTurn {
		t.Errorf("phase after 1 inconsistent frame = %v, want awaiting_turn", got)
	}
	// Back to consistent input: streak restarts, still held.
	if got := tr.Observe(PhaseAwaitingTurn, now); got != PhaseAwaitingTurn {
		t.Errorf("phase = %v, want awaiting_turn", got)
	}

	// Two consecutive turn_ready frames commit.
	tr.Observe(PhaseTurnReady, now)
	if got := tr.Observe(PhaseTurnReady, now); got != PhaseTurnReady {
		t.Errorf("phase after 2 consistent turn frames = %v, want turn_ready", got)
	}
}

func TestTracker_NoDirectJumpToCapturePhases(t *testing.T) {
	for _, raw := range []Phase{PhaseCaptureAttempt, PhaseCaptureSuccess, PhaseWon, PhaseLost} {
		tr := NewTracker(2)
		now := time.Now()
		tr.Reset(now)

		tr.Observe(raw, now)
		got := tr.Observe(raw, now)
		if got != PhaseStarting {
			t.Errorf("from not_in_battle, raw %v committed %v, want starting", raw, got)
		}
	}
}

func TestTracker_InPhaseFor(t *testing.T) {
	tr := NewTracker(2)
	t0 := time.Now()
	tr.Reset(t0)

	tr.Observe(PhaseStarting, t0)
	tr.Observe(PhaseStarting, t0.Add(time.Second))
	if d := tr.InPhaseFor(t0.Add(3 * time.Second)); d != 2*time.Second {
		t.Errorf("InPhaseFor = %v, want 2s", d)
	}
}

func TestTracker_ResetReturnsToNotInBattle(t *testing.T) {
	tr := NewTracker(2)
	now := time.Now()
	tr.Reset(now)
	tr.Observe(PhaseAwaitingTurn, now)
	tr.Observe(PhaseAwaitingTurn, now)
	tr.Reset(now)
	if tr.Phase() != PhaseNotInBattle {
		t.Errorf("phase after Reset = %v", tr.Phase())
	}
}
