package battle

import (
	"errors"
	"time"
)

// Phase is the classified battle screen state.
type Phase int

const (
	PhaseNotInBattle Phase = iota
	PhaseStarting
	PhaseAwaitingTurn
	PhaseTurnReady
	PhaseCaptureAttempt
	PhaseCaptureSuccess
	PhaseWon
	PhaseLost
	PhaseEnded
)

var phaseNames = map[Phase]string{
	PhaseNotInBattle:    "not_in_battle",
	PhaseStarting:       "starting",
	PhaseAwaitingTurn:   "awaiting_turn",
	PhaseTurnReady:      "turn_ready",
	PhaseCaptureAttempt: "capture_attempt",
	PhaseCaptureSuccess: "capture_success",
	PhaseWon:            "won",
	PhaseLost:           "lost",
	PhaseEnded:          "ended",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "unknown"
}

// InBattle reports whether the phase belongs to an active encounter, i.e.
// the battle HUD is on screen.
func (p Phase) InBattle() bool {
	switch p {
	case PhaseStarting, PhaseAwaitingTurn, PhaseTurnReady,
		PhaseCaptureAttempt, PhaseCaptureSuccess, PhaseWon, PhaseLost:
		return true
	}
	return false
}

// Terminal reports whether the phase ends the encounter.
func (p Phase) Terminal() bool {
	return p == PhaseWon || p == PhaseLost || p == PhaseEnded
}

// Rarity is the creature rarity class read from the HUD portrait wedge.
type Rarity int

const (
	RarityCommon Rarity = iota
	RarityRare
	RarityEpic
	RarityExotic
	RarityLegendary

	NumRarities
)

var rarityNames = [NumRarities]string{"Common", "Rare", "Epic", "Exotic", "Legendary"}

func (r Rarity) String() string {
	if r >= 0 && r < NumRarities {
		return rarityNames[r]
	}
	return "Unknown"
}

// ParseRarity maps a rarity name (case-sensitive, as stored in config) to
// its enum value.
func ParseRarity(s string) (Rarity, bool) {
	for i, name := range rarityNames {
		if name == s {
			return Rarity(i), true
		}
	}
	return 0, false
}

// Tier is a creature strength rating, ordered strongest first.
type Tier int

const (
	TierSPlus Tier = iota
	TierS
	TierAPlus
	TierA
	TierBPlus
	TierB
	TierCPlus
	TierC
	TierDPlus
	TierD
	TierFPlus
	TierF
	TierFMinus

	NumTiers
)

var tierNames = [NumTiers]string{
	"S+", "S", "A+", "A", "B+", "B", "C+", "C", "D+", "D", "F+", "F", "F-",
}

func (t Tier) String() string {
	if t >= 0 && t < NumTiers {
		return tierNames[t]
	}
	return "?"
}

// ParseTier maps a tier name such as "A+" to its enum value.
func ParseTier(s string) (Tier, bool) {
	for i, name := range tierNames {
		if name == s {
			return Tier(i), true
		}
	}
	return 0, false
}

// AtLeast reports whether t is at least as strong as floor. Tiers are
// declared strongest-first, so smaller values are stronger.
func (t Tier) AtLeast(floor Tier) bool { return t <= floor }

// AtMost reports whether t is no stronger than ceiling.
func (t Tier) AtMost(ceiling Tier) bool { return t >= ceiling }

// Rating is a resolved (tier, rarity) pair.
type Rating struct {
	Tier   Tier
	Rarity Rarity
}

func (r Rating) String() string { return r.Tier.String() + " " + r.Rarity.String() }

// Outcome classifies how an encounter ended.
type Outcome int

const (
	OutcomeCaptured Outcome = iota
	OutcomeDefeated
	OutcomeFled
	OutcomeFailed
)

var outcomeNames = map[Outcome]string{
	OutcomeCaptured: "captured",
	OutcomeDefeated: "defeated",
	OutcomeFled:     "fled",
	OutcomeFailed:   "failed",
}

func (o Outcome) String() string {
	if s, ok := outcomeNames[o]; ok {
		return s
	}
	return "unknown"
}

// EncounterResult summarizes one finished encounter.
type EncounterResult struct {
	Outcome         Outcome
	Rating          Rating
	RatingKnown     bool
	CaptureAttempts int
	SkillsUsed      int
	Duration        time.Duration
	Err             error
}

// Stats accumulates encounter outcomes over a session.
type Stats struct {
	Encounters int
	Captured   int
	Defeated   int
	Fled       int
	Failed     int
	Attempts   int
}

// Record folds one encounter result into the totals.
func (s *Stats) Record(r EncounterResult) {
	s.Encounters++
	s.Attempts += r.CaptureAttempts
	switch r.Outcome {
	case OutcomeCaptured:
		s.Captured++
	case OutcomeDefeated:
		s.Defeated++
	case OutcomeFled:
		s.Fled++
	default:
		s.Failed++
	}
}

// CaptureRate is the fraction of encounters that ended in a capture.
func (s *Stats) CaptureRate() float64 {
	if s.Encounters == 0 {
		return 0
	}
	return float64(s.Captured) / float64(s.Encounters)
}

var (
	// ErrMeasurementUnavailable means an extractor could not produce a
	// usable reading from the frame.
	ErrMeasurementUnavailable = errors.New("battle: measurement unavailable")

	// ErrNavigationFailed means the skill navigator could not bring the
	// requested slot into view.
	ErrNavigationFailed = errors.New("battle: skill navigation failed")

	// ErrTimeoutExceeded means a bounded wait for a phase elapsed.
	ErrTimeoutExceeded = errors.New("battle: timeout exceeded")

	// ErrViewportLost means the bound game window disappeared.
	ErrViewportLost = errors.New("battle: viewport lost")
)
