package battle

import (
	"log/slog"

	"github.com/soocke/critter-bot-go/domain/vision"
)

// Notifier receives structured engine events for external logging or an
// overlay. Implementations must not block.
type Notifier interface {
	PhaseChanged(from, to Phase)
	Measured(rate vision.Reading, rarity RarityResult, rating Rating, known bool)
	Decision(rating Rating, eligible bool)
	EncounterDone(result EncounterResult, stats Stats)
}

// LogNotifier writes every event to a structured logger.
type LogNotifier struct {
	logger *slog.Logger
}

var _ Notifier = (*LogNotifier)(nil)

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) PhaseChanged(from, to Phase) {
	n.logger.Info("phase changed",
		slog.String("from", from.String()),
		slog.String("to", to.String()),
	)
}

func (n *LogNotifier) Measured(rate vision.Reading, rarity RarityResult, rating Rating, known bool) {
	attrs := []any{
		slog.Bool("rate_known", rate.Known),
		slog.Bool("rating_known", known),
	}
	if rate.Known {
		attrs = append(attrs, slog.Float64("rate_percent", rate.Percent))
	}
	if known {
		attrs = append(attrs, slog.String("rating", rating.String()))
	}
	if rarity.Known {
		attrs = append(attrs,
			slog.String("wedge_rarity", rarity.Rarity.String()),
			slog.Float64("wedge_confidence", rarity.Confidence),
		)
		if known && rarity.Rarity != rating.Rarity {
			attrs = append(attrs, slog.Bool("rarity_mismatch", true))
		}
	}
	n.logger.Info("measured", attrs...)
}

func (n *LogNotifier) Decision(rating Rating, eligible bool) {
	n.logger.Info("decision",
		slog.String("rating", rating.String()),
		slog.Bool("capture", eligible),
	)
}

func (n *LogNotifier) EncounterDone(result EncounterResult, stats Stats) {
	n.logger.Info("encounter done",
		slog.String("outcome", result.Outcome.String()),
		slog.Int("capture_attempts", result.CaptureAttempts),
		slog.Int("skills_used", result.SkillsUsed),
		slog.Duration("duration", result.Duration),
		slog.Int("encounters", stats.Encounters),
		slog.Int("captured", stats.Captured),
		slog.Float64("capture_rate", stats.CaptureRate()),
	)
}

// NopNotifier discards all events.
type NopNotifier struct{}

var _ Notifier = NopNotifier{}

func (NopNotifier) PhaseChanged(Phase, Phase)                           {}
func (NopNotifier) Measured(vision.Reading, RarityResult, Rating, bool) {}
func (NopNotifier) Decision(Rating, bool)                               {}
func (NopNotifier) EncounterDone(EncounterResult, Stats)                {}
