package battle

import (
	"image"
	"log/slog"
	"time"

	"gocv.io/x/gocv"

	"github.com/soocke/critter-bot-go/config"
	"github.com/soocke/critter-bot-go/domain/vision"
)

// Signal regions and thresholds. The anchor (run button) is searched in the
// bottom-left third of the viewport; the skill tiles sit in the bottom band.
// Banner signals are hue-ratio tests over fixed center regions.
const (
	anchorRegionXFrac = 0.33
	anchorRegionYFrac = 0.66

	tilesXLo, tilesXHi = 0.05, 0.95
	tilesYLo, tilesYHi = 0.80, 1.00

	tileMinArea      = 800.0
	tileMinAspect    = 1.6
	tileMaxAspect    = 6.5
	tileMinFill      = 0.5
	tilesMinCount    = 3
	tilesMinCoverage = 0.01

	turnTextFloor  = 0.70
	itemsTextFloor = 0.80

	victoryRatioFloor = 0.18
	defeatRatioFloor  = 0.18
	dialogRatioFloor  = 0.25
	successRatioFloor = 0.20
)

var anchorScales = []float64{1.0, 0.9, 1.1, 0.8, 1.2}

// Signals is the per-frame breakdown the classifier works from.
type Signals struct {
	AnchorScore float64
	AnchorFound bool

	TileCount    int
	TileCoverage float64

	TurnOK   bool
	TurnConf float64

	VictoryRatio        float64
	DefeatRatio         float64
	CaptureDialogRatio  float64
	CaptureSuccessRatio float64
}

// tilesOK reports whether the skill-tile cluster is present.
func (s Signals) tilesOK() bool {
	return s.TileCount >= tilesMinCount && s.TileCoverage >= tilesMinCoverage
}

// Classify maps a signal breakdown to a raw phase and a confidence score.
// The anchor gates the battle family: without it the frame is never
// classified as any in-battle phase, whatever the other signals say.
func Classify(s Signals) (Phase, float64) {
	if !s.AnchorFound {
		return PhaseNotInBattle, 1 - s.AnchorScore
	}
	conf := s.AnchorScore
	switch {
	case s.CaptureSuccessRatio >= successRatioFloor:
		return PhaseCaptureSuccess, conf
	case s.CaptureDialogRatio >= dialogRatioFloor:
		return PhaseCaptureAttempt, conf
	case s.VictoryRatio >= victoryRatioFloor:
		return PhaseWon, conf
	case s.DefeatRatio >= defeatRatioFloor:
		return PhaseLost, conf
	case !s.tilesOK():
		// Battle HUD is coming up but the skill bar is not drawn yet.
		return PhaseStarting, conf * 0.8
	case s.TurnOK:
		return PhaseTurnReady, conf
	default:
		return PhaseAwaitingTurn, conf
	}
}

// Tracker applies hysteresis over raw classifications: a phase change
// commits only after requiredStreak identical raw detections, so a single
// inconsistent frame never flips the committed phase.
type Tracker struct {
	requiredStreak int

	committed Phase
	candidate Phase
	streak    int
	enteredAt time.Time
}

// NewTracker builds a tracker committing after n consecutive detections.
func NewTracker(n int) *Tracker {
	if n < 1 {
		n = 1
	}
	return &Tracker{requiredStreak: n, committed: PhaseNotInBattle}
}

// Reset clears the hysteresis state for a new encounter.
func (t *Tracker) Reset(now time.Time) {
	t.committed = PhaseNotInBattle
	t.candidate = PhaseNotInBattle
	t.streak = 0
	t.enteredAt = now
}

// Phase returns the committed phase.
func (t *Tracker) Phase() Phase { return t.committed }

// InPhaseFor returns how long the committed phase has held.
func (t *Tracker) InPhaseFor(now time.Time) time.Duration {
	if t.enteredAt.IsZero() {
		return 0
	}
	return now.Sub(t.enteredAt)
}

// Observe folds one raw detection in and returns the committed phase.
// Encounters never open directly on a capture or end phase: from
// NotInBattle such a raw detection is treated as Starting.
func (t *Tracker) Observe(raw Phase, now time.Time) Phase {
	if t.committed == PhaseNotInBattle && raw.InBattle() {
		switch raw {
		case PhaseCaptureAttempt, PhaseCaptureSuccess, PhaseWon, PhaseLost:
			raw = PhaseStarting
		}
	}
	if raw == t.candidate {
		t.streak++
	} else {
		t.candidate = raw
		t.streak = 1
	}
	if t.candidate != t.committed && t.streak >= t.requiredStreak {
		t.committed = t.candidate
		t.enteredAt = now
	}
	return t.committed
}

// DetectionResult is one detector tick: the committed phase plus the raw
// classification it was derived from.
type DetectionResult struct {
	Phase      Phase
	Raw        Phase
	Confidence float64
	Signals    Signals
	InPhaseFor time.Duration
}

// Detector classifies frames into battle phases. It owns a hysteresis
// tracker; callers reset it at encounter boundaries.
type Detector struct {
	logger    *slog.Logger
	cfg       *config.Config
	templates *vision.TemplateStore
	ocr       *vision.OCR
	tracker   *Tracker
}

// NewDetector wires the detector. ocr may be a disabled wrapper; the turn
// signal then falls back to the banner hue test alone.
func NewDetector(logger *slog.Logger, cfg *config.Config, templates *vision.TemplateStore, ocr *vision.OCR) *Detector {
	return &Detector{
		logger:    logger,
		cfg:       cfg,
		templates: templates,
		ocr:       ocr,
		tracker:   NewTracker(2),
	}
}

// Reset clears hysteresis at an encounter boundary.
func (d *Detector) Reset(now time.Time) { d.tracker.Reset(now) }

// Phase returns the committed phase without taking a new frame.
func (d *Detector) Phase() Phase { return d.tracker.Phase() }

// Detect measures one frame, classifies it, and advances the tracker.
func (d *Detector) Detect(frame *vision.Frame) (DetectionResult, error) {
	mat, err := vision.MatFromFrame(frame)
	if err != nil {
		return DetectionResult{}, err
	}
	defer mat.Close()

	now := frame.CapturedAt
	if now.IsZero() {
		now = time.Now()
	}

	sig := d.measure(mat, frame)
	raw, conf := Classify(sig)
	committed := d.tracker.Observe(raw, now)

	res := DetectionResult{
		Phase:      committed,
		Raw:        raw,
		Confidence: conf,
		Signals:    sig,
		InPhaseFor: d.tracker.InPhaseFor(now),
	}
	d.logger.Debug("phase detected",
		slog.String("phase", committed.String()),
		slog.String("raw", raw.String()),
		slog.Float64("confidence", conf),
		slog.Float64("anchor", sig.AnchorScore),
		slog.Int("tiles", sig.TileCount),
	)
	return res, nil
}

func (d *Detector) measure(mat gocv.Mat, frame *vision.Frame) Signals {
	bounds := image.Rect(0, 0, mat.Cols(), mat.Rows())
	var sig Signals

	sig.AnchorScore, sig.AnchorFound = d.findAnchor(mat, bounds)
	if !sig.AnchorFound {
		return sig
	}

	sig.TileCount, sig.TileCoverage = d.findTiles(mat, bounds)
	sig.TurnOK, sig.TurnConf = d.turnSignal(mat, bounds, frame)

	// Banner hue ratios over the upper-center and center regions.
	if top, ok := vision.CropROI(mat, vision.RelROI(bounds, 0.30, 0.10, 0.70, 0.30)); ok {
		sig.VictoryRatio = vision.HueRatio(top, vision.HueRange{HLo: 20, HHi: 35, SLo: 120, VLo: 120})
		sig.DefeatRatio = vision.HueRatio(top,
			vision.HueRange{HLo: 0, HHi: 10, SLo: 120, VLo: 100},
			vision.HueRange{HLo: 160, HHi: 180, SLo: 120, VLo: 100})
		top.Close()
	}
	if center, ok := vision.CropROI(mat, vision.RelROI(bounds, 0.30, 0.30, 0.70, 0.70)); ok {
		sig.CaptureDialogRatio = vision.HueRatio(center, vision.HueRange{HLo: 95, HHi: 130, SLo: 100, VLo: 100})
		sig.CaptureSuccessRatio = vision.HueRatio(center, vision.HueRange{HLo: 35, HHi: 85, SLo: 100, VLo: 100})
		center.Close()
	}
	return sig
}

// findAnchor template-matches the run button over the bottom-left third at
// several scales and returns the best score.
func (d *Detector) findAnchor(mat gocv.Mat, bounds image.Rectangle) (float64, bool) {
	tpl, ok := d.templates.Get(d.cfg.AnchorTemplate)
	if !ok {
		// Missing template degrades only this signal.
		return 0, false
	}
	region, ok := vision.CropROI(mat, vision.RelROI(bounds, 0, anchorRegionYFrac, anchorRegionXFrac, 1))
	if !ok {
		return 0, false
	}
	defer region.Close()

	best := 0.0
	for _, scale := range anchorScales {
		scaled := tpl
		owned := false
		if scale != 1.0 {
			w := int(float64(tpl.Cols()) * scale)
			h := int(float64(tpl.Rows()) * scale)
			if w < 10 || h < 10 {
				continue
			}
			scaled = gocv.NewMat()
			gocv.Resize(tpl, &scaled, image.Pt(w, h), 0, 0, gocv.InterpolationLinear)
			owned = true
		}
		score, _, fits := vision.MatchTemplate(region, scaled)
		if owned {
			scaled.Close()
		}
		if fits && score > best {
			best = score
		}
	}
	return best, best >= d.cfg.AnchorThreshold
}

// findTiles counts rectangle-like contours in the skill-bar band.
func (d *Detector) findTiles(mat gocv.Mat, bounds image.Rectangle) (int, float64) {
	roi := vision.RelROI(bounds, tilesXLo, tilesYLo, tilesXHi, tilesYHi)
	region, ok := vision.CropROI(mat, roi)
	if !ok {
		return 0, 0
	}
	defer region.Close()

	total := float64(roi.Dx() * roi.Dy())
	count := 0
	area := 0.0
	for _, b := range vision.EdgeBoxes(region) {
		boxArea := float64(b.Rect.Dx() * b.Rect.Dy())
		if boxArea < tileMinArea {
			continue
		}
		aspect := float64(b.Rect.Dx()) / float64(max(1, b.Rect.Dy()))
		if aspect < tileMinAspect || aspect > tileMaxAspect {
			continue
		}
		if b.Fill < tileMinFill {
			continue
		}
		count++
		area += boxArea
	}
	coverage := 0.0
	if total > 0 {
		coverage = area / total
	}
	return count, coverage
}

// turnSignal combines optional OCR of the skill band with a gold-banner hue
// test. OCR confirms "its your turn"; the hue test alone carries a lower
// confidence.
func (d *Detector) turnSignal(mat gocv.Mat, bounds image.Rectangle, frame *vision.Frame) (bool, float64) {
	if d.cfg.OCREnabled && d.ocr.Available() && frame != nil && frame.Img != nil {
		roi := vision.RelROI(bounds, tilesXLo, tilesYLo, tilesXHi, tilesYHi)
		crop := frame.Img.SubImage(roi)
		if text, err := d.ocr.ReadWords(crop); err == nil {
			turn := vision.ContainsSimilar(text, "its your turn")
			items := vision.ContainsSimilar(text, "items")
			if turn >= turnTextFloor {
				return true, turn
			}
			if d.cfg.RequireOCRWords && items < itemsTextFloor {
				return false, turn
			}
		}
	}
	banner, ok := vision.CropROI(mat, vision.RelROI(bounds, 0.25, 0.70, 0.75, 0.80))
	if !ok {
		return false, 0
	}
	defer banner.Close()
	ratio := vision.HueRatio(banner, vision.HueRange{HLo: 20, HHi: 35, SLo: 120, VLo: 140})
	return ratio >= 0.04, ratio
}
