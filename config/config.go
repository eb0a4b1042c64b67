package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// ROI is a fixed rectangular sub-region of the captured viewport, in client
// coordinates relative to the viewport origin.
type ROI struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Zero reports whether the ROI is unset.
func (r ROI) Zero() bool { return r.W <= 0 || r.H <= 0 }

// Point is a click target in viewport client coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// RarityRule configures the capture decision for one rarity.
// MinRating names the weakest acceptable rating tier; with AtOrBelow set the
// rule instead accepts that tier and everything weaker than it.
type RarityRule struct {
	Enabled       bool   `json:"enabled"`
	MinRating     string `json:"min_rating"`
	AtOrBelow     bool   `json:"at_or_below"`
	DamageSkill   int    `json:"damage_skill"`
	CaptureSkill  int    `json:"capture_skill"`
	HPGatePercent int    `json:"hp_gate_percent"` // 0 = use the global gate
}

// Rules holds one RarityRule per rarity.
type Rules struct {
	Common    RarityRule `json:"common"`
	Rare      RarityRule `json:"rare"`
	Epic      RarityRule `json:"epic"`
	Exotic    RarityRule `json:"exotic"`
	Legendary RarityRule `json:"legendary"`
}

// Bindings are the click targets the action sink translates intents into.
type Bindings struct {
	SkillSlots []Point `json:"skill_slots"` // one per visible slot, length = PageSize
	PageNext   Point   `json:"page_next"`
	PagePrev   Point   `json:"page_prev"`
	Capture    Point   `json:"capture"`
	Continue   Point   `json:"continue"`
	Keep       Point   `json:"keep"`
}

// Config is the full runtime configuration. It is loaded once at session
// start and treated as immutable afterwards.
type Config struct {
	Debug bool `json:"debug"`

	// Window binding
	ProcessName string `json:"process_name"`
	WindowTitle string `json:"window_title"`

	// Vision
	TemplateDir     string  `json:"template_dir"`
	AnchorTemplate  string  `json:"anchor_template"`
	AnchorThreshold float64 `json:"anchor_threshold"`
	SpotTemplate    string  `json:"spot_template"`
	SpotThreshold   float64 `json:"spot_threshold"`
	HPBarROI        ROI     `json:"hp_bar_roi"`
	CaptureRateROI  ROI     `json:"capture_rate_roi"`
	OCREnabled      bool    `json:"ocr_enabled"`
	RequireOCRWords bool    `json:"require_ocr_words"`

	// Battle behavior
	SkillCount       int  `json:"skill_count"`
	PageSize         int  `json:"page_size"`
	DefeatSkill      int  `json:"defeat_skill"`
	CaptureHPPercent int  `json:"capture_hp_percent"`
	CaptureAttempts  int  `json:"capture_attempts"`
	ChipAttemptCap   int  `json:"chip_attempt_cap"`
	DefeatAttemptCap int  `json:"defeat_attempt_cap"`
	DefeatChecked    bool `json:"defeat_checked"`

	// Timing (seconds / milliseconds)
	WaitTurnTimeoutSeconds int `json:"wait_turn_timeout_seconds"`
	WaitEndTimeoutSeconds  int `json:"wait_end_timeout_seconds"`
	CooldownSeconds        int `json:"cooldown_seconds"`
	CheckIntervalSearchMS  int `json:"check_interval_search_ms"`
	CheckIntervalBattleMS  int `json:"check_interval_battle_ms"`
	ActionDelayMS          int `json:"action_delay_ms"`

	Rules    Rules    `json:"rules"`
	Bindings Bindings `json:"bindings"`
}

// DefaultConfig returns a Config with sane tuning defaults. Required fields
// (window binding, ROIs, bindings) are intentionally left empty; Validate
// rejects a config that never filled them.
func DefaultConfig() *Config {
	return &Config{
		AnchorTemplate:         "run_button.png",
		AnchorThreshold:        0.60,
		SpotThreshold:          0.82,
		SkillCount:             12,
		PageSize:               4,
		DefeatSkill:            1,
		CaptureHPPercent:       45,
		CaptureAttempts:        3,
		ChipAttemptCap:         15,
		DefeatAttemptCap:       10,
		WaitTurnTimeoutSeconds: 20,
		WaitEndTimeoutSeconds:  15,
		CooldownSeconds:        25,
		CheckIntervalSearchMS:  1000,
		CheckIntervalBattleMS:  2000,
		ActionDelayMS:          120,
	}
}

// Load reads configuration from the given JSON file path on top of defaults
// and validates it. Unlike tuning knobs, missing required fields are an
// error here rather than a silent default deep in decision logic.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// Validate checks required fields and clamps tuning knobs to safe ranges.
// Required fields that are missing produce an error naming the field.
func (c *Config) Validate() error {
	if c.ProcessName == "" && c.WindowTitle == "" {
		return fmt.Errorf("config: process_name or window_title is required")
	}
	if c.HPBarROI.Zero() {
		return fmt.Errorf("config: hp_bar_roi is required")
	}
	if c.CaptureRateROI.Zero() {
		return fmt.Errorf("config: capture_rate_roi is required")
	}
	if c.SkillCount <= 0 || c.PageSize <= 0 {
		return fmt.Errorf("config: skill_count and page_size must be positive")
	}
	if len(c.Bindings.SkillSlots) != c.PageSize {
		return fmt.Errorf("config: bindings.skill_slots must have exactly %d entries, got %d",
			c.PageSize, len(c.Bindings.SkillSlots))
	}
	for _, p := range []struct {
		name string
		pt   Point
	}{
		{"page_next", c.Bindings.PageNext},
		{"page_prev", c.Bindings.PagePrev},
		{"capture", c.Bindings.Capture},
		{"continue", c.Bindings.Continue},
		{"keep", c.Bindings.Keep},
	} {
		if p.pt == (Point{}) {
			return fmt.Errorf("config: bindings.%s is required", p.name)
		}
	}
	if c.DefeatSkill < 1 || c.DefeatSkill > c.SkillCount {
		return fmt.Errorf("config: defeat_skill %d out of range 1..%d", c.DefeatSkill, c.SkillCount)
	}
	for name, r := range map[string]RarityRule{
		"common": c.Rules.Common, "rare": c.Rules.Rare, "epic": c.Rules.Epic,
		"exotic": c.Rules.Exotic, "legendary": c.Rules.Legendary,
	} {
		if !r.Enabled {
			continue
		}
		if r.MinRating == "" {
			return fmt.Errorf("config: rules.%s.min_rating is required when enabled", name)
		}
		if r.DamageSkill < 1 || r.DamageSkill > c.SkillCount {
			return fmt.Errorf("config: rules.%s.damage_skill %d out of range 1..%d", name, r.DamageSkill, c.SkillCount)
		}
		if r.CaptureSkill < 0 || r.CaptureSkill > c.SkillCount {
			return fmt.Errorf("config: rules.%s.capture_skill %d out of range 0..%d", name, r.CaptureSkill, c.SkillCount)
		}
	}

	// Tuning knobs get clamped, not rejected.
	if c.AnchorThreshold <= 0 || c.AnchorThreshold > 1 {
		c.AnchorThreshold = 0.60
	}
	if c.SpotThreshold <= 0 || c.SpotThreshold > 1 {
		c.SpotThreshold = 0.82
	}
	if c.CaptureHPPercent < 1 || c.CaptureHPPercent > 99 {
		c.CaptureHPPercent = 45
	}
	if c.CaptureAttempts < 1 {
		c.CaptureAttempts = 1
	}
	if c.CaptureAttempts > 5 {
		c.CaptureAttempts = 5
	}
	if c.ChipAttemptCap < 1 {
		c.ChipAttemptCap = 15
	}
	if c.DefeatAttemptCap < 1 {
		c.DefeatAttemptCap = 10
	}
	if c.WaitTurnTimeoutSeconds <= 0 {
		c.WaitTurnTimeoutSeconds = 20
	}
	if c.WaitEndTimeoutSeconds <= 0 {
		c.WaitEndTimeoutSeconds = 15
	}
	if c.CooldownSeconds < 0 {
		c.CooldownSeconds = 0
	}
	if c.CheckIntervalSearchMS <= 0 {
		c.CheckIntervalSearchMS = 1000
	}
	if c.CheckIntervalBattleMS <= 0 {
		c.CheckIntervalBattleMS = 2000
	}
	if c.ActionDelayMS < 0 {
		c.ActionDelayMS = 120
	}
	return nil
}
