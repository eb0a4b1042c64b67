package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.ProcessName = "Critters.exe"
	cfg.WindowTitle = "Critters"
	cfg.HPBarROI = ROI{X: 700, Y: 90, W: 260, H: 14}
	cfg.CaptureRateROI = ROI{X: 700, Y: 120, W: 120, H: 28}
	cfg.Bindings = Bindings{
		SkillSlots: []Point{{X: 200, Y: 640}, {X: 340, Y: 640}, {X: 480, Y: 640}, {X: 620, Y: 640}},
		PageNext:   Point{X: 700, Y: 640},
		PagePrev:   Point{X: 120, Y: 640},
		Capture:    Point{X: 820, Y: 560},
		Continue:   Point{X: 512, Y: 600},
		Keep:       Point{X: 512, Y: 520},
	}
	cfg.Rules.Common = RarityRule{Enabled: true, MinRating: "A", DamageSkill: 5, CaptureSkill: 2}
	return cfg
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no window binding", func(c *Config) { c.ProcessName = ""; c.WindowTitle = "" }},
		{"no hp roi", func(c *Config) { c.HPBarROI = ROI{} }},
		{"no capture rate roi", func(c *Config) { c.CaptureRateROI = ROI{} }},
		{"slot count mismatch", func(c *Config) { c.Bindings.SkillSlots = c.Bindings.SkillSlots[:2] }},
		{"no continue binding", func(c *Config) { c.Bindings.Continue = Point{} }},
		{"enabled rule without min rating", func(c *Config) { c.Rules.Common.MinRating = "" }},
		{"damage skill out of range", func(c *Config) { c.Rules.Common.DamageSkill = 13 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestValidate_ClampsTuningKnobs(t *testing.T) {
	cfg := validConfig()
	cfg.AnchorThreshold = 7
	cfg.CaptureAttempts = 99
	cfg.CheckIntervalSearchMS = -5
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AnchorThreshold != 0.60 {
		t.Errorf("anchor threshold not clamped: %v", cfg.AnchorThreshold)
	}
	if cfg.CaptureAttempts != 5 {
		t.Errorf("capture attempts not clamped: %d", cfg.CaptureAttempts)
	}
	if cfg.CheckIntervalSearchMS != 1000 {
		t.Errorf("search interval not clamped: %d", cfg.CheckIntervalSearchMS)
	}
}

func TestLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := validConfig().Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SkillCount != 12 || cfg.PageSize != 4 {
		t.Errorf("unexpected skill layout: %d/%d", cfg.SkillCount, cfg.PageSize)
	}
	if !cfg.Rules.Common.Enabled || cfg.Rules.Common.MinRating != "A" {
		t.Errorf("rules did not round-trip: %+v", cfg.Rules.Common)
	}
}

func TestLoad_MissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidConfigFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"process_name":"Critters.exe"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for incomplete config")
	}
}
