package battle

import "testing"

func TestClassifyWedge(t *testing.T) {
	cases := []struct {
		name    string
		h, s, v float64
		want    Rarity
		atLeast float64
	}{
		{name: "desaturated bright wedge", h: 50, s: 20, v: 200, want: RarityCommon, atLeast: 0.9},
		{name: "blue wedge", h: 110, s: 150, v: 150, want: RarityRare, atLeast: 0.85},
		{name: "green wedge", h: 60, s: 150, v: 150, want: RarityEpic, atLeast: 0.85},
		{name: "gold wedge", h: 30, s: 150, v: 150, want: RarityLegendary, atLeast: 0.85},
		{name: "magenta wedge", h: 160, s: 150, v: 150, want: RarityExotic, atLeast: 0.8},
		{name: "deep red wedge", h: 5, s: 150, v: 150, want: RarityExotic, atLeast: 0.8},
		{name: "washed out fallback", h: 60, s: 42, v: 60, want: RarityCommon, atLeast: 0.5},
		{name: "off band green fallback", h: 90, s: 50, v: 150, want: RarityEpic, atLeast: 0.5},
		{name: "off band blue fallback", h: 140, s: 48, v: 150, want: RarityRare, atLeast: 0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, conf := classifyWedge(tc.h, tc.s, tc.v)
			if got != tc.want {
				t.Errorf("classifyWedge(%v,%v,%v) = %v, want %v", tc.h, tc.s, tc.v, got, tc.want)
			}
			if conf < tc.atLeast {
				t.Errorf("confidence = %v, want >= %v", conf, tc.atLeast)
			}
		})
	}
}

func TestFallbackPortrait(t *testing.T) {
	r := fallbackPortrait(400, 200)
	if r.Dx() != r.Dy() {
		t.Errorf("fallback portrait not square: %v", r)
	}
	if r.Dx() != 90 {
		t.Errorf("fallback size = %d, want 90 (45%% of min dimension)", r.Dx())
	}
	if r.Max.X != 400-10 {
		t.Errorf("fallback not inset 10 from right edge: %v", r)
	}

	// Tiny HUD still yields the 60px minimum, clamped to the region.
	r = fallbackPortrait(80, 80)
	if r.Dx() != 60 {
		t.Errorf("minimum fallback size = %d, want 60", r.Dx())
	}
	if r.Min.X < 0 {
		t.Errorf("fallback origin negative: %v", r)
	}
}
