package vision

import "testing"

func TestSimilarity(t *testing.T) {
	cases := []struct {
		name    string
		a, b    string
		atLeast float64
		below   float64
	}{
		{name: "identical", a: "its your turn", b: "its your turn", atLeast: 1},
		{name: "case and spacing ignored", a: "ITS  Your   Turn", b: "its your turn", atLeast: 1},
		{name: "ocr mangled phrase", a: "lts yuur turn", b: "its your turn", atLeast: 0.7},
		{name: "unrelated text", a: "inventory", b: "its your turn", below: 0.5},
		{name: "both empty", a: "", b: "", atLeast: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Similarity(tc.a, tc.b)
			if got < tc.atLeast {
				t.Errorf("Similarity(%q, %q) = %v, want >= %v", tc.a, tc.b, got, tc.atLeast)
			}
			if tc.below > 0 && got >= tc.below {
				t.Errorf("Similarity(%q, %q) = %v, want < %v", tc.a, tc.b, got, tc.below)
			}
		})
	}
}

func TestContainsSimilar(t *testing.T) {
	got := ContainsSimilar("battle hud lts your turn attack", "its your turn")
	if got < 0.8 {
		t.Errorf("ContainsSimilar = %v, want >= 0.8", got)
	}
	got = ContainsSimilar("completely different words here", "its your turn")
	if got >= 0.7 {
		t.Errorf("ContainsSimilar on unrelated text = %v, want < 0.7", got)
	}
}

func TestKnownPercentClamps(t *testing.T) {
	if r := KnownPercent(-3); r.Percent != 0 || !r.Known {
		t.Errorf("KnownPercent(-3) = %+v", r)
	}
	if r := KnownPercent(140); r.Percent != 100 || !r.Known {
		t.Errorf("KnownPercent(140) = %+v", r)
	}
	if r := Unknown(); r.Known {
		t.Errorf("Unknown() = %+v, want Known=false", r)
	}
}
