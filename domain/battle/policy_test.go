package battle

import "testing"

func testRules(t *testing.T) Rules {
	t.Helper()
	var rules Rules
	rules[RarityRare] = Rule{
		Enabled:       true,
		MinRating:     TierA,
		DamageSkill:   2,
		CaptureSkill:  9,
		HPGatePercent: 45,
	}
	rules[RarityEpic] = Rule{
		Enabled:       true,
		MinRating:     TierB,
		AtOrBelow:     true,
		DamageSkill:   1,
		CaptureSkill:  10,
		HPGatePercent: 40,
	}
	return rules
}

func TestEligible(t *testing.T) {
	rules := testRules(t)
	cases := []struct {
		name   string
		rating Rating
		known  bool
		want   bool
	}{
		{name: "disabled rarity never eligible even at top tier", rating: Rating{TierSPlus, RarityCommon}, known: true, want: false},
		{name: "meets floor exactly", rating: Rating{TierA, RarityRare}, known: true, want: true},
		{name: "stronger than floor", rating: Rating{TierSPlus, RarityRare}, known: true, want: true},
		{name: "weaker than floor", rating: Rating{TierB, RarityRare}, known: true, want: false},
		{name: "at-or-below matches ceiling", rating: Rating{TierB, RarityEpic}, known: true, want: true},
		{name: "at-or-below matches weaker", rating: Rating{TierF, RarityEpic}, known: true, want: true},
		{name: "at-or-below rejects stronger", rating: Rating{TierAPlus, RarityEpic}, known: true, want: false},
		{name: "unknown rating never eligible", rating: Rating{TierSPlus, RarityRare}, known: false, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, got := Eligible(rules, tc.rating, tc.known)
			if got != tc.want {
				t.Errorf("Eligible(%v, known=%v) = %v, want %v", tc.rating, tc.known, got, tc.want)
			}
		})
	}
}

func TestEligibleReturnsGoverningRule(t *testing.T) {
	rules := testRules(t)
	rule, ok := Eligible(rules, Rating{TierA, RarityRare}, true)
	if !ok {
		t.Fatal("expected eligible")
	}
	if rule.CaptureSkill != 9 || rule.DamageSkill != 2 || rule.HPGatePercent != 45 {
		t.Errorf("governing rule = %+v", rule)
	}
}
