package battle

import (
	"fmt"

	"github.com/soocke/critter-bot-go/config"
)

// Rule is the per-rarity capture policy with the rating floor parsed.
type Rule struct {
	Enabled       bool
	MinRating     Tier
	AtOrBelow     bool
	DamageSkill   int
	CaptureSkill  int
	HPGatePercent int
}

// Rules indexes the per-rarity policy by Rarity.
type Rules [NumRarities]Rule

// RulesFromConfig parses the configured rarity rules. Disabled rules pass
// through without a rating floor; enabled rules must name a valid tier.
func RulesFromConfig(cfg config.Rules) (Rules, error) {
	var out Rules
	pairs := []struct {
		rarity Rarity
		rule   config.RarityRule
	}{
		{RarityCommon, cfg.Common},
		{RarityRare, cfg.Rare},
		{RarityEpic, cfg.Epic},
		{RarityExotic, cfg.Exotic},
		{RarityLegendary, cfg.Legendary},
	}
	for _, p := range pairs {
		r := Rule{
			Enabled:       p.rule.Enabled,
			AtOrBelow:     p.rule.AtOrBelow,
			DamageSkill:   p.rule.DamageSkill,
			CaptureSkill:  p.rule.CaptureSkill,
			HPGatePercent: p.rule.HPGatePercent,
		}
		if p.rule.Enabled {
			tier, ok := ParseTier(p.rule.MinRating)
			if !ok {
				return Rules{}, fmt.Errorf("battle: rule for %s: unknown rating %q", p.rarity, p.rule.MinRating)
			}
			r.MinRating = tier
		}
		out[p.rarity] = r
	}
	return out, nil
}

// EnabledRarities returns the set of rarities with an enabled rule, in
// declaration order.
func (r Rules) EnabledRarities() []Rarity {
	var out []Rarity
	for i := Rarity(0); i < NumRarities; i++ {
		if r[i].Enabled {
			out = append(out, i)
		}
	}
	return out
}
