package battle

// Eligible decides whether a resolved rating qualifies for a capture
// attempt under the configured rules, and returns the governing rule. An
// unresolved rating is never eligible: when the measurement is unknown the
// encounter falls through to defeat rather than wasting capture items.
func Eligible(rules Rules, rating Rating, known bool) (Rule, bool) {
	if !known {
		return Rule{}, false
	}
	if rating.Rarity < 0 || rating.Rarity >= NumRarities {
		return Rule{}, false
	}
	rule := rules[rating.Rarity]
	if !rule.Enabled {
		return rule, false
	}
	if rule.AtOrBelow {
		// Floor inverted: capture only creatures no stronger than the
		// configured rating.
		return rule, rating.Tier.AtMost(rule.MinRating)
	}
	return rule, rating.Tier.AtLeast(rule.MinRating)
}
