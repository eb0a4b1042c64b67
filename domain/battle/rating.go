package battle

import "math"

// baseRate is the capture-rate percentage of the strongest tier for a
// Common creature. Each weaker tier adds rateStep; rarer creatures shift
// the whole column down by rarityOffset.
const (
	baseRate = 13
	rateStep = 6

	// ratingTolerance bounds how far a measured percentage may sit from
	// the nearest table entry before the resolution is rejected.
	ratingTolerance = 3
)

var rarityOffset = [NumRarities]int{
	RarityCommon:    0,
	RarityRare:      -4,
	RarityEpic:      -7,
	RarityExotic:    -9,
	RarityLegendary: -11,
}

// captureRateFor returns the expected capture-rate percentage for a tier
// and rarity pair.
func captureRateFor(t Tier, r Rarity) int {
	return baseRate + rateStep*int(t) + rarityOffset[r]
}

// ResolveRating maps a measured capture-rate percentage to the nearest
// (tier, rarity) pair among the candidate rarities. Candidates are scanned
// strongest tier first and rarities in declaration order; a later pair
// replaces the current best only with a strictly smaller distance, so the
// strongest plausible rating wins ties. Resolution fails when no candidate
// lands within the tolerance.
func ResolveRating(percent float64, candidates []Rarity) (Rating, bool) {
	if len(candidates) == 0 {
		return Rating{}, false
	}
	best := Rating{}
	bestDist := math.Inf(1)
	for t := Tier(0); t < NumTiers; t++ {
		for _, r := range candidates {
			if r < 0 || r >= NumRarities {
				continue
			}
			d := math.Abs(percent - float64(captureRateFor(t, r)))
			if d < bestDist {
				bestDist = d
				best = Rating{Tier: t, Rarity: r}
			}
		}
	}
	if bestDist > ratingTolerance {
		return Rating{}, false
	}
	return best, true
}
