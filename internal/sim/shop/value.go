package shop

import (
	"math"
	"math/rand"
)

// EstimatedValue is the appraised market value shown to the player: base FMV
// scaled by demand/rarity/health, then perturbed by multiplicative noise.
// accuracyBonus in [0,1] shrinks the noise band; at 1 the result is exact.
func EstimatedValue(rng *rand.Rand, p *Plant, accuracyBonus float64) int {
	demandMult := 0.6 + float64(p.Traits.Demand)/200
	rarityMult := 0.75 + float64(p.Traits.Rarity)/200
	healthMult := 0.5 + float64(p.Traits.Health)/200

	estimated := float64(p.BaseFMV) * demandMult * rarityMult * healthMult

	varianceRange := 0.2 * (1 - accuracyBonus)
	if varianceRange > 0 {
		estimated *= 1 + (rng.Float64()-0.5)*varianceRange
	}

	return int(math.Round(estimated))
}

// ActualValue is the ground-truth worth used to settle transactions. It is
// never shown to the player before a sale. Fakes are near-worthless regardless
// of other problems; disease or pests discount an otherwise genuine plant; a
// rare variant premium stacks on top of either.
func ActualValue(rng *rand.Rand, p *Plant) int {
	value := float64(EstimatedValue(rng, p, 1))

	if p.HasCondition(FlagFake) {
		value *= 0.1 + rng.Float64()*0.2
	} else if p.HasCondition(FlagDiseased) || p.HasCondition(FlagPests) {
		value *= 0.4 + rng.Float64()*0.4
	}

	if p.HasCondition(FlagRareVariant) {
		value *= 1.3 + rng.Float64()*0.7
	}

	return int(math.Round(value))
}

// SalePrice is what a given customer would pay: actual value times their
// generosity, capped at their budget ceiling.
func SalePrice(rng *rand.Rand, p *Plant, c *Customer) int {
	price := int(math.Round(float64(ActualValue(rng, p)) * c.Generosity))
	if price > c.BudgetMax {
		price = c.BudgetMax
	}
	return price
}

// PropagationTime derives the slot duration for a plant: fast propagators and
// bench upgrades both shorten it.
func PropagationTime(p *Plant, benchLevel int, baseMs int64) int64 {
	speedFactor := 1 - float64(p.Traits.PropagationSpeed)/200
	upgradeReduction := float64(benchLevel) * 0.1
	return int64(math.Round(float64(baseMs) * speedFactor * (1 - upgradeReduction)))
}

// UpgradeCost is the price of buying the next level when currently at level.
func UpgradeCost(baseCost int, costMultiplier float64, level int) int {
	return int(math.Round(float64(baseCost) * math.Pow(costMultiplier, float64(level))))
}
