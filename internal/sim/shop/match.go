package shop

// Matches reports whether a displayed plant satisfies a customer: at least one
// preferred tag (when the customer has preferences), no avoided tag, and every
// stated trait minimum met.
func Matches(p *Plant, c *Customer) bool {
	if len(c.PreferredTags) > 0 {
		found := false
		for _, t := range c.PreferredTags {
			if p.hasTag(t) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	for _, t := range c.AvoidTags {
		if p.hasTag(t) {
			return false
		}
	}

	if c.MinRarity > 0 && p.Traits.Rarity < c.MinRarity {
		return false
	}
	if c.MinDemand > 0 && p.Traits.Demand < c.MinDemand {
		return false
	}
	if c.MinCareDifficulty > 0 && p.Traits.CareDifficulty < c.MinCareDifficulty {
		return false
	}

	return true
}
