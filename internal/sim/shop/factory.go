package shop

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"

	"bloombroker.app/internal/sim/catalogs"
	"bloombroker.app/internal/sim/tuning"
)

// Factory instantiates plants, auctions and customer arrivals from the static
// catalogs. All randomness flows through the injected RNG so tests can pin a
// seed.
type Factory struct {
	Cats *catalogs.Catalogs
	Tune tuning.Tuning
	RNG  *rand.Rand
	Now  func() int64 // unix ms
}

func newID() string {
	return uuid.NewString()
}

func (f *Factory) RandomSeed() catalogs.PlantSeed {
	id := f.Cats.Plants.IDs[f.RNG.Intn(len(f.Cats.Plants.IDs))]
	return f.Cats.Plants.ByID[id]
}

func (f *Factory) RandomCustomer() *Customer {
	def := f.Cats.Customers.Defs[f.RNG.Intn(len(f.Cats.Customers.Defs))]
	return &Customer{
		ID:                newID(),
		Name:              def.Name,
		Archetype:         def.Archetype,
		PreferredTags:     append([]string(nil), def.PreferredTags...),
		AvoidTags:         append([]string(nil), def.AvoidTags...),
		MinRarity:         def.MinRarity,
		MinDemand:         def.MinDemand,
		MinCareDifficulty: def.MinCareDifficulty,
		BudgetMin:         def.BudgetMin,
		BudgetMax:         def.BudgetMax,
		Generosity:        def.Generosity,
	}
}

func (f *Factory) randomSeller() Seller {
	def := f.Cats.Sellers.Defs[f.RNG.Intn(len(f.Cats.Sellers.Defs))]
	return Seller{
		ID:           def.ID,
		Name:         def.Name,
		Persona:      def.Persona,
		Honesty:      def.Honesty,
		PricingStyle: def.PricingStyle,
		Specialties:  append([]string(nil), def.Specialties...),
	}
}

func (f *Factory) randomVariant() string {
	return f.Cats.Variants.Names[f.RNG.Intn(len(f.Cats.Variants.Names))]
}

// NewPlant rolls a fresh instance from a seed. Disease and pests are mutually
// exclusive: the pest roll only happens when the disease roll missed. Rare
// variant and fake roll independently and may co-occur with anything.
// Starter plants are fully disclosed; market and propagation stock keeps the
// negative/rare rolls hidden until inspected.
func (f *Factory) NewPlant(seed catalogs.PlantSeed, method AcquireMethod) *Plant {
	health := int(math.Round(60 + f.RNG.Float64()*40))

	flags := []ConditionFlag{FlagHealthy}
	var hidden []ConditionFlag

	if f.RNG.Float64() < 0.10 {
		hidden = append(hidden, FlagDiseased)
		flags = flags[:0]
	} else if f.RNG.Float64() < 0.08 {
		hidden = append(hidden, FlagPests)
		flags = flags[:0]
	}

	if f.RNG.Float64() < 0.05 {
		hidden = append(hidden, FlagRareVariant)
	}
	if f.RNG.Float64() < 0.07 {
		hidden = append(hidden, FlagFake)
	}

	variant := ""
	tags := append([]string(nil), seed.Tags...)
	for _, h := range hidden {
		if h == FlagRareVariant {
			variant = f.randomVariant()
			tags = append(tags, "rare", "variegated")
		}
	}

	condition := append(append([]ConditionFlag(nil), flags...), hidden...)
	discovered := append([]ConditionFlag(nil), flags...)
	if method == AcquireStarter {
		discovered = append([]ConditionFlag(nil), condition...)
	}

	return &Plant{
		SeedID:     seed.ID,
		InstanceID: newID(),
		Name:       seed.Name,
		Family:     seed.Family,
		Genus:      seed.Genus,
		Species:    seed.Species,
		Variant:    variant,
		Tags:       tags,
		Traits: Traits{
			Rarity:           seed.BaseTraits.Rarity,
			Demand:           seed.BaseTraits.Demand,
			CareDifficulty:   seed.BaseTraits.CareDifficulty,
			PropagationSpeed: seed.BaseTraits.PropagationSpeed,
			Health:           health,
		},
		BaseFMV:         seed.BaseFMV,
		ConditionFlags:  condition,
		DiscoveredFlags: discovered,
		AcquiredMethod:  method,
		AcquiredAtMs:    f.Now(),
	}
}

// NewAuction pairs a random seller with a fresh market plant. The seller
// always claims "healthy" when true; each other true flag is disclosed only
// with probability equal to the seller's honesty.
func (f *Factory) NewAuction() *Auction {
	seller := f.randomSeller()
	plant := f.NewPlant(f.RandomSeed(), AcquireAuction)

	var claimed []ConditionFlag
	for _, flag := range plant.ConditionFlags {
		if flag == FlagHealthy || f.RNG.Float64() < seller.Honesty {
			claimed = append(claimed, flag)
		}
	}

	basePrice := float64(EstimatedValue(f.RNG, plant, 0))
	switch seller.PricingStyle {
	case "below":
		basePrice *= 0.7 + f.RNG.Float64()*0.2
	case "above":
		basePrice *= 1.1 + f.RNG.Float64()*0.3
	default:
		basePrice *= 0.9 + f.RNG.Float64()*0.2
	}

	return &Auction{
		ID:                newID(),
		Plant:             plant,
		Seller:            seller,
		AskingPrice:       int(math.Round(basePrice)),
		ClaimedConditions: claimed,
		StartMs:           f.Now(),
		DurationMs:        int64(f.Tune.AuctionDurationMs),
	}
}

// Propagate derives a new instance from the parent's own seed. Offspring is
// fully disclosed (no hidden surprises on your own stock) and healthier than
// market stock, with a small extra mutation chance for a rare variant. A
// missing seed id means the catalog and the instance have desynced; that is a
// broken invariant, not something to paper over.
func (f *Factory) Propagate(parent *Plant) (*Plant, error) {
	seed, ok := f.Cats.Plants.ByID[parent.SeedID]
	if !ok {
		return nil, fmt.Errorf("propagate: seed %q not in catalog", parent.SeedID)
	}

	offspring := f.NewPlant(seed, AcquirePropagation)

	if f.RNG.Float64() < f.Tune.MutationChance && !offspring.HasCondition(FlagRareVariant) {
		offspring.ConditionFlags = append(offspring.ConditionFlags, FlagRareVariant)
		offspring.Variant = f.randomVariant()
		offspring.Tags = append(offspring.Tags, "rare", "variegated")
	}

	offspring.DiscoveredFlags = append([]ConditionFlag(nil), offspring.ConditionFlags...)
	offspring.Traits.Health = int(math.Round(90 + f.RNG.Float64()*10))

	return offspring, nil
}
