package shop

import (
	"math/rand"
	"testing"

	"bloombroker.app/internal/sim/catalogs"
	"bloombroker.app/internal/sim/tuning"
)

func testCatalogs(t *testing.T) *catalogs.Catalogs {
	t.Helper()
	cats, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	return cats
}

func testFactory(t *testing.T, seed int64) *Factory {
	t.Helper()
	return &Factory{
		Cats: testCatalogs(t),
		Tune: tuning.Defaults(),
		RNG:  rand.New(rand.NewSource(seed)),
		Now:  func() int64 { return 1_700_000_000_000 },
	}
}

func hasFlag(flags []ConditionFlag, f ConditionFlag) bool {
	for _, c := range flags {
		if c == f {
			return true
		}
	}
	return false
}

func TestNewPlant_DiscoveredSubsetOfCondition(t *testing.T) {
	f := testFactory(t, 1)
	for i := 0; i < 500; i++ {
		p := f.NewPlant(f.RandomSeed(), AcquireAuction)
		for _, d := range p.DiscoveredFlags {
			if !hasFlag(p.ConditionFlags, d) {
				t.Fatalf("discovered flag %q not in condition set %v", d, p.ConditionFlags)
			}
		}
		if p.Traits.Health < 60 || p.Traits.Health > 100 {
			t.Fatalf("health %d outside [60,100]", p.Traits.Health)
		}
		if hasFlag(p.ConditionFlags, FlagDiseased) && hasFlag(p.ConditionFlags, FlagPests) {
			t.Fatalf("diseased and pests rolled together")
		}
	}
}

func TestNewPlant_NegativeRollsStayHiddenOnMarketStock(t *testing.T) {
	f := testFactory(t, 2)
	sawHidden := false
	for i := 0; i < 500; i++ {
		p := f.NewPlant(f.RandomSeed(), AcquireAuction)
		for _, flag := range []ConditionFlag{FlagDiseased, FlagPests, FlagFake, FlagRareVariant} {
			if p.HasCondition(flag) {
				sawHidden = true
				if p.HasDiscovered(flag) {
					t.Fatalf("market plant discloses %q up front", flag)
				}
			}
		}
	}
	if !sawHidden {
		t.Fatalf("500 rolls produced no hidden flags; factory odds broken")
	}
}

func TestNewPlant_StarterFullyDisclosed(t *testing.T) {
	f := testFactory(t, 3)
	for i := 0; i < 200; i++ {
		p := f.NewPlant(f.RandomSeed(), AcquireStarter)
		if len(p.DiscoveredFlags) != len(p.ConditionFlags) {
			t.Fatalf("starter discovered %v != condition %v", p.DiscoveredFlags, p.ConditionFlags)
		}
	}
}

func TestNewPlant_RareVariantGetsNameAndTags(t *testing.T) {
	f := testFactory(t, 4)
	found := false
	for i := 0; i < 1000; i++ {
		p := f.NewPlant(f.RandomSeed(), AcquireAuction)
		if !p.HasCondition(FlagRareVariant) {
			continue
		}
		found = true
		if p.Variant == "" {
			t.Fatalf("rare variant without variant name")
		}
		if !p.hasTag("rare") || !p.hasTag("variegated") {
			t.Fatalf("rare variant missing marker tags: %v", p.Tags)
		}
	}
	if !found {
		t.Fatalf("no rare variant in 1000 rolls at 5%% odds")
	}
}

func TestNewAuction_ClaimsNeverInventFlags(t *testing.T) {
	f := testFactory(t, 5)
	for i := 0; i < 300; i++ {
		a := f.NewAuction()
		for _, c := range a.ClaimedConditions {
			if !a.Plant.HasCondition(c) {
				t.Fatalf("seller claimed %q which the plant does not have", c)
			}
		}
		if a.Plant.HasCondition(FlagHealthy) && !hasFlag(a.ClaimedConditions, FlagHealthy) {
			t.Fatalf("healthy never withheld, but claim set was %v", a.ClaimedConditions)
		}
		if a.AskingPrice < 0 {
			t.Fatalf("negative asking price %d", a.AskingPrice)
		}
	}
}

func TestPropagate_FreshIdentityFullTransparency(t *testing.T) {
	f := testFactory(t, 6)
	parent := f.NewPlant(f.Cats.Plants.ByID["monstera_deliciosa"], AcquireAuction)

	child, err := f.Propagate(parent)
	if err != nil {
		t.Fatalf("propagate: %v", err)
	}
	if child.InstanceID == parent.InstanceID {
		t.Fatalf("offspring shares parent instance id")
	}
	if child.SeedID != parent.SeedID {
		t.Fatalf("offspring seed %q, want parent's %q", child.SeedID, parent.SeedID)
	}
	if len(child.DiscoveredFlags) != len(child.ConditionFlags) {
		t.Fatalf("offspring not fully disclosed: %v vs %v", child.DiscoveredFlags, child.ConditionFlags)
	}
	if child.Traits.Health < 90 || child.Traits.Health > 100 {
		t.Fatalf("offspring health %d outside [90,100]", child.Traits.Health)
	}
}

func TestPropagate_UnknownSeedFails(t *testing.T) {
	f := testFactory(t, 7)
	parent := f.NewPlant(f.RandomSeed(), AcquireAuction)
	parent.SeedID = "does_not_exist"

	if _, err := f.Propagate(parent); err == nil {
		t.Fatalf("expected error for seed missing from catalog")
	}
}

func TestPropagate_MutationRate(t *testing.T) {
	f := testFactory(t, 8)
	f.Tune.MutationChance = 0.5 // crank it so the signal is cheap to measure

	parent := f.NewPlant(f.Cats.Plants.ByID["snake_plant"], AcquireAuction)

	variants := 0
	const trials = 1000
	for i := 0; i < trials; i++ {
		child, err := f.Propagate(parent)
		if err != nil {
			t.Fatalf("propagate: %v", err)
		}
		if child.HasCondition(FlagRareVariant) {
			variants++
		}
	}
	// Natural 5% roll plus 50% mutation on the rest: about 52.5%.
	rate := float64(variants) / trials
	if rate < 0.45 || rate > 0.62 {
		t.Fatalf("variant rate %.3f outside expected band", rate)
	}
}
