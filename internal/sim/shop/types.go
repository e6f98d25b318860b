package shop

// ConditionFlag is a per-instance truth about a plant. Negative flags and
// rareVariant start hidden on market stock and are surfaced by inspection.
type ConditionFlag string

const (
	FlagHealthy     ConditionFlag = "healthy"
	FlagDiseased    ConditionFlag = "diseased"
	FlagPests       ConditionFlag = "pests"
	FlagFake        ConditionFlag = "fake"
	FlagRareVariant ConditionFlag = "rareVariant"
)

// AcquireMethod records how a plant entered the player's world.
type AcquireMethod string

const (
	AcquireAuction     AcquireMethod = "auction"
	AcquirePropagation AcquireMethod = "propagation"
	AcquireStarter     AcquireMethod = "starter"
)

type Traits struct {
	Rarity           int `json:"rarity"`
	Demand           int `json:"demand"`
	CareDifficulty   int `json:"care_difficulty"`
	PropagationSpeed int `json:"propagation_speed"`
	Health           int `json:"health"`
}

// Plant is a live instance derived from a catalog seed. A plant is owned by
// exactly one container (inventory, display slot, propagation slot or the
// active auction) at any time; moves between containers are transfers.
type Plant struct {
	SeedID     string `json:"seed_id"`
	InstanceID string `json:"instance_id"`
	Name       string `json:"name"`
	Family     string `json:"family"`
	Genus      string `json:"genus"`
	Species    string `json:"species"`
	Variant    string `json:"variant,omitempty"`

	Tags   []string `json:"tags"`
	Traits Traits   `json:"traits"`

	BaseFMV int `json:"base_fmv"`

	ConditionFlags  []ConditionFlag `json:"condition_flags"`
	DiscoveredFlags []ConditionFlag `json:"discovered_flags"`

	AcquiredMethod AcquireMethod `json:"acquired_method"`
	AcquiredAtMs   int64         `json:"acquired_at_ms"`
}

func (p *Plant) HasCondition(f ConditionFlag) bool {
	for _, c := range p.ConditionFlags {
		if c == f {
			return true
		}
	}
	return false
}

func (p *Plant) HasDiscovered(f ConditionFlag) bool {
	for _, c := range p.DiscoveredFlags {
		if c == f {
			return true
		}
	}
	return false
}

func (p *Plant) hasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Discover appends f to the discovered set. It is a no-op when f is already
// discovered or is not actually a condition of the plant, so the
// discovered ⊆ condition invariant cannot be violated here.
func (p *Plant) Discover(f ConditionFlag) bool {
	if !p.HasCondition(f) || p.HasDiscovered(f) {
		return false
	}
	p.DiscoveredFlags = append(p.DiscoveredFlags, f)
	return true
}

// Customer is one arrival, copied from a catalog archetype. Discarded after
// the sale resolves or the customer walks.
type Customer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Archetype string `json:"archetype"`

	PreferredTags []string `json:"preferred_tags"`
	AvoidTags     []string `json:"avoid_tags"`

	MinRarity         int `json:"min_rarity,omitempty"`
	MinDemand         int `json:"min_demand,omitempty"`
	MinCareDifficulty int `json:"min_care_difficulty,omitempty"`

	BudgetMin  int     `json:"budget_min"`
	BudgetMax  int     `json:"budget_max"`
	Generosity float64 `json:"generosity"`
}

type Seller struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Persona      string   `json:"persona"`
	Honesty      float64  `json:"honesty"`
	PricingStyle string   `json:"pricing_style"`
	Specialties  []string `json:"specialties,omitempty"`
}

// Auction wraps one plant and one seller. At most one auction is active
// system-wide; it ends by purchase, pass or timeout.
type Auction struct {
	ID          string `json:"id"`
	Plant       *Plant `json:"plant"`
	Seller      Seller `json:"seller"`
	AskingPrice int    `json:"asking_price"`

	// ClaimedConditions is what the seller says, not the truth. Dishonest
	// sellers under-disclose.
	ClaimedConditions []ConditionFlag `json:"claimed_conditions"`

	StartMs    int64 `json:"start_ms"`
	DurationMs int64 `json:"duration_ms"`
}

type DisplaySlot struct {
	ID    string `json:"id"`
	Plant *Plant `json:"plant,omitempty"`
}

type PropagationSlot struct {
	ID         string `json:"id"`
	Plant      *Plant `json:"plant,omitempty"`
	StartMs    int64  `json:"start_ms,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	IsComplete bool   `json:"is_complete"`
}

// UpgradeState pairs a catalog upgrade definition id with the purchased level.
type UpgradeState struct {
	ID           string `json:"id"`
	CurrentLevel int    `json:"current_level"`
}

type LogType string

const (
	LogPurchase     LogType = "purchase"
	LogSale         LogType = "sale"
	LogPropagation  LogType = "propagation"
	LogAuctionPass  LogType = "auction_pass"
	LogCustomerLeft LogType = "customer_left"
)

type LogEntry struct {
	ID          string  `json:"id"`
	Type        LogType `json:"type"`
	Message     string  `json:"message"`
	TimestampMs int64   `json:"timestamp_ms"`
	GPChange    int     `json:"gp_change,omitempty"`
}

// Upgrade ids the engine gives mechanical effects to. They must exist in
// upgrades.json; unknown catalog upgrades are purchasable but inert.
const (
	UpgradeDisplayExpansion = "displayExpansion"
	UpgradeCustomerTraffic  = "customerTraffic"
	UpgradePropagationBench = "propagationBench"
	UpgradeAppraisalGuide   = "appraisalGuide"
	UpgradeInspectionTools  = "inspectionTools"
)

// activityLogMax bounds the retained log, newest first.
const activityLogMax = 50
