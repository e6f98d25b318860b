package protocol

// STATE (server -> client), sent once per tick. This is the full render model
// for the browser client. Ground truth stays server-private: plants carry only
// their discovered flags, and a rare variant's name and tags are withheld
// until discovered.
type StateMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`

	Tick    uint64 `json:"tick"`
	NowMs   int64  `json:"now_ms"`
	Started bool   `json:"started"`

	GP          int `json:"gp"`
	TotalEarned int `json:"total_earned"`
	TotalSold   int `json:"total_sold"`

	Inventory        []PlantView           `json:"inventory"`
	DisplaySlots     []DisplaySlotView     `json:"display_slots"`
	PropagationSlots []PropagationSlotView `json:"propagation_slots"`

	Auction *AuctionView `json:"auction,omitempty"`

	Customer            *CustomerView `json:"customer,omitempty"`
	CustomerRemainingMs int64         `json:"customer_remaining_ms"`

	Upgrades []UpgradeView  `json:"upgrades"`
	Log      []LogEntryView `json:"log"`
}

type TraitsView struct {
	Rarity           int `json:"rarity"`
	Demand           int `json:"demand"`
	CareDifficulty   int `json:"care_difficulty"`
	PropagationSpeed int `json:"propagation_speed"`
	Health           int `json:"health"`
}

type PlantView struct {
	InstanceID string `json:"instance_id"`
	SeedID     string `json:"seed_id"`
	Name       string `json:"name"`
	Family     string `json:"family"`
	Genus      string `json:"genus"`
	Species    string `json:"species"`
	Variant    string `json:"variant,omitempty"`

	Tags   []string   `json:"tags"`
	Traits TraitsView `json:"traits"`

	EstimatedValue  int      `json:"estimated_value"`
	DiscoveredFlags []string `json:"discovered_flags"`
	AcquiredMethod  string   `json:"acquired_method"`
}

type DisplaySlotView struct {
	ID    string     `json:"id"`
	Plant *PlantView `json:"plant,omitempty"`
}

type PropagationSlotView struct {
	ID          string     `json:"id"`
	Plant       *PlantView `json:"plant,omitempty"`
	RemainingMs int64      `json:"remaining_ms"`
	IsComplete  bool       `json:"is_complete"`
}

type AuctionView struct {
	ID                string    `json:"id"`
	Plant             PlantView `json:"plant"`
	SellerName        string    `json:"seller_name"`
	SellerPersona     string    `json:"seller_persona"`
	AskingPrice       int       `json:"asking_price"`
	ClaimedConditions []string  `json:"claimed_conditions"`
	RemainingMs       int64     `json:"remaining_ms"`
	InspectionsLeft   int       `json:"inspections_left"`
}

type CustomerView struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Archetype     string   `json:"archetype"`
	PreferredTags []string `json:"preferred_tags"`
	AvoidTags     []string `json:"avoid_tags"`
	BudgetMin     int      `json:"budget_min"`
	BudgetMax     int      `json:"budget_max"`
}

type UpgradeView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Level       int    `json:"level"`
	MaxLevel    int    `json:"max_level"`
	NextCost    int    `json:"next_cost,omitempty"` // 0 when maxed
}

type LogEntryView struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Message     string `json:"message"`
	TimestampMs int64  `json:"timestamp_ms"`
	GPChange    int    `json:"gp_change,omitempty"`
}
