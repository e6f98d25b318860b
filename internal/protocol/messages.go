package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	SessionID       string         `json:"session_id"`
	Params          SessionParams  `json:"params"`
	Catalogs        CatalogDigests `json:"catalogs"`
}

type SessionParams struct {
	TickIntervalMs        int     `json:"tick_interval_ms"`
	CustomerIntervalMs    int     `json:"customer_interval_ms"`
	AuctionIntervalMinMs  int     `json:"auction_interval_min_ms"`
	AuctionIntervalMaxMs  int     `json:"auction_interval_max_ms"`
	AuctionDurationMs     int     `json:"auction_duration_ms"`
	PropagationTimeBaseMs int     `json:"propagation_time_base_ms"`
	MutationChance        float64 `json:"mutation_chance"`
	StartingGP            int     `json:"starting_gp"`
}

type CatalogDigests struct {
	Plants    DigestRef `json:"plants"`
	Customers DigestRef `json:"customers"`
	Sellers   DigestRef `json:"sellers"`
	Variants  DigestRef `json:"variants"`
	Upgrades  DigestRef `json:"upgrades"`
}

type DigestRef struct {
	Digest string `json:"digest"` // sha256 hex
	Count  int    `json:"count"`
}

// CATALOG (server -> client): one catalog as a single part.
type CatalogMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	Name            string      `json:"name"`
	Digest          string      `json:"digest"`
	Part            int         `json:"part"`
	TotalParts      int         `json:"total_parts"`
	Data            interface{} `json:"data"`
}

// ACT (client -> server): one named action. Unused fields stay empty.
type ActMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"` // client ref, echoed in RESULT
	Action          string `json:"action"`

	PlantID   string `json:"plant_id,omitempty"`
	SlotID    string `json:"slot_id,omitempty"`
	UpgradeID string `json:"upgrade_id,omitempty"`
	Probe     string `json:"probe,omitempty"` // "leaves" | "roots" | "label" | "uv"
}

// RESULT (server -> client)
type ResultMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Ref             string `json:"ref"`
	OK              bool   `json:"ok"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
	Discovered      string `json:"discovered,omitempty"`
	Tick            uint64 `json:"tick"`
}
