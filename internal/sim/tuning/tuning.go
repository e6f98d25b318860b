package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickIntervalMs int `yaml:"tick_interval_ms"`

	CustomerIntervalMs int `yaml:"customer_interval_ms"`
	CustomerLingerMs   int `yaml:"customer_linger_ms"`

	AuctionIntervalMinMs int `yaml:"auction_interval_min_ms"`
	AuctionIntervalMaxMs int `yaml:"auction_interval_max_ms"`
	AuctionDurationMs    int `yaml:"auction_duration_ms"`

	PropagationTimeBaseMs int     `yaml:"propagation_time_base_ms"`
	MutationChance        float64 `yaml:"mutation_chance"`

	StartingGP               int `yaml:"starting_gp"`
	StartingDisplaySlots     int `yaml:"starting_display_slots"`
	StartingPropagationSlots int `yaml:"starting_propagation_slots"`
	StarterPlants            int `yaml:"starter_plants"`

	BaseInspectionActions int `yaml:"base_inspection_actions"`

	SaveEveryTicks int `yaml:"save_every_ticks"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.fillZero()
	return t, nil
}

// Defaults returns the shipped balance values. Used when resuming from a save
// without a tuning file on disk.
func Defaults() Tuning {
	var t Tuning
	t.fillZero()
	return t
}

func (t *Tuning) fillZero() {
	if t.ProtocolVersion == "" {
		t.ProtocolVersion = "1.0"
	}
	if t.TickIntervalMs <= 0 {
		t.TickIntervalMs = 250
	}
	if t.CustomerIntervalMs <= 0 {
		t.CustomerIntervalMs = 12000
	}
	if t.CustomerLingerMs <= 0 {
		t.CustomerLingerMs = 2000
	}
	if t.AuctionIntervalMinMs <= 0 {
		t.AuctionIntervalMinMs = 60000
	}
	if t.AuctionIntervalMaxMs <= 0 {
		t.AuctionIntervalMaxMs = 120000
	}
	if t.AuctionDurationMs <= 0 {
		t.AuctionDurationMs = 25000
	}
	if t.PropagationTimeBaseMs <= 0 {
		t.PropagationTimeBaseMs = 45000
	}
	if t.MutationChance <= 0 {
		t.MutationChance = 0.03
	}
	if t.StartingGP <= 0 {
		t.StartingGP = 50
	}
	if t.StartingDisplaySlots <= 0 {
		t.StartingDisplaySlots = 3
	}
	if t.StartingPropagationSlots <= 0 {
		t.StartingPropagationSlots = 1
	}
	if t.StarterPlants <= 0 {
		t.StarterPlants = 3
	}
	if t.BaseInspectionActions <= 0 {
		t.BaseInspectionActions = 2
	}
	if t.SaveEveryTicks <= 0 {
		t.SaveEveryTicks = 40
	}
}
