package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	if d.TickIntervalMs != 250 {
		t.Fatalf("tick interval %d, want 250", d.TickIntervalMs)
	}
	if d.CustomerIntervalMs != 12000 || d.CustomerLingerMs != 2000 {
		t.Fatalf("customer timing defaults wrong: %d/%d", d.CustomerIntervalMs, d.CustomerLingerMs)
	}
	if d.AuctionIntervalMinMs != 60000 || d.AuctionIntervalMaxMs != 120000 || d.AuctionDurationMs != 25000 {
		t.Fatalf("auction timing defaults wrong")
	}
	if d.PropagationTimeBaseMs != 45000 || d.MutationChance != 0.03 {
		t.Fatalf("propagation defaults wrong")
	}
	if d.StartingGP != 50 || d.StartingDisplaySlots != 3 || d.StartingPropagationSlots != 1 || d.StarterPlants != 3 {
		t.Fatalf("starting state defaults wrong")
	}
	if d.BaseInspectionActions != 2 {
		t.Fatalf("base inspections %d, want 2", d.BaseInspectionActions)
	}
}

func TestLoad_OverridesAndBackfill(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	err := os.WriteFile(path, []byte("tick_interval_ms: 100\nstarting_gp: 500\n"), 0o644)
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	tn, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tn.TickIntervalMs != 100 || tn.StartingGP != 500 {
		t.Fatalf("overrides not applied: %d/%d", tn.TickIntervalMs, tn.StartingGP)
	}
	if tn.CustomerIntervalMs != 12000 {
		t.Fatalf("unset field not backfilled: %d", tn.CustomerIntervalMs)
	}
}

func TestLoad_ShippedFile(t *testing.T) {
	tn, err := Load("../../../configs/tuning.yaml")
	if err != nil {
		t.Fatalf("load shipped tuning: %v", err)
	}
	if tn != Defaults() {
		t.Fatalf("shipped tuning drifted from defaults: %+v", tn)
	}
}
