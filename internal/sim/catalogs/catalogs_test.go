package catalogs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ShippedConfigs(t *testing.T) {
	c, err := Load("../../../configs")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(c.Plants.IDs) == 0 || len(c.Plants.ByID) != len(c.Plants.IDs) {
		t.Fatalf("plant catalog inconsistent: %d ids, %d defs", len(c.Plants.IDs), len(c.Plants.ByID))
	}
	for i := 1; i < len(c.Plants.IDs); i++ {
		if c.Plants.IDs[i-1] >= c.Plants.IDs[i] {
			t.Fatalf("plant ids not sorted at %d: %s >= %s", i, c.Plants.IDs[i-1], c.Plants.IDs[i])
		}
	}

	if len(c.Customers.Defs) == 0 || len(c.Sellers.Defs) == 0 || len(c.Variants.Names) == 0 {
		t.Fatalf("empty catalog loaded without error")
	}

	for _, digest := range []string{c.Plants.Digest, c.Customers.Digest, c.Sellers.Digest, c.Variants.Digest, c.Upgrades.Digest} {
		if len(digest) != 64 {
			t.Fatalf("digest %q is not sha256 hex", digest)
		}
	}

	// The engine hard-codes effects for these ids.
	for _, id := range []string{"displayExpansion", "customerTraffic", "propagationBench", "appraisalGuide", "inspectionTools"} {
		if _, ok := c.Upgrades.ByID[id]; !ok {
			t.Fatalf("upgrades.json missing engine upgrade %q", id)
		}
	}
}

func TestLoad_RejectsBadData(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	write("plants.json", `[{"id":"a","name":"A","base_traits":{},"base_fmv":10},{"id":"a","name":"A2","base_traits":{},"base_fmv":10}]`)
	var pc PlantCatalog
	if err := loadPlants(filepath.Join(dir, "plants.json"), &pc); err == nil {
		t.Fatalf("duplicate plant id accepted")
	}

	write("sellers.json", `[{"id":"s","name":"S","honesty":0.5,"pricing_style":"haggle"}]`)
	var sc SellerCatalog
	if err := loadSellers(filepath.Join(dir, "sellers.json"), &sc); err == nil {
		t.Fatalf("bad pricing_style accepted")
	}

	write("customers.json", `[{"id":"c","name":"C","budget_min":50,"budget_max":10,"generosity":1}]`)
	var cc CustomerCatalog
	if err := loadCustomers(filepath.Join(dir, "customers.json"), &cc); err == nil {
		t.Fatalf("inverted budget accepted")
	}

	write("upgrades.json", `[{"id":"u","name":"U","description":"","max_level":3,"base_cost":10,"cost_multiplier":1.0}]`)
	var uc UpgradeCatalog
	if err := loadUpgrades(filepath.Join(dir, "upgrades.json"), &uc); err == nil {
		t.Fatalf("cost_multiplier 1.0 accepted")
	}
}
